package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"match-coach/internal/config"
	"match-coach/internal/domain"
	"match-coach/internal/llm"
	"match-coach/internal/service"
)

// Cliente de consola para probar el motor end-to-end: genera un prompt por
// intencion, lo ejecuta y registra feedback. Sin API keys usa un executor mock.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var executor llm.Executor
	providers := cfg.Providers()
	if len(providers) > 0 {
		executor = llm.NewHTTPExecutor(providers, logger)
	} else {
		fmt.Println("(no provider keys configured, using offline mock)")
		executor = &llm.MockExecutor{Response: "Advice: be yourself and keep it light.\nAction: suggest a coffee date.\nTiming: this weekend."}
	}

	contextStore := service.NewMemoryContextStore()
	ledger := service.NewLearningLedger(contextStore, nil, logger)
	sessionFactory := service.NewSessionContextFactory(contextStore)
	personalizer := service.NewPromptPersonalizer(ledger)
	results := service.NewMemoryResultStore()
	orchestrator := service.NewPromptOrchestrator(contextStore, service.TemplateBasePrompts{}, personalizer, ledger, executor, service.ResponseParser{}, results, logger)

	fmt.Print("user id: ")
	userID, _ := reader.ReadString('\n')
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "cli-user"
	}

	intents := []string{
		domain.IntentFirstMessage,
		domain.IntentConversationDeepening,
		domain.IntentDatePlanning,
		domain.IntentRelationshipAdvice,
		domain.IntentProfileReview,
		domain.IntentGeneralHelp,
	}

	for {
		fmt.Println("\nintents:")
		for i, intent := range intents {
			fmt.Printf("  %d) %s\n", i+1, intent)
		}
		fmt.Print("pick intent (q to quit): ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "q" || line == "quit" {
			return
		}
		idx, err := strconv.Atoi(line)
		if err != nil || idx < 1 || idx > len(intents) {
			fmt.Println("invalid choice")
			continue
		}
		intent := intents[idx-1]

		sc, err := sessionFactory.Create(userID, intent, "")
		if err != nil {
			fmt.Println("session error:", err)
			continue
		}

		prompt, err := orchestrator.GeneratePrompt(userID, sc, nil)
		if err != nil {
			fmt.Println("generate error:", err)
			continue
		}
		fmt.Printf("\n[provider=%s urgency=%s format=%s]\n", prompt.AIProvider, prompt.Metadata.Urgency, prompt.Metadata.ExpectedOutputFormat)

		result, err := orchestrator.ExecutePrompt(ctx, prompt, llm.GenerationConfig{})
		if err != nil {
			fmt.Println("execute error:", err)
			continue
		}
		fmt.Printf("\n%s\n\n(confidence %.2f, %dms)\n", result.Response, result.Confidence, result.ProcessingTime)

		fmt.Print("rate 1-5 (enter to skip): ")
		rating, _ := reader.ReadString('\n')
		rating = strings.TrimSpace(rating)
		if rating == "" {
			continue
		}
		n, err := strconv.Atoi(rating)
		if err != nil || n < 1 || n > 5 {
			continue
		}

		effectiveness := domain.EffectivenessAverage
		switch {
		case n >= 5:
			effectiveness = domain.EffectivenessExcellent
		case n == 4:
			effectiveness = domain.EffectivenessGood
		case n <= 2:
			effectiveness = domain.EffectivenessPoor
		}
		if err := orchestrator.RecordFeedback(result.ID, domain.ResultFeedback{UserRating: n, Effectiveness: effectiveness}); err != nil {
			fmt.Println("feedback error:", err)
		}
	}
}
