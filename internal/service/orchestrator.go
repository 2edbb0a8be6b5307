package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"match-coach/internal/domain"
	"match-coach/internal/llm"
)

// RequestStage etiqueta el avance del ciclo de vida de una solicitud.
// No se persiste: existe para que los tests puedan asertar el orden.
type RequestStage string

const (
	StageContextLoaded    RequestStage = "CONTEXT_LOADED"
	StageBaseGenerated    RequestStage = "BASE_GENERATED"
	StagePersonalized     RequestStage = "PERSONALIZED"
	StageProviderSelected RequestStage = "PROVIDER_SELECTED"
	StageExecuted         RequestStage = "EXECUTED"
	StageFailed           RequestStage = "FAILED"
	StageFeedbackRecorded RequestStage = "FEEDBACK_RECORDED"
)

var stageOrder = map[RequestStage]int{
	StageContextLoaded:    1,
	StageBaseGenerated:    2,
	StagePersonalized:     3,
	StageProviderSelected: 4,
	StageExecuted:         5,
	StageFailed:           5,
	StageFeedbackRecorded: 6,
}

// runState recorre el ciclo de una solicitud validando transiciones.
type runState struct {
	stage RequestStage
	trace []RequestStage
}

func (r *runState) advance(to RequestStage) error {
	cur, prev := stageOrder[to], 0
	if r.stage != "" {
		prev = stageOrder[r.stage]
	}
	if cur != prev+1 {
		return fmt.Errorf("invalid stage transition %s -> %s", r.stage, to)
	}
	r.stage = to
	r.trace = append(r.trace, to)
	return nil
}

// PromptOrchestrator coordina carga de contexto, generacion base,
// personalizacion, seleccion de proveedor, ejecucion y feedback.
type PromptOrchestrator struct {
	store        UserContextStore
	basePrompts  BasePromptGenerator
	personalizer *PromptPersonalizer
	ledger       *LearningLedger
	executor     llm.Executor
	parser       ResponseParser
	results      ResultStore
	logger       *zap.Logger
}

func NewPromptOrchestrator(
	store UserContextStore,
	basePrompts BasePromptGenerator,
	personalizer *PromptPersonalizer,
	ledger *LearningLedger,
	executor llm.Executor,
	parser ResponseParser,
	results ResultStore,
	logger *zap.Logger,
) *PromptOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptOrchestrator{
		store:        store,
		basePrompts:  basePrompts,
		personalizer: personalizer,
		ledger:       ledger,
		executor:     executor,
		parser:       parser,
		results:      results,
		logger:       logger,
	}
}

// expectedFormat decide el formato de salida segun la intencion.
func expectedFormat(intent string) string {
	switch intent {
	case domain.IntentDatePlanning, domain.IntentRelationshipAdvice:
		return domain.OutputStructured
	default:
		return domain.OutputText
	}
}

// contextHash resume el estado de contexto usado, para diagnostico.
func contextHash(uc domain.UserContext, sc domain.SessionContext) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(uc.UserID))
	h.Write([]byte(uc.CurrentEmotion))
	h.Write([]byte(uc.CommunicationStyle))
	h.Write([]byte(uc.RelationshipGoals))
	h.Write([]byte(sc.UserIntent))
	h.Write([]byte(strings.Join(uc.PersonalityTraits, ",")))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// GeneratePrompt construye el OrchestratedPrompt para una sesion ya derivada.
// El contexto se lee una sola vez al inicio y se usa consistente hasta el
// final: una mutacion concurrente no afecta esta solicitud.
func (o *PromptOrchestrator) GeneratePrompt(userID string, sc domain.SessionContext, connection *domain.Connection) (domain.OrchestratedPrompt, error) {
	run := &runState{}

	uc, err := o.store.Get(userID)
	if err != nil {
		return domain.OrchestratedPrompt{}, fmt.Errorf("%w: %v", domain.ErrContextUnavailable, err)
	}
	if err := run.advance(StageContextLoaded); err != nil {
		return domain.OrchestratedPrompt{}, err
	}

	styleHint := uc.LearningPreferences.PreferredAIStyle
	base := o.basePrompts.Generate(sc.UserIntent, connection, styleHint)
	if err := run.advance(StageBaseGenerated); err != nil {
		return domain.OrchestratedPrompt{}, err
	}

	personalized := o.personalizer.Personalize(base, uc, sc)
	if err := run.advance(StagePersonalized); err != nil {
		return domain.OrchestratedPrompt{}, err
	}

	provider := o.ledger.OptimalProvider(uc, sc.UserIntent)
	if err := run.advance(StageProviderSelected); err != nil {
		return domain.OrchestratedPrompt{}, err
	}

	prompt := domain.OrchestratedPrompt{
		ID:           uuid.NewString(),
		UserID:       userID,
		ConnectionID: sc.ConnectionID,
		AIProvider:   provider,
		Prompt:       personalized,
		Metadata: domain.PromptMetadata{
			GeneratedAt:          time.Now().UTC(),
			ContextHash:          contextHash(uc, sc),
			PromptType:           sc.UserIntent,
			Urgency:              sc.UrgencyLevel,
			ExpectedOutputFormat: expectedFormat(sc.UserIntent),
		},
		PersonalizationFactors: Factors(uc, sc),
	}

	o.logger.Info("prompt generated",
		zap.String("user_id", userID),
		zap.String("intent", sc.UserIntent),
		zap.String("provider", provider),
		zap.String("format", prompt.Metadata.ExpectedOutputFormat),
	)
	return prompt, nil
}

// Palabras que indican que la respuesta propone algo accionable.
var actionabilityKeywords = []string{"recommend", "suggest", "try ", "you should", "plan", "ask her", "ask him", "ask them"}

func confidenceScore(response string) float64 {
	lengthScore := float64(len(response)) / 500.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	score := lengthScore * 0.7

	lower := strings.ToLower(response)
	for _, kw := range actionabilityKeywords {
		if strings.Contains(lower, kw) {
			score += 0.3
			break
		}
	}
	return score
}

// ExecutePrompt invoca al proveedor asignado, mide el tiempo transcurrido y
// arma el ActionResult. No reintenta: la politica de retry es del adaptador o
// del caller. Retoma el ciclo de vida donde GeneratePrompt lo dejo.
func (o *PromptOrchestrator) ExecutePrompt(ctx context.Context, prompt domain.OrchestratedPrompt, cfg llm.GenerationConfig) (domain.ActionResult, error) {
	run := &runState{stage: StageProviderSelected}

	start := time.Now()
	response, err := o.executor.Execute(ctx, prompt.AIProvider, prompt.Prompt, cfg)
	elapsed := time.Since(start)
	if err != nil {
		o.logger.Warn("prompt execution failed",
			zap.String("prompt_id", prompt.ID),
			zap.String("provider", prompt.AIProvider),
			zap.Error(err),
		)
		_ = run.advance(StageFailed)
		return domain.ActionResult{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailed, err)
	}
	if err := run.advance(StageExecuted); err != nil {
		return domain.ActionResult{}, err
	}

	result := domain.ActionResult{
		ID:             uuid.NewString(),
		PromptID:       prompt.ID,
		UserID:         prompt.UserID,
		AIProvider:     prompt.AIProvider,
		PromptType:     prompt.Metadata.PromptType,
		Response:       response,
		Confidence:     confidenceScore(response),
		ProcessingTime: elapsed.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}

	if prompt.Metadata.ExpectedOutputFormat != domain.OutputText {
		result.StructuredData = o.parser.Parse(response, prompt.Metadata.ExpectedOutputFormat)
	}

	o.results.Save(result)
	return result, nil
}

// ProcessAIResponse expone el parser con el contrato de degradacion sin error.
func (o *PromptOrchestrator) ProcessAIResponse(text, format string) map[string]any {
	return o.parser.Parse(text, format)
}

// RecordFeedback adjunta feedback a un resultado y alimenta el ledger.
// Un resultado guardado implica EXECUTED; el ciclo cierra en FEEDBACK_RECORDED.
func (o *PromptOrchestrator) RecordFeedback(resultID string, feedback domain.ResultFeedback) error {
	result, err := o.results.Attach(resultID, feedback)
	if err != nil {
		return err
	}

	run := &runState{stage: StageExecuted}
	if err := run.advance(StageFeedbackRecorded); err != nil {
		return err
	}

	effectiveness := domain.EffectivenessScore(feedback.Effectiveness)
	o.ledger.RecordLearning(result.UserID, result.PromptType, result.AIProvider, effectiveness, feedback.Notes)

	o.logger.Info("feedback recorded",
		zap.String("result_id", resultID),
		zap.String("provider", result.AIProvider),
		zap.String("effectiveness", feedback.Effectiveness),
	)
	return nil
}

// OptimizeForUser corre el analisis de patrones y reescribe las preferencias
// de aprendizaje derivadas.
func (o *PromptOrchestrator) OptimizeForUser(userID string) error {
	patterns, err := o.ledger.AnalyzePatterns(userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrContextUnavailable, err)
	}

	uc, err := o.store.Get(userID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrContextUnavailable, err)
	}
	prefs := uc.LearningPreferences

	if len(patterns.EffectiveAIProviders) > 0 {
		top := patterns.EffectiveAIProviders[0]
		if llm.AnalyticalProviders[top] {
			prefs.PreferredAIStyle = domain.AIStyleAnalytical
		} else if llm.CreativeProviders[top] {
			prefs.PreferredAIStyle = domain.AIStyleCreative
		}
	}

	switch {
	case patterns.CommunicationPreferences.Detail > 0.7:
		prefs.DetailLevel = domain.DetailComprehensive
	case patterns.CommunicationPreferences.Detail < 0.3:
		prefs.DetailLevel = domain.DetailBrief
	default:
		prefs.DetailLevel = domain.DetailDetailed
	}

	return o.store.Update(userID, domain.UserContextPatch{LearningPreferences: &prefs})
}
