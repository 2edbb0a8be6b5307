package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/llm"
)

type orchestratorFixture struct {
	store        UserContextStore
	factory      *SessionContextFactory
	ledger       *LearningLedger
	executor     *llm.MockExecutor
	orchestrator *PromptOrchestrator
}

func newOrchestratorFixture(response string, execErr error) *orchestratorFixture {
	store := NewMemoryContextStore()
	ledger := NewLearningLedger(store, nil, zap.NewNop())
	executor := &llm.MockExecutor{Response: response, Err: execErr}
	orchestrator := NewPromptOrchestrator(
		store,
		TemplateBasePrompts{},
		NewPromptPersonalizer(ledger),
		ledger,
		executor,
		ResponseParser{},
		NewMemoryResultStore(),
		zap.NewNop(),
	)
	return &orchestratorFixture{
		store:        store,
		factory:      NewSessionContextFactory(store),
		ledger:       ledger,
		executor:     executor,
		orchestrator: orchestrator,
	}
}

func TestGeneratePrompt_AnxiousDatePlanning(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	emotion := domain.EmotionAnxious
	if err := f.store.Update("u1", domain.UserContextPatch{CurrentEmotion: &emotion}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc, err := f.factory.Create("u1", domain.IntentDatePlanning, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.UrgencyLevel != domain.UrgencyHigh {
		t.Fatalf("expected high urgency, got %q", sc.UrgencyLevel)
	}

	prompt, err := f.orchestrator.GeneratePrompt("u1", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prompt.Metadata.ExpectedOutputFormat != domain.OutputStructured {
		t.Fatalf("date planning must expect structured output, got %q", prompt.Metadata.ExpectedOutputFormat)
	}
	if prompt.Metadata.Urgency != domain.UrgencyHigh {
		t.Fatalf("expected urgency carried into metadata, got %q", prompt.Metadata.Urgency)
	}
	if prompt.Metadata.PromptType != domain.IntentDatePlanning {
		t.Fatalf("expected prompt type from intent, got %q", prompt.Metadata.PromptType)
	}
	if prompt.AIProvider != llm.ProviderClaude {
		t.Fatalf("fresh user should get the balanced fallback provider, got %q", prompt.AIProvider)
	}
	if prompt.Metadata.ContextHash == "" || prompt.ID == "" {
		t.Fatalf("expected id and context hash populated")
	}
	if !strings.Contains(prompt.Prompt, "plan a first date") && !strings.Contains(prompt.Prompt, "plan a date") {
		t.Fatalf("expected base prompt content to survive personalization: %q", prompt.Prompt)
	}
}

func TestGeneratePrompt_TextFormatForGenericIntents(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	sc, _ := f.factory.Create("u1", domain.IntentFirstMessage, "")
	prompt, err := f.orchestrator.GeneratePrompt("u1", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt.Metadata.ExpectedOutputFormat != domain.OutputText {
		t.Fatalf("first message should expect text output, got %q", prompt.Metadata.ExpectedOutputFormat)
	}
}

func TestGeneratePrompt_WithConnection(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	connection := &domain.Connection{ID: "c1", UserID: "u1", Name: "Sam", Platform: domain.PlatformHinge, CurrentStage: "talking", Hobbies: []string{"climbing"}}
	sc, _ := f.factory.Create("u1", domain.IntentFirstMessage, "c1")

	prompt, err := f.orchestrator.GeneratePrompt("u1", sc, connection)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt.Prompt, "Sam") || !strings.Contains(prompt.Prompt, "climbing") {
		t.Fatalf("expected connection details woven into prompt: %q", prompt.Prompt)
	}
	if prompt.ConnectionID != "c1" {
		t.Fatalf("expected connection id carried over, got %q", prompt.ConnectionID)
	}
}

func TestExecutePrompt_ConfidenceAndStructuredData(t *testing.T) {
	response := "Advice: " + strings.Repeat("be patient and kind. ", 30) + "I recommend a picnic.\nAction: invite them out.\nTiming: Sunday."
	f := newOrchestratorFixture(response, nil)

	sc, _ := f.factory.Create("u1", domain.IntentDatePlanning, "")
	prompt, err := f.orchestrator.GeneratePrompt("u1", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.orchestrator.ExecutePrompt(context.Background(), prompt, llm.GenerationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.executor.LastProvider != prompt.AIProvider {
		t.Fatalf("expected execution against the selected provider, got %q", f.executor.LastProvider)
	}
	// Respuesta larga (>500) con keyword accionable: 0.7 + 0.3.
	if result.Confidence != 1.0 {
		t.Fatalf("expected max confidence, got %v", result.Confidence)
	}
	if result.StructuredData == nil {
		t.Fatalf("expected structured data for structured format")
	}
	if _, ok := result.StructuredData["action"]; !ok {
		t.Fatalf("expected action segment, got %v", result.StructuredData)
	}
	if result.ProcessingTime < 0 {
		t.Fatalf("expected non-negative processing time")
	}
}

func TestExecutePrompt_ShortTextResponse(t *testing.T) {
	f := newOrchestratorFixture("ok", nil)

	sc, _ := f.factory.Create("u1", domain.IntentGeneralHelp, "")
	prompt, _ := f.orchestrator.GeneratePrompt("u1", sc, nil)

	result, err := f.orchestrator.ExecutePrompt(context.Background(), prompt, llm.GenerationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StructuredData != nil {
		t.Fatalf("text format must not be parsed, got %v", result.StructuredData)
	}
	want := float64(len("ok")) / 500.0 * 0.7
	if result.Confidence != want {
		t.Fatalf("expected confidence %v, got %v", want, result.Confidence)
	}
}

func TestExecutePrompt_FailureWrapsExecutionFailed(t *testing.T) {
	f := newOrchestratorFixture("", errors.New("rate limited"))

	sc, _ := f.factory.Create("u1", domain.IntentGeneralHelp, "")
	prompt, _ := f.orchestrator.GeneratePrompt("u1", sc, nil)

	_, err := f.orchestrator.ExecutePrompt(context.Background(), prompt, llm.GenerationConfig{})
	if !errors.Is(err, domain.ErrExecutionFailed) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected original cause preserved, got %v", err)
	}
	if f.executor.Calls != 1 {
		t.Fatalf("execution must not be retried, got %d calls", f.executor.Calls)
	}
}

func TestRecordFeedback_UnknownResult(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	err := f.orchestrator.RecordFeedback("missing", domain.ResultFeedback{Effectiveness: domain.EffectivenessGood})
	if !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestRecordFeedback_FeedsLedger(t *testing.T) {
	f := newOrchestratorFixture("try opening with a question about their weekend", nil)

	sc, _ := f.factory.Create("u1", domain.IntentFirstMessage, "")
	prompt, _ := f.orchestrator.GeneratePrompt("u1", sc, nil)
	result, err := f.orchestrator.ExecutePrompt(context.Background(), prompt, llm.GenerationConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.orchestrator.RecordFeedback(result.ID, domain.ResultFeedback{UserRating: 5, Effectiveness: domain.EffectivenessExcellent}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.ledger.mu.Lock()
	m := f.ledger.metrics[metricKey{"u1", domain.IntentFirstMessage, prompt.AIProvider}]
	f.ledger.mu.Unlock()
	if m.SuccessRate != 1.0 || m.UsageFrequency != 1 {
		t.Fatalf("expected success rate driven toward 1.0, got %+v", m)
	}

	// Repetir feedback sobre el mismo resultado no debe contarse dos veces.
	err = f.orchestrator.RecordFeedback(result.ID, domain.ResultFeedback{Effectiveness: domain.EffectivenessPoor})
	if !errors.Is(err, domain.ErrFeedbackRecorded) {
		t.Fatalf("expected ErrFeedbackRecorded, got %v", err)
	}
}

func TestRunState_OrderingEnforced(t *testing.T) {
	run := &runState{}
	stages := []RequestStage{StageContextLoaded, StageBaseGenerated, StagePersonalized, StageProviderSelected, StageExecuted}
	for _, stage := range stages {
		if err := run.advance(stage); err != nil {
			t.Fatalf("legal transition to %s failed: %v", stage, err)
		}
	}

	bad := &runState{}
	if err := bad.advance(StagePersonalized); err == nil {
		t.Fatalf("expected error when skipping stages")
	}
	_ = bad.advance(StageContextLoaded)
	if err := bad.advance(StageProviderSelected); err == nil {
		t.Fatalf("expected error when provider selection precedes personalization")
	}

	// FAILED comparte lugar con EXECUTED: valido desde PROVIDER_SELECTED, no despues.
	failing := &runState{stage: StageProviderSelected}
	if err := failing.advance(StageFailed); err != nil {
		t.Fatalf("failure after provider selection must be legal: %v", err)
	}
	done := &runState{stage: StageExecuted}
	if err := done.advance(StageFailed); err == nil {
		t.Fatalf("an executed request cannot transition to failed")
	}
	if err := done.advance(StageFeedbackRecorded); err != nil {
		t.Fatalf("feedback after execution must be legal: %v", err)
	}
}

// driftingStore devuelve balanced en la primera lectura y creative en las
// siguientes, contando las lecturas: permite detectar relecturas de contexto.
type driftingStore struct {
	inner UserContextStore
	gets  int
}

func (s *driftingStore) Get(userID string) (domain.UserContext, error) {
	s.gets++
	uc, err := s.inner.Get(userID)
	if s.gets > 1 {
		uc.LearningPreferences.PreferredAIStyle = domain.AIStyleCreative
	}
	return uc, err
}

func (s *driftingStore) Put(userID string, uc domain.UserContext) error {
	return s.inner.Put(userID, uc)
}

func (s *driftingStore) Update(userID string, patch domain.UserContextPatch) error {
	return s.inner.Update(userID, patch)
}

func TestGeneratePrompt_ContextReadExactlyOnce(t *testing.T) {
	store := &driftingStore{inner: NewMemoryContextStore()}
	ledger := NewLearningLedger(store, nil, zap.NewNop())
	orchestrator := NewPromptOrchestrator(
		store,
		TemplateBasePrompts{},
		NewPromptPersonalizer(ledger),
		ledger,
		&llm.MockExecutor{},
		ResponseParser{},
		NewMemoryResultStore(),
		zap.NewNop(),
	)

	sc := domain.SessionContext{
		SessionID:      "s1",
		UserID:         "u1",
		UserIntent:     domain.IntentFirstMessage,
		EmotionalState: domain.EmotionalStateNeutral,
		UrgencyLevel:   domain.UrgencyLow,
	}

	prompt, err := orchestrator.GeneratePrompt("u1", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.gets != 1 {
		t.Fatalf("context must be read exactly once per generation, got %d reads", store.gets)
	}
	// La primera lectura (balanced) manda: claude, aunque lecturas posteriores
	// devolverian creative.
	if prompt.AIProvider != llm.ProviderClaude {
		t.Fatalf("provider selection must use the initially loaded context, got %q", prompt.AIProvider)
	}
}

func TestGeneratePrompt_UsesContextReadOnce(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	emotion := domain.EmotionExcited
	_ = f.store.Update("u1", domain.UserContextPatch{CurrentEmotion: &emotion})
	sc, _ := f.factory.Create("u1", domain.IntentGeneralHelp, "")

	// Una mutacion concurrente posterior a la derivacion no cambia la sesion ya creada.
	other := domain.EmotionFrustrated
	_ = f.store.Update("u1", domain.UserContextPatch{CurrentEmotion: &other})

	if sc.EmotionalState != domain.EmotionalStatePositive {
		t.Fatalf("session derivation must reflect the context at creation time, got %q", sc.EmotionalState)
	}

	prompt, err := f.orchestrator.GeneratePrompt("u1", sc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt.Metadata.Urgency != sc.UrgencyLevel {
		t.Fatalf("prompt must use the session's derived urgency")
	}
}

func TestOptimizeForUser_DetailInference(t *testing.T) {
	f := newOrchestratorFixture("", nil)

	// Todas las sesiones son detallistas: detail=1.0 > 0.7 => comprehensive.
	for i := 0; i < 4; i++ {
		if _, err := f.factory.Create("u1", domain.IntentRelationshipAdvice, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	f.ledger.RecordLearning("u1", domain.IntentRelationshipAdvice, llm.ProviderGPT, 0.6, "")

	if err := f.orchestrator.OptimizeForUser("u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uc, _ := f.store.Get("u1")
	if uc.LearningPreferences.DetailLevel != domain.DetailComprehensive {
		t.Fatalf("expected comprehensive detail, got %q", uc.LearningPreferences.DetailLevel)
	}
	if uc.LearningPreferences.PreferredAIStyle != domain.AIStyleCreative {
		t.Fatalf("gpt as top provider should map to creative, got %q", uc.LearningPreferences.PreferredAIStyle)
	}
}
