package domain

import "time"

// Formatos de salida esperados al ejecutar un prompt.
const (
	OutputText       = "text"
	OutputJSON       = "json"
	OutputStructured = "structured"
)

// PromptMetadata acompaña al prompt generado con datos de diagnostico.
type PromptMetadata struct {
	GeneratedAt          time.Time `json:"generated_at"`
	ContextHash          string    `json:"context_hash"`
	PromptType           string    `json:"prompt_type"`
	Urgency              string    `json:"urgency"`
	ExpectedOutputFormat string    `json:"expected_output_format"`
}

// PersonalizationFactors son scores normalizados 0-1 que describen como se
// ajusto el prompt. Solo sirven para diagnostico y tests, no se reconsumen.
type PersonalizationFactors struct {
	EmotionalTone   float64 `json:"emotional_tone"`
	DirectnessLevel float64 `json:"directness_level"`
	CreativityLevel float64 `json:"creativity_level"`
	DetailLevel     float64 `json:"detail_level"`
}

// OrchestratedPrompt es la instruccion final personalizada, inmutable una vez creada.
type OrchestratedPrompt struct {
	ID                     string                 `json:"id"`
	UserID                 string                 `json:"user_id"`
	ConnectionID           string                 `json:"connection_id,omitempty"`
	AIProvider             string                 `json:"ai_provider"`
	Prompt                 string                 `json:"prompt"`
	Metadata               PromptMetadata         `json:"metadata"`
	PersonalizationFactors PersonalizationFactors `json:"personalization_factors"`
}

// Effectiveness labels aceptadas en feedback.
const (
	EffectivenessPoor      = "poor"
	EffectivenessAverage   = "average"
	EffectivenessGood      = "good"
	EffectivenessExcellent = "excellent"
)

// ResultFeedback es el feedback del usuario sobre un ActionResult; se fija una sola vez.
type ResultFeedback struct {
	UserRating    int    `json:"user_rating"`
	Effectiveness string `json:"effectiveness"`
	Notes         string `json:"notes,omitempty"`
}

// EffectivenessScore mapea la etiqueta de feedback a un valor [0,1] para el ledger.
func EffectivenessScore(label string) float64 {
	switch label {
	case EffectivenessExcellent:
		return 1.0
	case EffectivenessGood:
		return 0.8
	case EffectivenessAverage:
		return 0.6
	case EffectivenessPoor:
		return 0.3
	default:
		return 0.5
	}
}

// ActionResult es el resultado de ejecutar un OrchestratedPrompt.
type ActionResult struct {
	ID             string          `json:"id"`
	PromptID       string          `json:"prompt_id"`
	UserID         string          `json:"user_id"`
	AIProvider     string          `json:"ai_provider"`
	PromptType     string          `json:"prompt_type"`
	Response       string          `json:"response"`
	StructuredData map[string]any  `json:"structured_data,omitempty"`
	Confidence     float64         `json:"confidence"`
	ProcessingTime int64           `json:"processing_time_ms"`
	Feedback       *ResultFeedback `json:"feedback,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
