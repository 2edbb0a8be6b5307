package domain

import "time"

// Intenciones declaradas al abrir una interaccion.
const (
	IntentFirstMessage          = "first_message"
	IntentConversationDeepening = "conversation_deepening"
	IntentDatePlanning          = "date_planning"
	IntentRelationshipAdvice    = "relationship_advice"
	IntentProfileReview         = "profile_review"
	IntentGeneralHelp           = "general_help"
)

// Estados emocionales derivados y niveles de urgencia.
const (
	EmotionalStatePositive = "positive"
	EmotionalStateNeutral  = "neutral"
	EmotionalStateNegative = "negative"

	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// SessionContext es el contexto derivado de una sola interaccion.
// Se construye desde el UserContext vigente mas la intencion declarada,
// se usa para un OrchestratedPrompt como maximo y queda en el historial.
type SessionContext struct {
	SessionID      string    `json:"session_id"`
	UserID         string    `json:"user_id"`
	ConnectionID   string    `json:"connection_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	UserIntent     string    `json:"user_intent"`
	EmotionalState string    `json:"emotional_state"`
	UrgencyLevel   string    `json:"urgency_level"`
	ContextTags    []string  `json:"context_tags"`
}
