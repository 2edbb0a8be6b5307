package domain

import "time"

// Plataformas de chat que el extractor sabe reconocer.
const (
	PlatformTinder   = "tinder"
	PlatformBumble   = "bumble"
	PlatformHinge    = "hinge"
	PlatformWhatsApp = "whatsapp"
	PlatformIMessage = "imessage"
	PlatformUnknown  = "unknown"
)

// ChatMessage es un mensaje reconstruido desde un screenshot.
type ChatMessage struct {
	Sender    string `json:"sender"` // "user" o "match"
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ScreenshotAnalysis es la salida cruda del pipeline de vision.
type ScreenshotAnalysis struct {
	Platform   string        `json:"platform"`
	MatchName  string        `json:"match_name,omitempty"`
	Messages   []ChatMessage `json:"messages"`
	RawText    string        `json:"raw_text,omitempty"`
	Degraded   bool          `json:"degraded"` // true si se uso el parser textual de respaldo
	AnalyzedAt time.Time     `json:"analyzed_at"`
}

// ConversationData agrega señales derivadas de los mensajes extraidos.
type ConversationData struct {
	MessageCount         int      `json:"message_count"`
	LastMessageSender    string   `json:"last_message_sender"`
	LastMessageSentiment string   `json:"last_message_sentiment"` // "positive", "neutral", "negative"
	FrequencyTrend       string   `json:"frequency_trend"`        // "increasing", "stable", "decreasing"
	Topics               []string `json:"topics"`
	EmotionalTone        string   `json:"emotional_tone"`
}

// ContextUpdates es el parche parcial propuesto para un registro de conexion.
// Un parche vacio es valido: significa que no se pudo inferir nada util.
type ContextUpdates struct {
	CurrentStage         string   `json:"current_stage,omitempty"`
	NewHobbies           []string `json:"new_hobbies,omitempty"`
	UpdatedFeelings      string   `json:"updated_feelings,omitempty"`
	CommunicationChanges string   `json:"communication_changes,omitempty"`
}

// IsEmpty indica si el parche no propone ningun cambio.
func (u ContextUpdates) IsEmpty() bool {
	return u.CurrentStage == "" && len(u.NewHobbies) == 0 &&
		u.UpdatedFeelings == "" && u.CommunicationChanges == ""
}
