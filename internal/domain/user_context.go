package domain

import "time"

// Emociones reconocidas del usuario. Valores fuera de esta lista se tratan
// como neutrales en las tablas de derivacion.
const (
	EmotionExcited    = "excited"
	EmotionAnxious    = "anxious"
	EmotionHopeful    = "hopeful"
	EmotionFrustrated = "frustrated"
	EmotionConfident  = "confident"
	EmotionUncertain  = "uncertain"
)

// Estilos de comunicacion soportados por el personalizador.
const (
	StyleDirect    = "direct"
	StyleGentle    = "gentle"
	StyleHumorous  = "humorous"
	StyleFormal    = "formal"
	StyleEmotional = "emotional"
)

// Estilos de IA preferidos y niveles de detalle.
const (
	AIStyleAnalytical = "analytical"
	AIStyleCreative   = "creative"
	AIStyleBalanced   = "balanced"

	DetailBrief         = "brief"
	DetailDetailed      = "detailed"
	DetailComprehensive = "comprehensive"
)

// LearningPreferences guarda como prefiere el usuario que la IA le responda.
type LearningPreferences struct {
	PreferredAIStyle    string `json:"preferred_ai_style"`
	FeedbackSensitivity string `json:"feedback_sensitivity"` // "low", "medium", "high"
	DetailLevel         string `json:"detail_level"`
}

// UserContext es el perfil conductual persistente de un usuario.
// Se crea con defaults completos en el primer acceso y nunca queda parcial.
type UserContext struct {
	UserID              string              `json:"user_id"`
	CurrentEmotion      string              `json:"current_emotion"`
	RelationshipGoals   string              `json:"relationship_goals"`
	CommunicationStyle  string              `json:"communication_style"`
	PersonalityTraits   []string            `json:"personality_traits"`
	LearningPreferences LearningPreferences `json:"learning_preferences"`
	SessionHistory      []SessionContext    `json:"session_history"`
	LastActivity        time.Time           `json:"last_activity"`
}

// MaxSessionHistory limita el ring buffer de sesiones recientes.
const MaxSessionHistory = 10

// NewUserContext devuelve un contexto completamente poblado con defaults.
func NewUserContext(userID string) UserContext {
	return UserContext{
		UserID:             userID,
		CurrentEmotion:     EmotionHopeful,
		RelationshipGoals:  "unclear",
		CommunicationStyle: StyleGentle,
		PersonalityTraits:  []string{},
		LearningPreferences: LearningPreferences{
			PreferredAIStyle:    AIStyleBalanced,
			FeedbackSensitivity: "medium",
			DetailLevel:         DetailDetailed,
		},
		SessionHistory: []SessionContext{},
		LastActivity:   time.Now().UTC(),
	}
}

// UserContextPatch describe una actualizacion parcial; punteros nil se ignoran.
// Los campos de slice reemplazan el valor completo.
type UserContextPatch struct {
	CurrentEmotion      *string              `json:"current_emotion,omitempty"`
	RelationshipGoals   *string              `json:"relationship_goals,omitempty"`
	CommunicationStyle  *string              `json:"communication_style,omitempty"`
	PersonalityTraits   []string             `json:"personality_traits,omitempty"`
	LearningPreferences *LearningPreferences `json:"learning_preferences,omitempty"`
}
