package domain

import "time"

// LearningMetric agrega efectividad por (usuario, tipo de prompt, proveedor).
// Se crea en el primer evento de aprendizaje del triple y nunca se borra.
type LearningMetric struct {
	UserID            string    `json:"user_id"`
	PromptType        string    `json:"prompt_type"`
	AIProvider        string    `json:"ai_provider"`
	SuccessRate       float64   `json:"success_rate"`
	UsageFrequency    int       `json:"usage_frequency"`
	AverageRating     float64   `json:"average_rating"`
	ContextSimilarity float64   `json:"context_similarity"`
	LastUpdated       time.Time `json:"last_updated"`
}

// TimingSample es un par crudo (hora, dia de semana) de una sesion pasada.
// El agrupamiento en histograma queda del lado del consumidor.
type TimingSample struct {
	Hour      int          `json:"hour"`
	DayOfWeek time.Weekday `json:"day_of_week"`
}

// CommunicationPreferences resume tendencias observadas en las sesiones.
type CommunicationPreferences struct {
	Urgency float64 `json:"urgency"` // fraccion de sesiones con urgencia alta
	Detail  float64 `json:"detail"`  // fraccion de sesiones con intencion detallista
}

// UserPatterns es el resultado del analisis de patrones historicos.
type UserPatterns struct {
	PreferredPromptTypes     []string                 `json:"preferred_prompt_types"`
	OptimalTiming            []TimingSample           `json:"optimal_timing"`
	EffectiveAIProviders     []string                 `json:"effective_ai_providers"`
	CommunicationPreferences CommunicationPreferences `json:"communication_preferences"`
}
