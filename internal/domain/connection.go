package domain

import "time"

// Connection es el registro persistido de una relacion/match del usuario.
// El motor solo produce parches (ContextUpdates); la escritura vive en el repositorio.
type Connection struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Platform           string    `json:"platform,omitempty"`
	CurrentStage       string    `json:"current_stage"` // ej: "matched", "talking", "dating"
	Hobbies            []string  `json:"hobbies,omitempty"`
	Feelings           string    `json:"feelings,omitempty"`
	CommunicationNotes string    `json:"communication_notes,omitempty"`
	LastAnalyzedAt     time.Time `json:"last_analyzed_at,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
