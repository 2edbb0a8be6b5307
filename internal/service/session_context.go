package service

import (
	"time"

	"github.com/google/uuid"

	"match-coach/internal/domain"
)

// SessionContextFactory deriva el contexto de una interaccion puntual desde el
// UserContext vigente y la intencion declarada, y lo anota en el historial.
type SessionContextFactory struct {
	store UserContextStore
}

func NewSessionContextFactory(store UserContextStore) *SessionContextFactory {
	return &SessionContextFactory{store: store}
}

var positiveEmotions = map[string]struct{}{
	domain.EmotionExcited:   {},
	domain.EmotionHopeful:   {},
	domain.EmotionConfident: {},
}

var negativeEmotions = map[string]struct{}{
	domain.EmotionAnxious:    {},
	domain.EmotionFrustrated: {},
	domain.EmotionUncertain:  {},
}

// DeriveEmotionalState clasifica la emocion actual en positivo/negativo/neutral.
// Valores no mapeados caen en neutral, sin politica mas lista.
func DeriveEmotionalState(currentEmotion string) string {
	if _, ok := positiveEmotions[currentEmotion]; ok {
		return domain.EmotionalStatePositive
	}
	if _, ok := negativeEmotions[currentEmotion]; ok {
		return domain.EmotionalStateNegative
	}
	return domain.EmotionalStateNeutral
}

// DeriveUrgency aplica la tabla fija intencion x emocion.
func DeriveUrgency(intent, currentEmotion string) string {
	if intent == domain.IntentDatePlanning && currentEmotion == domain.EmotionAnxious {
		return domain.UrgencyHigh
	}
	if intent == domain.IntentRelationshipAdvice {
		return domain.UrgencyMedium
	}
	return domain.UrgencyLow
}

// DeriveContextTags arma [emocion, metas, estilo, intencion, hasta 3 rasgos],
// filtrando valores vacios.
func DeriveContextTags(uc domain.UserContext, intent string) []string {
	candidates := []string{uc.CurrentEmotion, uc.RelationshipGoals, uc.CommunicationStyle, intent}
	traits := uc.PersonalityTraits
	if len(traits) > 3 {
		traits = traits[:3]
	}
	candidates = append(candidates, traits...)

	tags := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c != "" {
			tags = append(tags, c)
		}
	}
	return tags
}

// Create deriva un SessionContext y lo agrega al ring de historial del usuario,
// expulsando el mas viejo cuando supera el limite.
func (f *SessionContextFactory) Create(userID, intent, connectionID string) (domain.SessionContext, error) {
	uc, err := f.store.Get(userID)
	if err != nil {
		return domain.SessionContext{}, err
	}

	sc := domain.SessionContext{
		SessionID:      uuid.NewString(),
		UserID:         userID,
		ConnectionID:   connectionID,
		Timestamp:      time.Now().UTC(),
		UserIntent:     intent,
		EmotionalState: DeriveEmotionalState(uc.CurrentEmotion),
		UrgencyLevel:   DeriveUrgency(intent, uc.CurrentEmotion),
		ContextTags:    DeriveContextTags(uc, intent),
	}

	uc.SessionHistory = append(uc.SessionHistory, sc)
	if len(uc.SessionHistory) > domain.MaxSessionHistory {
		uc.SessionHistory = uc.SessionHistory[len(uc.SessionHistory)-domain.MaxSessionHistory:]
	}
	if err := f.store.Put(userID, uc); err != nil {
		return domain.SessionContext{}, err
	}

	return sc, nil
}
