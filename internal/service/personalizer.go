package service

import (
	"fmt"
	"strings"

	"match-coach/internal/domain"
)

// PatternSource expone las intenciones historicamente preferidas de un usuario.
// Recibe el contexto ya cargado para no releer el store a mitad de solicitud.
// Lo implementa el LearningLedger; los tests inyectan stubs.
type PatternSource interface {
	PreferredPromptTypes(uc domain.UserContext) []string
}

// PromptPersonalizer transforma una instruccion base en una personalizada.
// Pipeline determinista de etapas que solo agregan texto, nunca reescriben:
// el orden importa y el prompt base siempre sobrevive como substring.
type PromptPersonalizer struct {
	patterns PatternSource
}

func NewPromptPersonalizer(patterns PatternSource) *PromptPersonalizer {
	return &PromptPersonalizer{patterns: patterns}
}

var emotionalFramings = map[string]string{
	domain.EmotionExcited:    "The user is feeling excited and energetic about their dating life right now.",
	domain.EmotionAnxious:    "The user is feeling anxious and needs reassurance; keep the tone calming and supportive.",
	domain.EmotionHopeful:    "The user is feeling hopeful about where things are going; encourage that optimism.",
	domain.EmotionFrustrated: "The user is feeling frustrated with how things have been going; acknowledge that before advising.",
	domain.EmotionConfident:  "The user is feeling confident; match that energy without overdoing it.",
	domain.EmotionUncertain:  "The user is feeling uncertain and unsure of themselves; be extra clear and validating.",
}

const defaultEmotionalFraming = "Consider the user's current emotional state when responding."

var styleDirectives = map[string]string{
	domain.StyleDirect:    "Be direct and to the point in your suggestions.",
	domain.StyleGentle:    "Use a gentle, warm tone in your suggestions.",
	domain.StyleHumorous:  "Keep the tone light and work in appropriate humor.",
	domain.StyleFormal:    "Keep the tone polished and respectful.",
	domain.StyleEmotional: "Lean into emotional expression and empathy.",
}

var detailDirectives = map[string]string{
	domain.DetailBrief:         "Keep the response brief and focused on the single most useful point.",
	domain.DetailDetailed:      "Provide a detailed response with clear reasoning.",
	domain.DetailComprehensive: "Provide a comprehensive response covering options, reasoning, and next steps.",
}

// FrameEmotion es la etapa 1: antepone el encuadre emocional.
func FrameEmotion(prompt, currentEmotion string) string {
	framing, ok := emotionalFramings[currentEmotion]
	if !ok {
		framing = defaultEmotionalFraming
	}
	return framing + " " + prompt
}

// ApplyStyle es la etapa 2: agrega la directiva de estilo de comunicacion.
// Estilos no mapeados son no-op.
func ApplyStyle(prompt, communicationStyle string) string {
	directive, ok := styleDirectives[communicationStyle]
	if !ok {
		return prompt
	}
	return prompt + " " + directive
}

// ApplyTraits es la etapa 3: agrega una guia de personalidad con los rasgos
// textuales. Se omite si no hay rasgos.
func ApplyTraits(prompt string, traits []string) string {
	if len(traits) == 0 {
		return prompt
	}
	return prompt + fmt.Sprintf(" The user's personality leans toward: %s; tailor suggestions to fit.", strings.Join(traits, ", "))
}

// ApplyPreferenceNote es la etapa 4: agrega la nota de preferencias pasadas
// cuando la intencion actual esta entre las historicamente preferidas.
func ApplyPreferenceNote(prompt, intent string, preferredIntents []string) string {
	for _, p := range preferredIntents {
		if p == intent {
			return prompt + " Based on your past preferences, this type of request has worked well for you before."
		}
	}
	return prompt
}

// ApplyDetailLevel es la etapa 5: agrega la directiva de nivel de detalle.
func ApplyDetailLevel(prompt, detailLevel string) string {
	directive, ok := detailDirectives[detailLevel]
	if !ok {
		directive = detailDirectives[domain.DetailDetailed]
	}
	return prompt + " " + directive
}

// Personalize aplica las cinco etapas en orden fijo.
func (p *PromptPersonalizer) Personalize(basePrompt string, uc domain.UserContext, sc domain.SessionContext) string {
	out := FrameEmotion(basePrompt, uc.CurrentEmotion)
	out = ApplyStyle(out, uc.CommunicationStyle)
	out = ApplyTraits(out, uc.PersonalityTraits)

	var preferred []string
	if p.patterns != nil {
		preferred = p.patterns.PreferredPromptTypes(uc)
	}
	out = ApplyPreferenceNote(out, sc.UserIntent, preferred)

	out = ApplyDetailLevel(out, uc.LearningPreferences.DetailLevel)
	return out
}

// Factors calcula los scores de diagnostico 0-1 del ajuste aplicado.
func Factors(uc domain.UserContext, sc domain.SessionContext) domain.PersonalizationFactors {
	tone := 0.5
	switch sc.EmotionalState {
	case domain.EmotionalStatePositive:
		tone = 0.8
	case domain.EmotionalStateNegative:
		tone = 0.2
	}

	directness := 0.5
	switch uc.CommunicationStyle {
	case domain.StyleDirect:
		directness = 0.9
	case domain.StyleFormal:
		directness = 0.7
	case domain.StyleGentle, domain.StyleEmotional:
		directness = 0.3
	}

	creativity := 0.5
	switch uc.LearningPreferences.PreferredAIStyle {
	case domain.AIStyleCreative:
		creativity = 0.9
	case domain.AIStyleAnalytical:
		creativity = 0.2
	}

	detail := 0.5
	switch uc.LearningPreferences.DetailLevel {
	case domain.DetailBrief:
		detail = 0.2
	case domain.DetailComprehensive:
		detail = 0.9
	}

	return domain.PersonalizationFactors{
		EmotionalTone:   tone,
		DirectnessLevel: directness,
		CreativityLevel: creativity,
		DetailLevel:     detail,
	}
}
