package service

import (
	"fmt"
	"strings"

	"match-coach/internal/domain"
)

// BasePromptGenerator es el colaborador externo que entrega la instruccion
// generica por intencion. Debe devolver un prompt aun sin conexion para
// intenciones genericas.
type BasePromptGenerator interface {
	Generate(kind string, connection *domain.Connection, styleHint string) string
}

// TemplateBasePrompts es la implementacion por defecto basada en plantillas fijas.
type TemplateBasePrompts struct{}

func connectionBlurb(connection *domain.Connection) string {
	if connection == nil {
		return ""
	}
	parts := []string{fmt.Sprintf("The user is talking with %s", connection.Name)}
	if connection.Platform != "" {
		parts = append(parts, "on "+connection.Platform)
	}
	if connection.CurrentStage != "" {
		parts = append(parts, fmt.Sprintf("(current stage: %s)", connection.CurrentStage))
	}
	blurb := strings.Join(parts, " ") + "."
	if len(connection.Hobbies) > 0 {
		blurb += fmt.Sprintf(" Their match is into: %s.", strings.Join(connection.Hobbies, ", "))
	}
	return blurb + " "
}

// Generate arma el prompt base para la intencion dada. Si una intencion que
// normalmente requiere conexion llega sin ella, cae a la guia generica.
func (TemplateBasePrompts) Generate(kind string, connection *domain.Connection, styleHint string) string {
	blurb := connectionBlurb(connection)

	var body string
	switch kind {
	case domain.IntentFirstMessage:
		if connection == nil {
			body = "Suggest an engaging opening message for a new dating app match."
		} else {
			body = blurb + "Suggest an engaging first message that references something specific about the match."
		}
	case domain.IntentConversationDeepening:
		body = blurb + "Suggest ways to move the conversation beyond small talk and build a genuine connection."
	case domain.IntentDatePlanning:
		if connection == nil {
			body = "Help the user plan a first date. Cover advice, a concrete action, and timing."
		} else {
			body = blurb + "Help the user plan a date this match would enjoy. Cover advice, a concrete action, and timing."
		}
	case domain.IntentRelationshipAdvice:
		body = blurb + "Give thoughtful relationship advice for the user's situation. Cover advice, a concrete action, and timing."
	case domain.IntentProfileReview:
		body = "Review the user's dating profile approach and suggest concrete improvements."
	default:
		body = "Provide helpful, supportive relationship guidance for the user's situation."
	}

	if styleHint != "" {
		body += " Style hint: " + styleHint + "."
	}
	return body
}
