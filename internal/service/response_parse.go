package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"match-coach/internal/domain"
)

// ResponseParser convierte la salida cruda de un proveedor al formato esperado.
// Regla central: la salida de IA no es confiable, asi que el parseo nunca
// lanza error; un JSON invalido degrada a {error, originalText}.
type ResponseParser struct{}

// DefaultResponseParser permite uso directo sin instanciar.
var DefaultResponseParser = ResponseParser{}

// Parse interpreta la respuesta segun el formato esperado del prompt.
func (p ResponseParser) Parse(text, format string) map[string]any {
	switch format {
	case domain.OutputJSON:
		return p.parseJSON(text)
	case domain.OutputStructured:
		return p.parseStructured(text)
	default:
		return map[string]any{"text": text}
	}
}

func (p ResponseParser) parseJSON(text string) map[string]any {
	cleaned := cleanModelResponse(text)

	candidates := []string{cleaned}
	if obj := extractFirstJSONObject(cleaned); obj != "" && obj != cleaned {
		candidates = append(candidates, obj)
	}

	for _, candidate := range candidates {
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out
		}
	}

	return map[string]any{
		"error":        "Invalid JSON response",
		"originalText": text,
	}
}

var structuredLabels = map[string]*regexp.Regexp{
	"advice": regexp.MustCompile(`(?is)advice\s*:\s*(.*?)(?:\n\s*(?:action|timing)\s*:|$)`),
	"action": regexp.MustCompile(`(?is)action\s*:\s*(.*?)(?:\n\s*(?:advice|timing)\s*:|$)`),
	"timing": regexp.MustCompile(`(?is)timing\s*:\s*(.*?)(?:\n\s*(?:advice|action)\s*:|$)`),
}

// parseStructured extrae segmentos etiquetados advice:/action:/timing:.
// Si no hay ninguna etiqueta, todo el texto pasa como advice.
func (p ResponseParser) parseStructured(text string) map[string]any {
	out := make(map[string]any)
	for key, re := range structuredLabels {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			if v := strings.TrimSpace(m[1]); v != "" {
				out[key] = v
			}
		}
	}
	if len(out) == 0 {
		out["advice"] = strings.TrimSpace(text)
	}
	return out
}
