package service

import (
	"strings"
	"testing"

	"match-coach/internal/domain"
)

func TestParse_JSONValid(t *testing.T) {
	out := DefaultResponseParser.Parse(`{"a":1}`, domain.OutputJSON)
	v, ok := out["a"]
	if !ok {
		t.Fatalf("expected key a, got %v", out)
	}
	if n, ok := v.(float64); !ok || n != 1 {
		t.Fatalf("expected a=1, got %v", v)
	}
}

func TestParse_JSONInvalidDegrades(t *testing.T) {
	out := DefaultResponseParser.Parse("not json", domain.OutputJSON)
	if out["error"] != "Invalid JSON response" {
		t.Fatalf("expected degradation marker, got %v", out)
	}
	if out["originalText"] != "not json" {
		t.Fatalf("expected original text preserved, got %v", out)
	}
}

func TestParse_JSONWithFencesAndChatter(t *testing.T) {
	raw := "```json\n{\"advice\":\"be bold\"}\n```"
	out := DefaultResponseParser.Parse(raw, domain.OutputJSON)
	if out["advice"] != "be bold" {
		t.Fatalf("expected fenced json parsed, got %v", out)
	}

	noisy := "Sure! Here you go: {\"advice\":\"be bold\"} hope that helps"
	out = DefaultResponseParser.Parse(noisy, domain.OutputJSON)
	if out["advice"] != "be bold" {
		t.Fatalf("expected embedded object extracted, got %v", out)
	}
}

func TestParse_StructuredLabels(t *testing.T) {
	raw := "Advice: listen more than you talk.\nAction: suggest a picnic.\nTiming: Saturday afternoon."
	out := DefaultResponseParser.Parse(raw, domain.OutputStructured)

	if !strings.Contains(out["advice"].(string), "listen more") {
		t.Fatalf("advice segment wrong: %v", out)
	}
	if !strings.Contains(out["action"].(string), "picnic") {
		t.Fatalf("action segment wrong: %v", out)
	}
	if !strings.Contains(out["timing"].(string), "Saturday") {
		t.Fatalf("timing segment wrong: %v", out)
	}
}

func TestParse_StructuredWithoutLabelsFallsBackToAdvice(t *testing.T) {
	raw := "Just keep the conversation playful and ask about her trip."
	out := DefaultResponseParser.Parse(raw, domain.OutputStructured)

	if out["advice"] != raw {
		t.Fatalf("expected full text as advice, got %v", out)
	}
	if _, ok := out["action"]; ok {
		t.Fatalf("did not expect an action segment: %v", out)
	}
}

func TestParse_TextWrap(t *testing.T) {
	out := DefaultResponseParser.Parse("hello there", domain.OutputText)
	if out["text"] != "hello there" {
		t.Fatalf("expected wrapped text, got %v", out)
	}
}

func TestExtractFirstJSONObject_RespectsStrings(t *testing.T) {
	input := `prefix {"msg":"brace } inside","n":2} suffix`
	got := extractFirstJSONObject(input)
	want := `{"msg":"brace } inside","n":2}`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	if got := extractFirstJSONObject("no object here"); got != "" {
		t.Fatalf("expected empty for missing object, got %q", got)
	}
	if got := extractFirstJSONObject(`{"unterminated": true`); got != "" {
		t.Fatalf("expected empty for unbalanced object, got %q", got)
	}
}

func TestCleanModelResponse(t *testing.T) {
	raw := "\uFEFF```json\n{\"x\":1}\n```"
	if got := cleanModelResponse(raw); got != `{"x":1}` {
		t.Fatalf("expected fences and BOM stripped, got %q", got)
	}
	if got := cleanModelResponse("   "); got != "" {
		t.Fatalf("expected empty for whitespace, got %q", got)
	}
}
