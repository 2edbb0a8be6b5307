package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/llm"
)

// ScreenshotExtractor convierte capturas de chat en datos estructurados de
// conversacion y propone parches de contexto para la conexion.
type ScreenshotExtractor struct {
	vision   llm.VisionExecutor
	text     llm.Executor
	provider string
	logger   *zap.Logger
}

func NewScreenshotExtractor(vision llm.VisionExecutor, text llm.Executor, provider string, logger *zap.Logger) *ScreenshotExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenshotExtractor{
		vision:   vision,
		text:     text,
		provider: provider,
		logger:   logger,
	}
}

const platformDetectPrompt = `Look at this screenshot of a messaging app. Answer with exactly one word, the app it comes from: tinder, bumble, hinge, whatsapp, imessage or unknown.`

var knownPlatforms = map[string]struct{}{
	domain.PlatformTinder:   {},
	domain.PlatformBumble:   {},
	domain.PlatformHinge:    {},
	domain.PlatformWhatsApp: {},
	domain.PlatformIMessage: {},
}

func extractionPrompt(platform string) string {
	appNote := "a messaging app"
	switch platform {
	case domain.PlatformTinder, domain.PlatformBumble, domain.PlatformHinge:
		appNote = fmt.Sprintf("the dating app %s: messages from the user are right-aligned, the match's are left-aligned", platform)
	case domain.PlatformWhatsApp, domain.PlatformIMessage:
		appNote = fmt.Sprintf("%s: the user's own messages are right-aligned bubbles", platform)
	}
	return fmt.Sprintf(`This is a screenshot of a conversation in %s. Extract every visible message in order.
Return ONLY JSON with this shape:
{"match_name":"...","messages":[{"sender":"user"|"match","text":"...","timestamp":"..."}]}
Use "user" for messages sent by the phone's owner and "match" for the other person. Omit timestamps you cannot read.`, appNote)
}

type visionExtraction struct {
	MatchName string               `json:"match_name"`
	Messages  []domain.ChatMessage `json:"messages"`
}

// ProcessImage detecta la plataforma, corre la extraccion con el prompt
// especifico y parsea el resultado. Una respuesta no-JSON degrada al parser
// textual linea a linea en vez de fallar.
func (e *ScreenshotExtractor) ProcessImage(ctx context.Context, image []byte) (domain.ScreenshotAnalysis, error) {
	platform := e.detectPlatform(ctx, image)

	raw, err := e.vision.ExecuteVision(ctx, e.provider, extractionPrompt(platform), image, llm.GenerationConfig{})
	if err != nil {
		return domain.ScreenshotAnalysis{}, fmt.Errorf("%w: %v", domain.ErrExecutionFailed, err)
	}

	analysis := domain.ScreenshotAnalysis{
		Platform:   platform,
		RawText:    raw,
		AnalyzedAt: time.Now().UTC(),
	}

	cleaned := cleanModelResponse(raw)
	candidate := extractFirstJSONObject(cleaned)
	if candidate == "" {
		candidate = cleaned
	}

	var parsed visionExtraction
	if err := json.Unmarshal([]byte(candidate), &parsed); err == nil && len(parsed.Messages) > 0 {
		analysis.MatchName = parsed.MatchName
		analysis.Messages = parsed.Messages
		return analysis, nil
	}

	e.logger.Warn("vision response not parseable as json, using textual fallback",
		zap.String("platform", platform))
	analysis.Messages = fallbackParseMessages(raw)
	analysis.Degraded = true
	return analysis, nil
}

func (e *ScreenshotExtractor) detectPlatform(ctx context.Context, image []byte) string {
	raw, err := e.vision.ExecuteVision(ctx, e.provider, platformDetectPrompt, image, llm.GenerationConfig{MaxTokens: 10})
	if err != nil {
		e.logger.Warn("platform detection failed", zap.Error(err))
		return domain.PlatformUnknown
	}
	word := strings.ToLower(strings.TrimSpace(strings.Trim(cleanModelResponse(raw), `."'`)))
	if _, ok := knownPlatforms[word]; ok {
		return word
	}
	return domain.PlatformUnknown
}

// fallbackParseMessages interpreta lineas "You: ..." / "Them: ..." de una
// respuesta que no vino en JSON.
func fallbackParseMessages(raw string) []domain.ChatMessage {
	var messages []domain.ChatMessage
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "you:") || strings.HasPrefix(lower, "user:"):
			text := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			if text != "" {
				messages = append(messages, domain.ChatMessage{Sender: "user", Text: text})
			}
		case strings.HasPrefix(lower, "them:") || strings.HasPrefix(lower, "match:"):
			text := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			if text != "" {
				messages = append(messages, domain.ChatMessage{Sender: "match", Text: text})
			}
		}
	}
	return messages
}

var positiveWords = []string{"love", "great", "haha", "lol", "fun", "excited", "yes!", "can't wait", "amazing", ":)", "😊", "😂", "❤"}
var negativeWords = []string{"sorry", "busy", "can't", "maybe later", "not sure", "whatever", "fine.", "k.", "annoyed"}

func classifySentiment(text string) string {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	default:
		return "neutral"
	}
}

var topicKeywords = map[string][]string{
	"travel":  {"trip", "travel", "vacation", "flight", "beach"},
	"food":    {"dinner", "restaurant", "cook", "food", "coffee", "drinks"},
	"music":   {"concert", "music", "band", "song", "playlist"},
	"fitness": {"gym", "run", "hike", "workout", "yoga", "climbing"},
	"movies":  {"movie", "film", "series", "show", "netflix"},
	"work":    {"work", "job", "office", "meeting", "boss"},
	"pets":    {"dog", "cat", "puppy", "pet"},
}

func extractTopics(messages []domain.ChatMessage) []string {
	var all strings.Builder
	for _, m := range messages {
		all.WriteString(strings.ToLower(m.Text))
		all.WriteString(" ")
	}
	text := all.String()

	var topics []string
	for topic, words := range topicKeywords {
		for _, w := range words {
			if strings.Contains(text, w) {
				topics = append(topics, topic)
				break
			}
		}
	}
	// Orden estable para que el resultado sea determinista.
	sort.Strings(topics)
	return topics
}

// ExtractConversationData deriva señales agregadas de los mensajes extraidos.
func (e *ScreenshotExtractor) ExtractConversationData(analysis domain.ScreenshotAnalysis) (domain.ConversationData, error) {
	if len(analysis.Messages) == 0 {
		return domain.ConversationData{}, domain.ErrNoMessagesFound
	}

	last := analysis.Messages[len(analysis.Messages)-1]

	trend := "decreasing"
	switch {
	case len(analysis.Messages) > 10:
		trend = "increasing"
	case len(analysis.Messages) > 5:
		trend = "stable"
	}

	pos, neg := 0, 0
	for _, m := range analysis.Messages {
		switch classifySentiment(m.Text) {
		case "positive":
			pos++
		case "negative":
			neg++
		}
	}
	tone := "neutral"
	if pos > neg {
		tone = "warm"
	} else if neg > pos {
		tone = "tense"
	}

	return domain.ConversationData{
		MessageCount:         len(analysis.Messages),
		LastMessageSender:    last.Sender,
		LastMessageSentiment: classifySentiment(last.Text),
		FrequencyTrend:       trend,
		Topics:               extractTopics(analysis.Messages),
		EmotionalTone:        tone,
	}, nil
}

const contextUpdatePrompt = `Given this conversation between a user and their match, propose updates for the relationship record.
Return ONLY JSON: {"current_stage":"...","new_hobbies":["..."],"updated_feelings":"...","communication_changes":"..."}.
Leave out any field you cannot infer. Conversation:
%s`

// ProposeContextUpdates pide al modelo un parche JSON de contexto. Cualquier
// falla de parseo devuelve parche vacio, nunca error: el pipeline debe seguir
// siendo usable con datos parciales.
func (e *ScreenshotExtractor) ProposeContextUpdates(ctx context.Context, messages []domain.ChatMessage) domain.ContextUpdates {
	if len(messages) == 0 {
		return domain.ContextUpdates{}
	}

	var convo strings.Builder
	for _, m := range messages {
		convo.WriteString(m.Sender)
		convo.WriteString(": ")
		convo.WriteString(m.Text)
		convo.WriteString("\n")
	}

	raw, err := e.text.Execute(ctx, e.provider, fmt.Sprintf(contextUpdatePrompt, convo.String()), llm.GenerationConfig{})
	if err != nil {
		e.logger.Warn("context update proposal failed", zap.Error(err))
		return domain.ContextUpdates{}
	}

	cleaned := cleanModelResponse(raw)
	candidate := extractFirstJSONObject(cleaned)
	if candidate == "" {
		candidate = cleaned
	}

	var updates domain.ContextUpdates
	if err := json.Unmarshal([]byte(candidate), &updates); err != nil {
		e.logger.Warn("context update response not parseable", zap.Error(err))
		return domain.ContextUpdates{}
	}
	return updates
}
