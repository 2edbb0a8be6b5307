package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GenerationConfig parametriza una llamada de ejecucion a un proveedor.
type GenerationConfig struct {
	Model            string         `json:"model,omitempty"`
	MaxTokens        int            `json:"max_tokens,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
	CustomParameters map[string]any `json:"custom_parameters,omitempty"`
}

// Executor define la interfaz de ejecucion contra proveedores de IA.
// El proveedor se elige por id; cualquier error se trata como fatal para esa llamada.
type Executor interface {
	Execute(ctx context.Context, providerID, prompt string, cfg GenerationConfig) (string, error)
}

// VisionExecutor acepta ademas una imagen inline para prompts multimodales.
type VisionExecutor interface {
	ExecuteVision(ctx context.Context, providerID, prompt string, image []byte, cfg GenerationConfig) (string, error)
}

type logger interface {
	Printf(format string, v ...interface{})
}

// ProviderEndpoint describe un proveedor OpenAI-compatible.
type ProviderEndpoint struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
}

// HTTPExecutor implementa Executor y VisionExecutor usando APIs de chat completions.
type HTTPExecutor struct {
	providers map[string]ProviderEndpoint
	client    *http.Client
	logger    logger
}

// NewHTTPExecutor construye un executor con el catalogo de proveedores dado.
func NewHTTPExecutor(providers map[string]ProviderEndpoint, log any) *HTTPExecutor {
	l, _ := log.(logger)
	return &HTTPExecutor{
		providers: providers,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    l,
	}
}

func (c *HTTPExecutor) endpoint(providerID string) (ProviderEndpoint, error) {
	p, ok := c.providers[providerID]
	if !ok {
		return ProviderEndpoint{}, fmt.Errorf("unknown provider %q", providerID)
	}
	return p, nil
}

// Execute envia el prompt como un turno de usuario y devuelve el contenido de la primera opcion.
func (c *HTTPExecutor) Execute(ctx context.Context, providerID, prompt string, cfg GenerationConfig) (string, error) {
	content := []chatContent{{Type: "text", Text: prompt}}
	return c.execute(ctx, providerID, content, cfg)
}

// ExecuteVision adjunta la imagen como data URL base64 junto al texto del prompt.
func (c *HTTPExecutor) ExecuteVision(ctx context.Context, providerID, prompt string, image []byte, cfg GenerationConfig) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(image)
	content := []chatContent{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &chatImageURL{URL: "data:image/png;base64," + encoded}},
	}
	return c.execute(ctx, providerID, content, cfg)
}

func (c *HTTPExecutor) execute(ctx context.Context, providerID string, content []chatContent, cfg GenerationConfig) (string, error) {
	p, err := c.endpoint(providerID)
	if err != nil {
		return "", err
	}

	model := cfg.Model
	if model == "" {
		model = p.DefaultModel
	}

	reqBody := map[string]any{
		"model": model,
		"messages": []chatMessage{
			{Role: "user", Content: content},
		},
	}
	if cfg.MaxTokens > 0 {
		reqBody["max_tokens"] = cfg.MaxTokens
	}
	if cfg.Temperature > 0 {
		reqBody["temperature"] = cfg.Temperature
	}
	for k, v := range cfg.CustomParameters {
		reqBody[k] = v
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.BaseURL, "/")+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Printf("provider %s error status %d: %s", providerID, resp.StatusCode, string(respBody))
		}
		return "", fmt.Errorf("provider %s http error: status=%d", providerID, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if cr.Error != nil {
		return "", fmt.Errorf("provider %s api error: %s", providerID, cr.Error.Message)
	}

	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("provider %s empty response", providerID)
	}

	return cr.Choices[0].Message.Content, nil
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
