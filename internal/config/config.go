package config

import (
	"github.com/caarlos0/env/v10"

	"match-coach/internal/llm"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	ClaudeBaseURL string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	ClaudeAPIKey  string `env:"CLAUDE_API_KEY"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`

	GPTBaseURL string `env:"GPT_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GPTAPIKey  string `env:"GPT_API_KEY"`
	GPTModel   string `env:"GPT_MODEL" envDefault:"gpt-4o"`

	VisionProvider string `env:"VISION_PROVIDER" envDefault:"gpt"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Providers arma el catalogo de endpoints a partir de la configuracion.
// Solo incluye proveedores con API key presente.
func (c *Config) Providers() map[string]llm.ProviderEndpoint {
	providers := make(map[string]llm.ProviderEndpoint)
	if c.ClaudeAPIKey != "" {
		providers[llm.ProviderClaude] = llm.ProviderEndpoint{
			BaseURL:      c.ClaudeBaseURL,
			APIKey:       c.ClaudeAPIKey,
			DefaultModel: c.ClaudeModel,
		}
	}
	if c.GPTAPIKey != "" {
		providers[llm.ProviderGPT] = llm.ProviderEndpoint{
			BaseURL:      c.GPTBaseURL,
			APIKey:       c.GPTAPIKey,
			DefaultModel: c.GPTModel,
		}
	}
	return providers
}
