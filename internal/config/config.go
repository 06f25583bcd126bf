package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const defaultDeveloperPrompt = "You are a helpful assistant helping users with their queries. " +
	"Use the tools available to you when they help answer the question, and cite retrieved documents when you rely on them."

// Config holds the environment driven configuration for the turn service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"turn-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8088"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	DatabaseURL     string        `env:"TURN_DATABASE_URL" envDefault:""`
	DBMaxIdleConns  int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns  int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime  time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	AuthEnabled     bool          `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer      string        `env:"AUTH_ISSUER"`
	AuthAudience    string        `env:"AUTH_AUDIENCE"`
	AuthJWKSURL     string        `env:"AUTH_JWKS_URL"`
	ModelAPIURL     string        `env:"MODEL_API_URL" envDefault:"https://api.openai.com/v1"`
	ModelAPIKey     string        `env:"MODEL_API_KEY"`
	VectorStoreURL  string        `env:"VECTOR_STORE_API_URL" envDefault:""`
	DefaultModel    string        `env:"DEFAULT_MODEL" envDefault:"gpt-4.1"`
	DeveloperPrompt string        `env:"DEVELOPER_PROMPT"`
	MaxToolRounds   int           `env:"MAX_TOOL_ROUNDS" envDefault:"8"`
	ToolTimeout     time.Duration `env:"TOOL_EXECUTION_TIMEOUT" envDefault:"45s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthAudience) == "" {
			return nil, fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	if strings.TrimSpace(cfg.DeveloperPrompt) == "" {
		cfg.DeveloperPrompt = defaultDeveloperPrompt
	}

	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 8
	}

	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 45 * time.Second
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
