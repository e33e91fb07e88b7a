package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the client-side settings. It is built once at startup and the
// resolved base URL is handed to the API client; nothing re-reads the
// environment afterwards.
type Config struct {
	APIBaseURL string `env:"X402_API_BASE_URL"`
	Prod       bool   `env:"X402_PROD" envDefault:"false"`
	Mode       string `env:"X402_MODE" envDefault:"development"`
	LogLevel   string `env:"X402_LOG_LEVEL" envDefault:"info"`

	Telemetry TelemetryConfig
}

// TelemetryConfig is the OTLP trace exporter setup shared by both binaries.
// An empty Endpoint disables tracing.
type TelemetryConfig struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

func (c TelemetryConfig) Enabled() bool {
	return c.Endpoint != ""
}

// IsProduction is true when either the build flag is set or the mode says so.
func (c *Config) IsProduction() bool {
	return c.Prod || c.Mode == ModeProduction
}

// BaseURL resolves the origin every request is sent to: an explicit override
// wins, then the production origin, then the local development server.
func (c *Config) BaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	if c.IsProduction() {
		return ProductionBaseURL
	}
	return DevelopmentBaseURL
}

// Validate logs settings that look wrong. It never rejects them: whatever
// BaseURL resolves to is what the client uses.
func (c *Config) Validate() {
	if c.APIBaseURL != "" &&
		!strings.HasPrefix(c.APIBaseURL, "http://") &&
		!strings.HasPrefix(c.APIBaseURL, "https://") {
		log.Warn().Str("base_url", c.APIBaseURL).Msg("X402_API_BASE_URL has no http:// or https:// scheme: requests will likely fail")
	}

	if c.IsProduction() && strings.HasPrefix(c.BaseURL(), "http://") {
		log.Warn().Str("base_url", c.BaseURL()).Msg("production mode with a plain http:// base URL")
	}
}

// ServerConfig configures the local stub backend.
type ServerConfig struct {
	Port            int      `env:"STUB_PORT" envDefault:"3001"`
	SessionTTLHours int      `env:"STUB_SESSION_TTL_HOURS" envDefault:"24"`
	LogLevel        string   `env:"STUB_LOG_LEVEL" envDefault:"info"`
	SessionPriceUSD float64  `env:"STUB_SESSION_PRICE_USD" envDefault:"0.10"`
	OneTimePriceUSD float64  `env:"STUB_ONETIME_PRICE_USD" envDefault:"0.01"`
	AllowedOrigins  []string `env:"STUB_ALLOWED_ORIGINS" envSeparator:","`
	MaxBodyBytes    int64    `env:"STUB_MAX_BODY_BYTES" envDefault:"65536"`

	Telemetry TelemetryConfig
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("STUB_PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("STUB_SESSION_TTL_HOURS must be positive, got %d", c.SessionTTLHours)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("STUB_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.SessionPriceUSD < 0 || c.OneTimePriceUSD < 0 {
		log.Warn().Msg("negative stub prices: payment records will carry negative amounts")
	}
	return nil
}

func (c *ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func LoadServer() (*ServerConfig, error) {
	loadDotEnv()

	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()
}
