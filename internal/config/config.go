package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	// GeminiAPIKey enables the remote narrator when set.
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"PILGRIMAGE_GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	RemoteTimeout time.Duration `env:"PILGRIMAGE_REMOTE_TIMEOUT" envDefault:"8s"`
	RemoteEvents  bool          `env:"PILGRIMAGE_REMOTE_EVENTS" envDefault:"false"`
	Seed          string        `env:"PILGRIMAGE_SEED"`
	LogFile       string        `env:"PILGRIMAGE_LOG_FILE" envDefault:"pilgrimage.log"`
	ChronicleDir  string        `env:"PILGRIMAGE_CHRONICLE_DIR" envDefault:".chronicles"`
}

// RemoteEnabled reports whether a remote narrator can be created.
func (c *Config) RemoteEnabled() bool { return c.GeminiAPIKey != "" }

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout < 0 {
		return nil, fmt.Errorf("PILGRIMAGE_REMOTE_TIMEOUT must not be negative, got %s", cfg.RemoteTimeout)
	}
	return &cfg, nil
}
