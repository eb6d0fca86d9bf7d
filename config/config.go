// Package config loads bot settings from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds everything needed to wire a full bot.
type Settings struct {
	// API keys for the backend adapters. Empty keys disable the backend.
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`

	// Backends is the fan-out set in configuration order; Aggregator is the
	// round-3 synthesis backend.
	Backends   []string `env:"COUNCIL_BACKENDS" envSeparator:","`
	Aggregator string   `env:"COUNCIL_AGGREGATOR"`

	// ManagerBackend is the designated backend for manager questions.
	ManagerBackend string `env:"MANAGER_BACKEND"`

	// CallTimeout bounds each individual backend call.
	CallTimeout time.Duration `env:"COUNCIL_CALL_TIMEOUT" envDefault:"120s"`

	// HistoryLimit is how many prior exchanges feed prompt context.
	HistoryLimit int `env:"HISTORY_LIMIT" envDefault:"3"`

	// MetricsYearsBack is how far back the default metrics window for
	// free-form questions reaches.
	MetricsYearsBack int `env:"METRICS_YEARS_BACK" envDefault:"1"`

	// MetricsMaxRows caps the rows feeding one metrics summary.
	MetricsMaxRows int `env:"METRICS_MAX_ROWS" envDefault:"2000"`

	// StorePath is the SQLite database file.
	StorePath string `env:"STORE_PATH" envDefault:"opscouncil.db"`

	// KnowledgePaths are the JSON knowledge files, searched in order.
	KnowledgePaths []string `env:"KNOWLEDGE_PATHS" envSeparator:","`

	// LogLevel is debug, info, warn or error; LogFormat is json or text.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// FromEnv parses Settings from the process environment and validates the
// parts that have no usable default.
func FromEnv() (Settings, error) {
	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks cross-field consistency.
func (s Settings) Validate() error {
	if len(s.Backends) == 0 {
		return fmt.Errorf("at least one council backend is required")
	}
	if s.Aggregator == "" {
		return fmt.Errorf("council aggregator is required")
	}
	if s.CallTimeout <= 0 {
		return fmt.Errorf("call timeout must be positive")
	}
	if s.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative")
	}
	return nil
}
