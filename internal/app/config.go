package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/sheetcalc/internal/coord"
	"github.com/specialistvlad/sheetcalc/internal/evaluator"
)

// Output formats understood by Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	LogFormat string `koanf:"log_format"`
	LogLevel  string `koanf:"log_level"`

	Evaluator string            `koanf:"evaluator"`
	Format    string            `koanf:"format"`
	Vars      map[string]string `koanf:"vars"`

	ListenPort  int           `koanf:"listen_port"`
	EvalTimeout time.Duration `koanf:"eval_timeout"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		LogFormat:   "text",
		LogLevel:    "info",
		Evaluator:   evaluator.Default,
		Format:      FormatTable,
		ListenPort:  8080,
		EvalTimeout: 5 * time.Second,
	}
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log_format: must be 'text' or 'json'")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log_level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.Format != FormatTable && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("invalid format: must be '%s' or '%s'", FormatTable, FormatJSON)
	}

	if _, err := evaluator.Lookup(cfg.Evaluator); err != nil {
		return nil, err
	}

	if cfg.ListenPort < 0 || cfg.ListenPort > 65535 {
		return nil, fmt.Errorf("invalid listen_port: %d", cfg.ListenPort)
	}

	if cfg.EvalTimeout < 0 {
		return nil, errors.New("invalid eval_timeout: must not be negative")
	}

	for name := range cfg.Vars {
		if err := coord.ValidateKey(name); err != nil {
			return nil, fmt.Errorf("invalid variable name: %w", err)
		}
	}

	return &cfg, nil
}
