package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/specialistvlad/sheetcalc/internal/app"
	"github.com/spf13/pflag"
)

// envPrefix marks the environment variables read as configuration, e.g.
// SHEETCALC_LOG_LEVEL -> log_level.
const envPrefix = "SHEETCALC_"

// defaultConfigFiles are looked up in the working directory when no config
// file is given.
var defaultConfigFiles = []string{"sheetcalc.yaml", "sheetcalc.yml"}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"var":    "vars",
	"output": "format",
}

// findConfigFile returns the config file to use, or "" if there is none.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range defaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig loads configuration from defaults, a YAML config file,
// environment variables and flags, and validates the result.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*app.Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := app.DefaultConfig()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_format":   defaults.LogFormat,
		"log_level":    defaults.LogLevel,
		"evaluator":    defaults.Evaluator,
		"format":       defaults.Format,
		"listen_port":  defaults.ListenPort,
		"eval_timeout": defaults.EvalTimeout,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			if f.Value.Type() == "stringToString" {
				vars, err := flags.GetStringToString(f.Name)
				if err != nil {
					return "", nil
				}
				return key, vars
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg app.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Format = strings.ToLower(cfg.Format)

	return app.NewConfig(cfg)
}
