// Package config loads blockkit CLI settings.
// Priority: flags (applied by the caller) > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. BLOCKKIT_LOG_LEVEL.
const EnvPrefix = "BLOCKKIT_"

// DefaultFile is loaded from the working directory when no path is given.
const DefaultFile = ".blockkit.json"

// Configuration holds the CLI settings.
type Configuration struct {
	Dangerous bool   `koanf:"dangerous"`
	FailFast  bool   `koanf:"fail_fast"`
	Indent    string `koanf:"indent"`
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	Language  string `koanf:"language" validate:"oneof=en ja"`

	// Root selects what a payload file holds: a whole view or a single block.
	Root string `koanf:"root" validate:"oneof=surface block"`

	// MaxFiles bounds how many files one glob may expand to.
	MaxFiles int `koanf:"max_files" validate:"min=1,max=100000"`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]any {
	return map[string]any{
		"dangerous": false,
		"fail_fast": false,
		"indent":    "  ",
		"log_level": "warn",
		"language":  "en",
		"root":      "surface",
		"max_files": 1000,
	}
}

// Load reads the configuration. An explicit path must exist; without one the
// default file is used when present.
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply default %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints. Callers that override fields from
// flags validate again.
func (c *Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config validation failed: %s: %q does not satisfy %s=%s",
				strings.ToLower(fe.Field()), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Configuration) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// envTransform converts environment variable names to config keys
// Example: BLOCKKIT_LOG_LEVEL -> log_level
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
