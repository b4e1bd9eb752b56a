package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "RETINA_"
	envConfigFile = "RETINA_CONFIG"
	envDotEnvFile = "RETINA_ENV_FILE"
	defaultDotEnv = ".env"
	maxPort       = 65535
)

// bareEnv maps the unprefixed variables the gateway has always honoured.
var bareEnv = map[string]string{
	"PORT":                "port",
	"REPLICATE_API_TOKEN": "replicate_api_token",
}

// Load builds a Config by layering defaults, dotenv, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file ($RETINA_ENV_FILE or ./.env); never overrides the real environment
//  3. file (YAML) if RETINA_CONFIG is set
//  4. env (prefix RETINA_)
//  5. PORT and REPLICATE_API_TOKEN
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RETINA_MAX_BODY_BYTES -> max_body_bytes (flat keys, underscores kept).
	prefixed := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		if s == strings.ToLower(envConfigFile) || s == strings.ToLower(envDotEnvFile) {
			return ""
		}
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	bare := env.Provider("", ".", func(s string) string {
		return bareEnv[s]
	})
	if err := k.Load(bare, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv populates the process environment from a dotenv file. A missing
// default file is not an error; a missing explicitly named file is.
func loadDotEnv() error {
	path := os.Getenv(envDotEnvFile)
	explicit := path != ""
	if !explicit {
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Port < 1 || c.Port > maxPort:
		return fmt.Errorf("%w: port must be between 1 and %d, got %d", ErrInvalidConfig, maxPort, c.Port)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.ShutdownTimeoutMS < 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}
