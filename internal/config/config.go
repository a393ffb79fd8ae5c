// Package config loads server configuration from the environment, with an
// optional YAML overlay for the knobs that are awkward as env vars.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Database; empty means guest-only mode (no accounts).
	DatabaseURL string
	TablePrefix string

	// Auth; empty JWKS URL disables token verification (guest-only).
	JWKSURL string

	// Guest-mode blob storage directory.
	LocalStoreDir string

	// Log file directory; empty logs to stdout only.
	LogDir string

	// Suggestion backend
	Provider        string // "anthropic" or "lorem"
	AnthropicAPIKey string
	Model           string

	Ghost GhostConfig
}

// GhostConfig tunes the automatic suggestion trigger.
type GhostConfig struct {
	DebounceMillis   int `yaml:"debounce_millis"`
	MinTextLength    int `yaml:"min_text_length"`
	AcceptHoldMillis int `yaml:"accept_hold_millis"`
}

// DebounceDelay returns the debounce as a duration (zero uses defaults).
func (g GhostConfig) DebounceDelay() time.Duration {
	return time.Duration(g.DebounceMillis) * time.Millisecond
}

// AcceptHold returns the accept hold as a duration (zero uses defaults).
func (g GhostConfig) AcceptHold() time.Duration {
	return time.Duration(g.AcceptHoldMillis) * time.Millisecond
}

// fileConfig is the optional YAML overlay (inkflow.yaml).
type fileConfig struct {
	Ghost GhostConfig `yaml:"ghost"`
}

// Load builds the configuration from the environment, then overlays the
// YAML file named by INKFLOW_CONFIG (default inkflow.yaml) if it exists.
func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		TablePrefix:     getTablePrefix(env),
		JWKSURL:         getEnv("JWKS_URL", ""),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		LogDir:          getEnv("LOG_DIR", ""),
		Provider:        getEnv("SUGGEST_PROVIDER", "anthropic"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		Model:           getEnv("SUGGEST_MODEL", ""),
		Ghost: GhostConfig{
			DebounceMillis:   getEnvInt("GHOST_DEBOUNCE_MS", 1500),
			MinTextLength:    getEnvInt("GHOST_MIN_TEXT_LENGTH", 50),
			AcceptHoldMillis: getEnvInt("GHOST_ACCEPT_HOLD_MS", 400),
		},
	}

	// Without an API key the keyless provider keeps the app usable.
	if cfg.AnthropicAPIKey == "" && cfg.Provider == "anthropic" {
		cfg.Provider = "lorem"
	}

	if err := cfg.overlayFile(getEnv("INKFLOW_CONFIG", "inkflow.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Ghost.DebounceMillis > 0 {
		c.Ghost.DebounceMillis = fc.Ghost.DebounceMillis
	}
	if fc.Ghost.MinTextLength > 0 {
		c.Ghost.MinTextLength = fc.Ghost.MinTextLength
	}
	if fc.Ghost.AcceptHoldMillis > 0 {
		c.Ghost.AcceptHoldMillis = fc.Ghost.AcceptHoldMillis
	}

	return nil
}

// getTablePrefix returns the table prefix for the environment, overridable
// via TABLE_PREFIX.
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
