// Package config loads hive settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/hive/internal/deliberation"
	"github.com/dusk-indust/hive/internal/participant"
)

// EnvPrefix prefixes every environment override, e.g. HIVE_STORE_DRIVER.
const EnvPrefix = "HIVE_"

// FileNames are the config files looked up in a directory, in order.
var FileNames = []string{"hive.yml", "hive.yaml"}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the full hive configuration.
type Config struct {
	Completion   CompletionConfig   `yaml:"completion" envPrefix:"COMPLETION_"`
	Deliberation DeliberationConfig `yaml:"deliberation" envPrefix:"DELIBERATION_"`
	Store        StoreConfig        `yaml:"store" envPrefix:"STORE_"`
	Log          LogConfig          `yaml:"log" envPrefix:"LOG_"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Server       ServerConfig       `yaml:"server" envPrefix:"SERVER_"`
}

// CompletionConfig selects the text-completion backend. An empty APIKey
// selects the deterministic stub.
type CompletionConfig struct {
	APIKey      string        `yaml:"apiKey,omitempty" env:"API_KEY"`
	BaseURL     string        `yaml:"baseURL,omitempty" env:"BASE_URL"`
	Model       string        `yaml:"model" env:"MODEL"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int64         `yaml:"maxTokens" env:"MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// DeliberationConfig carries the convergence settings and the participant
// line-up. Profiles add or replace role profiles; Roles picks which roles
// take part (all registered roles when empty).
type DeliberationConfig struct {
	deliberation.Settings `yaml:",inline"`

	Roles    []string              `yaml:"roles,omitempty" env:"ROLES"`
	Profiles []participant.Profile `yaml:"profiles,omitempty" envPrefix:"PROFILES_"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn,omitempty" env:"DSN"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint,omitempty" env:"ENDPOINT"`
	ServiceName string `yaml:"serviceName" env:"SERVICE_NAME"`
}

// ServerConfig controls the MCP HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" env:"ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Completion: CompletionConfig{
			Model:       "gpt-4-1106-preview",
			Temperature: 0.7,
			MaxTokens:   2000,
			Timeout:     2 * time.Minute,
		},
		Deliberation: DeliberationConfig{Settings: deliberation.DefaultSettings()},
		Store:        StoreConfig{Driver: DriverMemory},
		Log:          LogConfig{Level: "info"},
		Telemetry:    TelemetryConfig{ServiceName: "hive"},
		Server:       ServerConfig{Addr: "localhost:8080"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path,
// then HIVE_ environment variables. path may be a file or a directory
// searched for FileNames; a directory without one is not an error. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return data, nil
	}
	for _, name := range FileNames {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return nil, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case "", DriverMemory:
		c.Store.Driver = DriverMemory
	case DriverSQLite:
		if c.Store.DSN == "" {
			return errors.New("config: store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}

	if t := c.Deliberation.ConsensusThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: deliberation.consensusThreshold %v is outside [0, 1]", t)
	}
	for _, p := range c.Deliberation.Profiles {
		if p.Role == "" {
			return errors.New("config: deliberation profile without a role")
		}
	}
	return nil
}

// ParticipantRoles returns the configured roles, trimmed and deduplicated.
func (c *Config) ParticipantRoles() []participant.Role {
	var roles []participant.Role
	for _, r := range c.Deliberation.Roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		role := participant.Role(r)
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}
