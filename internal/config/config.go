// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvDev is the environment name that enables developer behaviour.
const EnvDev = "DEV"

// Config holds all contacts configuration.
type Config struct {
	Env     string  `yaml:"env"`
	Log     Log     `yaml:"log"`
	Import  Import  `yaml:"import"`
	Display Display `yaml:"display"`
}

// Log holds diagnostic logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
}

// Import holds CSV import settings.
type Import struct {
	Path             string `yaml:"path"`
	HasHeader        bool   `yaml:"has_header"`
	DefaultFirstName string `yaml:"default_first_name"` // Used for phone-only rows
	DefaultLastName  string `yaml:"default_last_name"`  // Used for phone-only rows
}

// Display holds output settings.
type Display struct {
	Plain bool `yaml:"plain"` // Force plain text even on a TTY
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: Log{
			Level: "warn",
		},
		Import: Import{
			Path:             "data.csv",
			DefaultFirstName: "John",
			DefaultLastName:  "Doe",
		},
	}
}

// IsDev reports whether the configured environment is EnvDev.
func (c *Config) IsDev() bool {
	return c.Env == EnvDev
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if strings.TrimSpace(c.Import.DefaultFirstName) == "" {
		return errors.New("config: import.default_first_name cannot be empty")
	}
	if strings.TrimSpace(c.Import.DefaultLastName) == "" {
		return errors.New("config: import.default_last_name cannot be empty")
	}
	return nil
}

// LoadDotEnv loads variables from a .env file at path without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: ENV, CONTACTS_ENV (wins over ENV), CONTACTS_LOG_LEVEL,
// CONTACTS_IMPORT_PATH.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("CONTACTS_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("CONTACTS_LOG_LEVEL"); v != "" {
		level := strings.ToLower(v)
		switch level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("config: invalid CONTACTS_LOG_LEVEL %q", v)
		}
		c.Log.Level = level
	}
	if v := os.Getenv("CONTACTS_IMPORT_PATH"); v != "" {
		c.Import.Path = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Env     *string     `yaml:"env"`
	Log     *rawLog     `yaml:"log"`
	Import  *rawImport  `yaml:"import"`
	Display *rawDisplay `yaml:"display"`
}

type rawLog struct {
	Level *string `yaml:"level"`
}

type rawImport struct {
	Path             *string `yaml:"path"`
	HasHeader        *bool   `yaml:"has_header"`
	DefaultFirstName *string `yaml:"default_first_name"`
	DefaultLastName  *string `yaml:"default_last_name"`
}

type rawDisplay struct {
	Plain *bool `yaml:"plain"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Env != nil {
		c.Env = *layer.Env
	}
	if layer.Log != nil && layer.Log.Level != nil {
		c.Log.Level = *layer.Log.Level
	}
	if layer.Import != nil {
		if layer.Import.Path != nil {
			c.Import.Path = *layer.Import.Path
		}
		if layer.Import.HasHeader != nil {
			c.Import.HasHeader = *layer.Import.HasHeader
		}
		if layer.Import.DefaultFirstName != nil {
			c.Import.DefaultFirstName = *layer.Import.DefaultFirstName
		}
		if layer.Import.DefaultLastName != nil {
			c.Import.DefaultLastName = *layer.Import.DefaultLastName
		}
	}
	if layer.Display != nil && layer.Display.Plain != nil {
		c.Display.Plain = *layer.Display.Plain
	}
}
