// Package config loads the settings of the history tooling from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Config is the root of the configuration file.
type Config struct {
	History History `yaml:"history"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
}

// History configures the undo stacks.
type History struct {
	// Limit caps the number of undo entries per stack. Zero keeps all.
	Limit int `yaml:"limit" validate:"gte=0"`

	// Combine makes scripted edits record into transactions by default.
	Combine bool `yaml:"combine"`

	// RegenerateIDs gives copied objects fresh identifiers.
	RegenerateIDs bool `yaml:"regenerate_ids"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Metrics toggles the Prometheus collectors.
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		History: History{Limit: 100, Combine: true},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates the file at path. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates YAML data on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level.
func (l Log) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
