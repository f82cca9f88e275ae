// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates .a11ylint.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/a11ylint/services/a11y/engine"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

// FileNames are searched for, in order, by Discover.
var FileNames = []string{".a11ylint.yaml", ".a11ylint.yml"}

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config file not found")

// =============================================================================
// Shared Validator Instance
// =============================================================================

// validate is the validator instance for config structs.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("regexp", validateRegexp)
	_ = validate.RegisterValidation("knownrule", validateKnownRule)
}

// validateRegexp accepts strings that compile as RE2 patterns.
func validateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// validateKnownRule accepts registered rule names.
func validateKnownRule(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	for _, known := range rules.Names() {
		if known == name {
			return true
		}
	}
	return false
}

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the full a11ylint configuration.
type Config struct {
	Rules       RulesConfig     `yaml:"rules"`
	Policy      lint.RulePolicy `yaml:"policy"`
	Exclude     []string        `yaml:"exclude,omitempty" validate:"dive,required"`
	Concurrency int             `yaml:"concurrency" validate:"gte=0,lte=256"`
	MaxFileSize int64           `yaml:"max_file_size" validate:"gte=0"`
	Cache       CacheConfig     `yaml:"cache"`
	Server      ServerConfig    `yaml:"server"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Log         LogConfig       `yaml:"log"`
}

// RulesConfig selects rules and their options.
type RulesConfig struct {
	// Enabled lists the rules to run. Empty runs every rule.
	Enabled []string `yaml:"enabled,omitempty" validate:"dive,knownrule"`

	// Disabled removes rules from the enabled set.
	Disabled []string `yaml:"disabled,omitempty" validate:"dive,knownrule"`

	// AdditionalInteractive extends the interactive-component pattern.
	AdditionalInteractive []string `yaml:"additional_interactive_component_regex,omitempty" validate:"dive,required,regexp"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path" validate:"required_if=Enabled true"`
	TTL     time.Duration `yaml:"ttl" validate:"gte=0"`
}

// ServerConfig configures `a11ylint serve`.
type ServerConfig struct {
	Addr         string  `yaml:"addr" validate:"required,hostname_port"`
	RateLimit    float64 `yaml:"rate_limit" validate:"gte=0"`
	Burst        int     `yaml:"burst" validate:"gte=0"`
	MaxBodyBytes int64   `yaml:"max_body_bytes" validate:"gt=0"`
}

// TelemetryConfig selects exporters.
type TelemetryConfig struct {
	Traces       string `yaml:"traces" validate:"oneof=none stdout otlp"`
	Metrics      string `yaml:"metrics" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Traces otlp"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Exclude: []string{},
		Cache: CacheConfig{
			Path: filepath.Join(".a11ylint", "cache"),
			TTL:  7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:12230",
			RateLimit:    20,
			Burst:        40,
			MaxBodyBytes: 2 << 20,
		},
		Telemetry: TelemetryConfig{
			Traces:  "none",
			Metrics: "prometheus",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the struct tags and custom validators.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads path over the defaults and validates the result. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Discover walks from dir up to the filesystem root looking for a config
// file and returns its path.
func Discover(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(abs, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotFound
		}
		abs = parent
	}
}

// Resolve loads explicit when set, otherwise the discovered file under dir,
// otherwise the defaults. The returned path is "" for defaults.
func Resolve(explicit, dir string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, err := Discover(dir)
	if errors.Is(err, ErrNotFound) {
		return DefaultConfig(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Write saves cfg as YAML, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// RULE CONSTRUCTION
// =============================================================================

// RuleNames returns the enabled rule names in registry order.
func (c *Config) RuleNames() []string {
	enabled := make(map[string]bool)
	if len(c.Rules.Enabled) == 0 {
		for _, name := range rules.Names() {
			enabled[name] = true
		}
	} else {
		for _, name := range c.Rules.Enabled {
			enabled[name] = true
		}
	}
	for _, name := range c.Rules.Disabled {
		delete(enabled, name)
	}

	out := make([]string, 0, len(enabled))
	for _, name := range rules.Names() {
		if enabled[name] {
			out = append(out, name)
		}
	}
	return out
}

// BuildRules constructs the enabled rules with the configured options.
func (c *Config) BuildRules() ([]engine.Rule, error) {
	opts := []rules.Option{rules.WithAdditionalInteractive(c.Rules.AdditionalInteractive...)}
	names := c.RuleNames()
	out := make([]engine.Rule, 0, len(names))
	for _, name := range names {
		r, err := rules.New(name, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// CacheMaterial serializes every setting that changes lint output.
func (c *Config) CacheMaterial() string {
	material := struct {
		Rules       []string        `yaml:"rules"`
		Interactive []string        `yaml:"interactive"`
		Policy      lint.RulePolicy `yaml:"policy"`
	}{c.RuleNames(), c.Rules.AdditionalInteractive, c.Policy}
	data, err := yaml.Marshal(material)
	if err != nil {
		return ""
	}
	return string(data)
}
