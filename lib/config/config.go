// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnvironmentVariable names the optional configuration file.
const ConfigEnvironmentVariable = "PASSPROMPT_CONFIG"

// DisablePinentryEnvironmentVariable forces the terminal prompt when set
// to "1", whatever the configuration file says.
const DisablePinentryEnvironmentVariable = "PASSPROMPT_DISABLE_PINENTRY"

// Color modes for the terminal prompt.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the configuration for secret acquisition.
type Config struct {
	// Pinentry configures the external secret-entry agent.
	Pinentry PinentryConfig `yaml:"pinentry"`

	// Prompt configures the raw-terminal fallback prompt.
	Prompt PromptConfig `yaml:"prompt"`
}

// PinentryConfig configures the external secret-entry agent.
type PinentryConfig struct {
	// Program is the agent executable, resolved via PATH when it
	// contains no slash.
	// Default: pinentry
	Program string `yaml:"program"`

	// Disable skips the agent and always uses the terminal prompt.
	// Default: false
	Disable bool `yaml:"disable"`

	// Title is the window title sent with SETTITLE.
	// Default: passprompt
	Title string `yaml:"title"`

	// GracePeriod is how long each shutdown step waits for the agent
	// to exit before escalating (wait, SIGTERM, SIGKILL).
	// Default: 1s
	GracePeriod string `yaml:"grace_period"`
}

// PromptConfig configures the raw-terminal fallback prompt.
type PromptConfig struct {
	// Color selects styling of the prompt text.
	// Values: "auto" (detect from the terminal), "always", "never"
	// Default: auto
	Color string `yaml:"color"`
}

// Default returns the default configuration. Loading a file merges into
// these values, so a file only needs the fields it changes.
func Default() *Config {
	return &Config{
		Pinentry: PinentryConfig{
			Program:     "pinentry",
			Disable:     false,
			Title:       "passprompt",
			GracePeriod: "1s",
		},
		Prompt: PromptConfig{
			Color: ColorAuto,
		},
	}
}

// Load loads configuration from the file named by PASSPROMPT_CONFIG, or
// returns the defaults when the variable is unset. The disable toggle
// from the environment is applied in both cases.
func Load() (*Config, error) {
	configPath := os.Getenv(ConfigEnvironmentVariable)

	var cfg *Config
	if configPath == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvironment(os.Getenv)
	return cfg, nil
}

// LoadFile loads configuration from a specific file path and validates
// it. ${HOME} and ${VAR:-default} patterns in the program path are
// expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// ApplyEnvironment applies the only environment override: the disable
// toggle. getenv is os.Getenv in production.
func (c *Config) ApplyEnvironment(getenv func(string) string) {
	if getenv(DisablePinentryEnvironmentVariable) == "1" {
		c.Pinentry.Disable = true
	}
}

// GracePeriodDuration returns the parsed grace period. Validate
// guarantees it parses for loaded configs; an unparseable value yields
// one second.
func (c *Config) GracePeriodDuration() time.Duration {
	duration, err := time.ParseDuration(c.Pinentry.GracePeriod)
	if err != nil || duration <= 0 {
		return time.Second
	}
	return duration
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Pinentry.Program = expandVars(c.Pinentry.Program, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Pinentry.Program == "" {
		errs = append(errs, fmt.Errorf("pinentry.program is required"))
	}

	duration, err := time.ParseDuration(c.Pinentry.GracePeriod)
	if err != nil {
		errs = append(errs, fmt.Errorf("pinentry.grace_period: %w", err))
	} else if duration <= 0 {
		errs = append(errs, fmt.Errorf("pinentry.grace_period must be positive, got %s", c.Pinentry.GracePeriod))
	}

	colorValues := []string{ColorAuto, ColorAlways, ColorNever}
	if !slices.Contains(colorValues, c.Prompt.Color) {
		errs = append(errs, fmt.Errorf("prompt.color must be one of: %v", colorValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
