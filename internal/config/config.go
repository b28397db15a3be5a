// Package config loads and validates homebot configuration from a YAML file
// with environment variable overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	boterrors "git.home.luguber.info/inful/homebot/internal/errors"
)

// RolloverPolicy controls what the midnight rollover does with the durable log.
type RolloverPolicy string

const (
	// RolloverPreserve clears the in-memory projection only.
	RolloverPreserve RolloverPolicy = "preserve"
	// RolloverPurge additionally deletes all feeding rows.
	RolloverPurge RolloverPolicy = "purge"
)

// Pet describes one animal on the feeding roster.
type Pet struct {
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	WetEligible bool   `yaml:"wet_eligible"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig controls the optional Prometheus exposition endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9190"; empty disables
}

// EventsConfig controls the optional NATS integration publisher.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"` // empty disables
	Subject string `yaml:"subject"`
}

// Config represents the application configuration.
type Config struct {
	Token        string         `yaml:"token"`
	DatabasePath string         `yaml:"database"`
	Timezone     string         `yaml:"timezone"`
	Rollover     RolloverPolicy `yaml:"rollover"`
	Pets         []Pet          `yaml:"pets"`
	Logging      LoggingConfig  `yaml:"logging"`
	Metrics      MetricsConfig  `yaml:"metrics"`
	Events       EventsConfig   `yaml:"events"`

	location *time.Location
}

// Environment variable names. The token is never placed in the config file
// in deployments; the yaml field exists for tests.
const (
	EnvToken    = "HOMEBOT_TOKEN"
	EnvDatabase = "HOMEBOT_DB"
)

// DefaultPets is the household roster the bot was born with.
// Klava does not get wet food.
func DefaultPets() []Pet {
	return []Pet{
		{Key: "cassiy", Label: "⚫ Кассий", WetEligible: true},
		{Key: "bulik", Label: "🟠 Булик", WetEligible: true},
		{Key: "grom", Label: "🟤 Гром", WetEligible: true},
		{Key: "klava", Label: "🟡 Клава", WetEligible: false},
	}
}

// Load loads configuration from the specified file. A missing file is not an
// error: defaults plus environment variables are enough to run.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, boterrors.Wrap(err, boterrors.CategoryConfig, boterrors.SeverityFatal, "failed to unmarshal config").
				WithContext("path", configPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, boterrors.Wrap(err, boterrors.CategoryConfig, boterrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	cfg.applyEnvironment()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment overlays environment variables over file values.
// The environment wins so that secrets never need to live in the file.
func (c *Config) applyEnvironment() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.DatabasePath = v
	}
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Moscow"
	}
	if c.Rollover == "" {
		c.Rollover = RolloverPreserve
	}
	if len(c.Pets) == 0 {
		c.Pets = DefaultPets()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "homebot.events"
	}
}

// Validate checks configuration invariants. The token is required: the bot
// cannot start without it.
func (c *Config) Validate() error {
	if c.Token == "" {
		return boterrors.New(boterrors.CategoryConfig, boterrors.SeverityFatal,
			fmt.Sprintf("bot token is required (set %s)", EnvToken))
	}
	if c.Rollover != RolloverPreserve && c.Rollover != RolloverPurge {
		return boterrors.New(boterrors.CategoryConfig, boterrors.SeverityFatal,
			fmt.Sprintf("unknown rollover policy %q (expected %q or %q)", c.Rollover, RolloverPreserve, RolloverPurge))
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return boterrors.Wrap(err, boterrors.CategoryConfig, boterrors.SeverityFatal,
			fmt.Sprintf("invalid timezone %q", c.Timezone))
	}
	c.location = loc

	seen := make(map[string]struct{}, len(c.Pets))
	for i := range c.Pets {
		p := &c.Pets[i]
		if p.Key == "" {
			return boterrors.New(boterrors.CategoryConfig, boterrors.SeverityFatal, "pet key must not be empty")
		}
		if _, dup := seen[p.Key]; dup {
			return boterrors.New(boterrors.CategoryConfig, boterrors.SeverityFatal,
				fmt.Sprintf("duplicate pet key %q", p.Key))
		}
		seen[p.Key] = struct{}{}
		if p.Label == "" {
			p.Label = titleCaser.String(p.Key)
		}
	}
	return nil
}

// Location returns the configured time zone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// HasDatabase reports whether persistence is configured. Without a database
// the bot runs memory-only and persistence-dependent commands degrade.
func (c *Config) HasDatabase() bool {
	return c.DatabasePath != ""
}
