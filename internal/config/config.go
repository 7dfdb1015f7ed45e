// Package config loads cadcad's environment configuration.
//
// Environment values only seed defaults: command-line flags always win.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by every cadcad command.
type Config struct {
	Format  string `env:"CADCAD_FORMAT"  envDefault:"text"`
	Verbose bool   `env:"CADCAD_VERBOSE"`
	DB      string `env:"CADCAD_DB"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		return Config{}, fmt.Errorf("CADCAD_FORMAT: invalid format %q (use text or json)", cfg.Format)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
