// Package config defines the environment-driven configuration of the gtf
// binaries. Every variable carries the GTF_ prefix; the GitHub token also
// falls back to the conventional GITHUB_TOKEN.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rezkam/gtf/internal/env"
)

// ErrInvalidTimezone is returned when GTF_TIMEZONE names no known location.
var ErrInvalidTimezone = errors.New("invalid GTF_TIMEZONE")

// AppConfig holds settings shared by the server and the CLI.
type AppConfig struct {
	// Timezone decides what "today" means. "Local" uses the host zone.
	Timezone string `env:"GTF_TIMEZONE" default:"Local"`

	// PaletteFile optionally overrides the embedded department color table.
	PaletteFile string `env:"GTF_PALETTE_FILE"`
}

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

// CLIConfig holds configuration for the gtf command line tool.
type CLIConfig struct {
	Storage StorageConfig
	App     AppConfig
}

// LoadCLIConfig loads and validates CLI configuration from the environment.
func LoadCLIConfig() (*CLIConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cli config: %w", err)
	}

	return cfg, nil
}

// DotEnvFile is read before the environment is parsed, when present.
// Variables already set in the process environment win.
const DotEnvFile = ".env"

func loadDotEnv() error {
	path := DotEnvFile
	if p, ok := os.LookupEnv("GTF_ENV_FILE"); ok {
		path = p
	}
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
