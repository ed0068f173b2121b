package config

import (
	"fmt"

	"github.com/rezkam/gtf/internal/env"
)

// TestConfig holds configuration for integration tests against real backends.
// Empty values skip the corresponding suites.
type TestConfig struct {
	PostgresDSN string `env:"GTF_TEST_POSTGRES_DSN"`
	GCSBucket   string `env:"GTF_TEST_GCS_BUCKET"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
