package config

import (
	"fmt"
	"time"

	"github.com/rezkam/gtf/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Storage         StorageConfig
	HTTP            HTTPConfig
	App             AppConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"GTF_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"GTF_HTTP_HOST"`
	Port              string        `env:"GTF_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"GTF_HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `env:"GTF_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `env:"GTF_HTTP_IDLE_TIMEOUT" default:"120s"`
	ReadHeaderTimeout time.Duration `env:"GTF_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	MaxHeaderBytes    int           `env:"GTF_HTTP_MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes      int64         `env:"GTF_HTTP_MAX_BODY_BYTES" default:"1048576"`
}

// Addr returns the listen address.
func (c HTTPConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ServerConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
