package config

// ObservabilityConfig holds observability configuration.
// The OTLP exporters read their endpoint and headers from the standard
// OTEL_EXPORTER_OTLP_* variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"GTF_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"gtf"`
}
