package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dejobratic/fulfillment/internal/config"
)

var configKeys = []string{
	"API_HTTP_PORT",
	"API_METRICS_PATH",
	"API_SHUTDOWN_GRACE_SECONDS",
	"KAFKA_BROKERS",
	"KAFKA_TOPIC_PREFIX",
	"LOG_LEVEL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_ENABLE_TRACING",
	"OTEL_ENABLE_METRICS",
	"OTEL_SAMPLE_RATE",
	"OTEL_METRICS_EXPORTER",
	"API_SERVICE_NAME",
	"SERVICE_VERSION",
	"ENVIRONMENT",
}

// cleanEnv unsets every variable Load reads and points ENV_FILE at a missing
// file. t.Setenv restores the original values when the test ends.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.MetricsPath != "/metrics" {
		t.Errorf("expected metrics path /metrics, got %s", cfg.HTTP.MetricsPath)
	}
	if cfg.HTTP.ShutdownGrace != 15 {
		t.Errorf("expected shutdown grace 15, got %d", cfg.HTTP.ShutdownGrace)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicPrefix != "fulfillment" {
		t.Errorf("expected topic prefix fulfillment, got %s", cfg.Kafka.TopicPrefix)
	}
	if cfg.Telemetry.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.Telemetry.LogLevel)
	}
	if !cfg.Telemetry.EnableTracing || !cfg.Telemetry.EnableMetrics {
		t.Error("expected tracing and metrics to be enabled by default")
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.MetricsExporter != config.MetricsExporterPrometheus {
		t.Errorf("expected prometheus exporter, got %s", cfg.Telemetry.MetricsExporter)
	}
	if cfg.Service.Name != "fulfillment-api" {
		t.Errorf("expected service name fulfillment-api, got %s", cfg.Service.Name)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	cleanEnv(t)
	t.Setenv("API_HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC_PREFIX", "shop")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENABLE_TRACING", "false")
	t.Setenv("OTEL_SAMPLE_RATE", "0.25")
	t.Setenv("OTEL_METRICS_EXPORTER", "OTLP")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "kafka-1:9092" || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.TopicPrefix != "shop" {
		t.Errorf("expected topic prefix shop, got %s", cfg.Kafka.TopicPrefix)
	}
	if cfg.Telemetry.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Telemetry.LogLevel)
	}
	if cfg.Telemetry.EnableTracing {
		t.Error("expected tracing to be disabled")
	}
	if cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("expected sample rate 0.25, got %f", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.MetricsExporter != config.MetricsExporterOTLP {
		t.Errorf("expected otlp exporter, got %s", cfg.Telemetry.MetricsExporter)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "API_HTTP_PORT", "eighty"},
		{"non-numeric shutdown grace", "API_SHUTDOWN_GRACE_SECONDS", "soon"},
		{"non-numeric sample rate", "OTEL_SAMPLE_RATE", "all"},
		{"unknown metrics exporter", "OTEL_METRICS_EXPORTER", "statsd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	content := "KAFKA_TOPIC_PREFIX=from-file\nAPI_SERVICE_NAME=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("API_SERVICE_NAME", "from-env")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Kafka.TopicPrefix != "from-file" {
		t.Errorf("expected topic prefix from file, got %s", cfg.Kafka.TopicPrefix)
	}
	if cfg.Service.Name != "from-env" {
		t.Errorf("expected environment to win over the file, got %s", cfg.Service.Name)
	}
}
