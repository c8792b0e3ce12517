package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the fulfillment service.
type Config struct {
	HTTP      HTTPConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
}

type HTTPConfig struct {
	Port          int
	MetricsPath   string
	ShutdownGrace int
}

// KafkaConfig controls forwarding of outbound events. No brokers means events
// stay in process.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

type TelemetryConfig struct {
	LogLevel        string
	OTelEndpoint    string
	EnableTracing   bool
	EnableMetrics   bool
	SampleRate      float64
	MetricsExporter string
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	MetricsExporterOTLP       = "otlp"
	MetricsExporterPrometheus = "prometheus"
)

const (
	defaultEnvFile         = ".env"
	defaultHTTPPort        = 8080
	defaultMetricsPath     = "/metrics"
	defaultShutdownGrace   = 15
	defaultTopicPrefix     = "fulfillment"
	defaultServiceName     = "fulfillment-api"
	defaultServiceVersion  = "0.1.0"
	defaultEnvironment     = "development"
	defaultLogLevel        = "info"
	defaultOTelSampleRate  = 1.0
	defaultMetricsExporter = MetricsExporterPrometheus
)

// Load reads configuration from environment variables, applying defaults when
// needed. Variables from the file named by ENV_FILE (default .env) are loaded
// first but never override variables already set in the environment.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvOrDefault("ENV_FILE", defaultEnvFile)); err != nil {
		return nil, err
	}

	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	kafkaCfg := loadKafkaConfig()
	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	serviceCfg := loadServiceConfig()

	return &Config{
		HTTP:      httpCfg,
		Kafka:     kafkaCfg,
		Telemetry: telCfg,
		Service:   serviceCfg,
	}, nil
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading env file %s: %w", path, err)
}

func loadHTTPConfig() (HTTPConfig, error) {
	port := defaultHTTPPort
	if value, ok := os.LookupEnv("API_HTTP_PORT"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_HTTP_PORT: %w", err)
		}
		port = parsed
	}

	shutdownGrace := defaultShutdownGrace
	if value, ok := os.LookupEnv("API_SHUTDOWN_GRACE_SECONDS"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return HTTPConfig{}, fmt.Errorf("invalid API_SHUTDOWN_GRACE_SECONDS: %w", err)
		}
		shutdownGrace = parsed
	}

	metricsPath := getEnvOrDefault("API_METRICS_PATH", defaultMetricsPath)

	return HTTPConfig{
		Port:          port,
		MetricsPath:   metricsPath,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadKafkaConfig() KafkaConfig {
	var brokers []string
	if value, ok := os.LookupEnv("KAFKA_BROKERS"); ok && value != "" {
		for _, broker := range strings.Split(value, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}

	return KafkaConfig{
		Brokers:     brokers,
		TopicPrefix: getEnvOrDefault("KAFKA_TOPIC_PREFIX", defaultTopicPrefix),
	}
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	exporter := strings.ToLower(getEnvOrDefault("OTEL_METRICS_EXPORTER", defaultMetricsExporter))
	switch exporter {
	case MetricsExporterOTLP, MetricsExporterPrometheus:
	default:
		return TelemetryConfig{}, fmt.Errorf("invalid OTEL_METRICS_EXPORTER %q: want %s or %s",
			exporter, MetricsExporterOTLP, MetricsExporterPrometheus)
	}

	return TelemetryConfig{
		LogLevel:        logLevel,
		OTelEndpoint:    otelEndpoint,
		EnableTracing:   enableTracing,
		EnableMetrics:   enableMetrics,
		SampleRate:      sampleRate,
		MetricsExporter: exporter,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
