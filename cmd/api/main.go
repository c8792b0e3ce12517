package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/dejobratic/fulfillment/internal/config"
	"github.com/dejobratic/fulfillment/internal/events"
	idemmemory "github.com/dejobratic/fulfillment/internal/idempotency/memory"
	"github.com/dejobratic/fulfillment/internal/kafka"
	"github.com/dejobratic/fulfillment/internal/orders/adapters"
	httpadapter "github.com/dejobratic/fulfillment/internal/orders/adapters/http"
	"github.com/dejobratic/fulfillment/internal/orders/adapters/memory"
	ordersapp "github.com/dejobratic/fulfillment/internal/orders/app"
	ordermetrics "github.com/dejobratic/fulfillment/internal/orders/metrics"
	"github.com/dejobratic/fulfillment/internal/telemetry"
)

const meterName = "github.com/dejobratic/fulfillment"

func main() {
	if err := run(); err != nil {
		slog.Error("fulfillment api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger(os.Stdout, level).With("service", cfg.Service.Name)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:     cfg.Service.Name,
		ServiceVersion:  cfg.Service.Version,
		Environment:     cfg.Service.Environment,
		OTLPEndpoint:    cfg.Telemetry.OTelEndpoint,
		EnableTracing:   cfg.Telemetry.EnableTracing,
		EnableMetrics:   cfg.Telemetry.EnableMetrics,
		SampleRate:      cfg.Telemetry.SampleRate,
		MetricsExporter: cfg.Telemetry.MetricsExporter,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := otel.Meter(meterName)
	orderMetrics, err := ordermetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		return err
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	bus := events.NewBus(events.WithLogger(logger))
	publisher := adapters.NewObservableEventBus(bus, eventMetrics)
	repo := adapters.NewObservableRepository(memory.NewRepository(), orderMetrics)

	coordinator := ordersapp.NewCoordinator(repo, publisher, logger, orderMetrics)
	coordinator.Register(bus)

	writer, closeWriter := newKafkaWriter(cfg.Kafka, logger)
	defer closeWriter()
	kafka.NewForwarder(writer, cfg.Kafka.TopicPrefix, kafkaMetrics, logger).Register(bus)

	service := ordersapp.NewService(coordinator, publisher, idemmemory.NewStore())

	router := httpadapter.NewRouter(httpadapter.NewHandler(service), httpadapter.RouterConfig{
		Logger:         logger,
		Metrics:        httpMetrics,
		MetricsPath:    cfg.HTTP.MetricsPath,
		MetricsHandler: tel.MetricsHandler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "kafka_enabled", len(cfg.Kafka.Brokers) > 0)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func newKafkaWriter(cfg config.KafkaConfig, logger *slog.Logger) (kafka.Writer, func()) {
	if len(cfg.Brokers) == 0 {
		logger.Info("no kafka brokers configured, outbound events stay in process")
		return kafka.NewNoopWriter(logger), func() {}
	}

	writer := kafka.NewWriter(cfg.Brokers)
	return writer, func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close failed", "error", err)
		}
	}
}
