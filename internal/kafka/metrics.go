package kafka

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	producerLatency  metric.Float64Histogram
	messagesProduced metric.Int64Counter
	payloadBytes     metric.Int64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.producerLatency, err = meter.Float64Histogram(
		"kafka_producer_latency_seconds",
		metric.WithDescription("Time spent writing a forwarded event to Kafka"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_producer_latency histogram: %w", err)
	}

	m.messagesProduced, err = meter.Int64Counter(
		"kafka_messages_produced_total",
		metric.WithDescription("Forwarded events written to Kafka"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_messages_produced_total counter: %w", err)
	}

	m.payloadBytes, err = meter.Int64Histogram(
		"kafka_message_payload_bytes",
		metric.WithDescription("Size of forwarded event payloads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka_message_payload_bytes histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, topic string, payloadSize int, durationSeconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("status", status),
	)
	m.producerLatency.Record(ctx, durationSeconds, attrs)
	m.messagesProduced.Add(ctx, 1, attrs)
	m.payloadBytes.Record(ctx, int64(payloadSize), metric.WithAttributes(attribute.String("topic", topic)))
}
