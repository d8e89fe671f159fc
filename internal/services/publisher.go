package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

//go:generate mockgen --destination=publisher_mock.go --package=services . KafkaWriter

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// PublisherMetrics records event delivery.
type PublisherMetrics interface {
	RecordEvent(eventType models.LedgerEventType, published bool)
	RecordCircuitState(state int)
}

// BreakerConfig configures the circuit breaker in front of the broker.
type BreakerConfig struct {
	ConsecutiveFailures uint32        // failures that open the circuit
	OpenTimeout         time.Duration // time the circuit stays open before probing
	WriteTimeout        time.Duration // per-publish deadline
}

// KafkaEventPublisher publishes ledger events to Kafka behind a circuit breaker.
// A nil writer disables publishing.
type KafkaEventPublisher struct {
	writer  KafkaWriter
	cb      *gobreaker.CircuitBreaker
	metrics PublisherMetrics
	timeout time.Duration
}

// NewKafkaEventPublisher creates a new publisher.
func NewKafkaEventPublisher(writer KafkaWriter, cfg BreakerConfig, metrics PublisherMetrics) *KafkaEventPublisher {
	p := &KafkaEventPublisher{
		writer:  writer,
		metrics: metrics,
		timeout: cfg.WriteTimeout,
	}

	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ledger-events",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Log.Warnw("event publisher circuit state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.RecordCircuitState(int(to))
		},
	})

	return p
}

// Publish writes the event to Kafka. Failures are logged and counted, never returned.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event models.LedgerEvent) {
	if p.writer == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "type", event.Type, "key", event.Key())
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal ledger event for Kafka", "type", event.Type, "key", event.Key(), "error", err)
		p.metrics.RecordEvent(event.Type, false)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			logger.Log.Warnw("Event publisher circuit open, dropping event", "type", event.Type, "key", event.Key())
		} else {
			logger.Log.Errorw("Failed to publish ledger event to Kafka", "type", event.Type, "key", event.Key(), "error", err)
		}
		p.metrics.RecordEvent(event.Type, false)
		return
	}

	logger.Log.Infow("Ledger event published to Kafka", "type", event.Type, "key", event.Key(), "amount", event.Amount)
	p.metrics.RecordEvent(event.Type, true)
}

// Close closes the underlying writer.
func (p *KafkaEventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
