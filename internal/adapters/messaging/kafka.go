// internal/adapters/messaging/kafka.go
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/pkg/config"
)

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes outbox events to a Kafka topic. Events are keyed
// by aggregate id so that all events of one sale land on one partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	closed atomic.Bool
	logger *slog.Logger
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a synchronous publisher for cfg.SalesTopic
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	log := logger.With(slog.String("publisher", "kafka"))

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.SalesTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
			Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return newKafkaPublisher(writer, cfg.SalesTopic, log)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger}
}

// Publish writes events in one batch and blocks until the brokers ack it
func (p *KafkaPublisher) Publish(ctx context.Context, events []ports.OutboxEvent) error {
	if p.closed.Load() {
		return fmt.Errorf("kafka publisher is closed")
	}
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		msgs[i] = toMessage(e)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d events to %s: %w", len(events), p.topic, err)
	}

	p.logger.DebugContext(ctx, "events published",
		slog.String("topic", p.topic),
		slog.Int("count", len(events)))
	return nil
}

// Close flushes and closes the writer. It is safe to call more than once.
func (p *KafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

func toMessage(e ports.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.AggregateID, 10)),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.ID)},
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "aggregate", Value: []byte(e.Aggregate)},
		},
	}
}
