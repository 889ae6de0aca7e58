// internal/adapters/messaging/kafka_test.go
package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/optica-pos/internal/core/ports"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closes  int
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closes++
	return nil
}

func newTestPublisher(w *fakeWriter) *KafkaPublisher {
	return newKafkaPublisher(w, "optica.sales", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	events := []ports.OutboxEvent{
		{ID: "e1", Aggregate: "sale", AggregateID: 10, EventType: "sale.committed", Payload: []byte(`{"sale_id":10}`)},
		{ID: "e2", Aggregate: "sale", AggregateID: 11, EventType: "sale.committed", Payload: []byte(`{"sale_id":11}`)},
	}
	require.NoError(t, p.Publish(context.Background(), events))
	require.Len(t, w.written, 2)

	msg := w.written[0]
	assert.Equal(t, "10", string(msg.Key))
	assert.JSONEq(t, `{"sale_id":10}`, string(msg.Value))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "e1", headers["event_id"])
	assert.Equal(t, "sale.committed", headers["event_type"])
	assert.Equal(t, "sale", headers["aggregate"])
}

func TestKafkaPublisher_EmptyBatch(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	p := newTestPublisher(w)
	assert.NoError(t, p.Publish(context.Background(), nil))
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newTestPublisher(w)

	err := p.Publish(context.Background(), []ports.OutboxEvent{{ID: "e1"}})
	assert.ErrorContains(t, err, "leader not available")
	assert.ErrorContains(t, err, "optica.sales")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newTestPublisher(w)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closes)

	assert.Error(t, p.Publish(context.Background(), []ports.OutboxEvent{{ID: "e1"}}))
}
