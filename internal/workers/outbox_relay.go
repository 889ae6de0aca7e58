// internal/workers/outbox_relay.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/optica-pos/internal/core/ports"
)

const (
	defaultRelayBatch = 100
	maxRelayBatches   = 10
)

// OutboxRelay publishes pending outbox events. Delivery is at least once:
// an event published but not yet marked is sent again by the next run.
type OutboxRelay struct {
	outbox    ports.Outbox
	publisher ports.EventPublisher
	batchSize int
	logger    *slog.Logger
}

// NewOutboxRelay creates a relay moving up to batchSize events per publish
func NewOutboxRelay(outbox ports.Outbox, publisher ports.EventPublisher, batchSize int, logger *slog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = defaultRelayBatch
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger.With(slog.String("processor", "outbox_relay")),
	}
}

// Relay handles outbox:relay tasks
func (r *OutboxRelay) Relay(ctx context.Context, _ *asynq.Task) error {
	sent, err := r.RelayPending(ctx)
	if sent > 0 {
		r.logger.InfoContext(ctx, "outbox events relayed", slog.Int("count", sent))
	}
	return err
}

// RelayPending drains the outbox in batches and returns how many events
// were published and marked sent.
func (r *OutboxRelay) RelayPending(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < maxRelayBatches; i++ {
		events, err := r.outbox.FetchPending(ctx, r.batchSize)
		if err != nil {
			return sent, err
		}
		if len(events) == 0 {
			return sent, nil
		}

		if err := r.publisher.Publish(ctx, events); err != nil {
			return sent, fmt.Errorf("failed to publish outbox batch: %w", err)
		}
		for _, e := range events {
			if err := r.outbox.MarkSent(ctx, e.ID); err != nil {
				return sent, err
			}
			sent++
		}

		if len(events) < r.batchSize {
			return sent, nil
		}
	}
	return sent, nil
}
