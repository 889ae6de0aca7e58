// internal/workers/outbox_relay_test.go
package workers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/optica-pos/internal/core/ports"
	"github.com/ammerola/optica-pos/internal/workers"
	"github.com/ammerola/optica-pos/test/helpers"
	"github.com/ammerola/optica-pos/test/mocks"
)

func outboxEvents(ids ...int) []ports.OutboxEvent {
	events := make([]ports.OutboxEvent, len(ids))
	for i, id := range ids {
		events[i] = ports.OutboxEvent{
			ID:          fmt.Sprintf("e%d", id),
			Aggregate:   "sale",
			AggregateID: int64(id),
			EventType:   "sale.committed",
			Payload:     []byte(`{}`),
		}
	}
	return events
}

func TestOutboxRelay_DrainsInBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	relay := workers.NewOutboxRelay(outbox, publisher, 2, helpers.TestLogger())

	first := outbox.EXPECT().FetchPending(gomock.Any(), 2).Return(outboxEvents(1, 2), nil)
	pub1 := publisher.EXPECT().Publish(gomock.Any(), outboxEvents(1, 2)).Return(nil).After(first)
	outbox.EXPECT().MarkSent(gomock.Any(), "e1").Return(nil).After(pub1)
	mark2 := outbox.EXPECT().MarkSent(gomock.Any(), "e2").Return(nil).After(pub1)

	second := outbox.EXPECT().FetchPending(gomock.Any(), 2).Return(outboxEvents(3), nil).After(mark2)
	pub2 := publisher.EXPECT().Publish(gomock.Any(), outboxEvents(3)).Return(nil).After(second)
	outbox.EXPECT().MarkSent(gomock.Any(), "e3").Return(nil).After(pub2)

	sent, err := relay.RelayPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
}

func TestOutboxRelay_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	relay := workers.NewOutboxRelay(outbox, mocks.NewMockEventPublisher(ctrl), 0, helpers.TestLogger())

	outbox.EXPECT().FetchPending(gomock.Any(), 100).Return(nil, nil)
	require.NoError(t, relay.Relay(context.Background(), nil))
}

func TestOutboxRelay_PublishFailureLeavesEventsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	relay := workers.NewOutboxRelay(outbox, publisher, 10, helpers.TestLogger())

	outbox.EXPECT().FetchPending(gomock.Any(), 10).Return(outboxEvents(1), nil)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("leader not available"))

	sent, err := relay.RelayPending(context.Background())
	assert.ErrorContains(t, err, "leader not available")
	assert.Zero(t, sent)
}

func TestOutboxRelay_MarkFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mocks.NewMockOutbox(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	relay := workers.NewOutboxRelay(outbox, publisher, 10, helpers.TestLogger())

	outbox.EXPECT().FetchPending(gomock.Any(), 10).Return(outboxEvents(1, 2), nil)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	outbox.EXPECT().MarkSent(gomock.Any(), "e1").Return(nil)
	outbox.EXPECT().MarkSent(gomock.Any(), "e2").Return(errors.New("conn closed"))

	sent, err := relay.RelayPending(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, sent)
}
