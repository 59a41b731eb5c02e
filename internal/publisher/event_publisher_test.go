package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/domain/events"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/pubsub/memory"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToTopic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := config.GetDefaultConfig()
	cfg.Kafka.Topic = "lifecycle"
	ps := memory.NewPubSub(logger.NewNoopLogger())
	defer ps.Close()

	msgs, err := ps.Subscribe(ctx, "lifecycle")
	require.NoError(t, err)

	pub := NewEventPublisherWithTarget(cfg, logger.NewNoopLogger(), ps)
	event := events.NewEvent(types.EventPaymentRetryScheduled, "payment", "pay_2", "acct_1", map[string]interface{}{
		"retry_prev_payment_id": "pay_1",
	})
	require.NoError(t, pub.Publish(types.SetRequestID(ctx, "req_1"), event))

	select {
	case msg := <-msgs:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "payment.retry.scheduled", msg.Metadata.Get("event_name"))
		assert.Equal(t, "req_1", msg.Metadata.Get("request_id"))

		var got events.Event
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "pay_2", got.EntityID)
		assert.Equal(t, "pay_1", got.Properties["retry_prev_payment_id"])
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestPublishRejectsInvalidEvent(t *testing.T) {
	pub := NewEventPublisherWithTarget(config.GetDefaultConfig(), logger.NewNoopLogger(), memory.NewPubSub(logger.NewNoopLogger()))

	err := pub.Publish(context.Background(), &events.Event{EventName: types.EventSubscriptionAged})
	assert.True(t, ierr.IsValidation(err))
}
