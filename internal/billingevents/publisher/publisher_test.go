package publisher

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/pubsub/memory"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPubSub struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
}

func (r *recordingPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages == nil {
		r.messages = make(map[string][]*message.Message)
	}
	r.messages[topic] = append(r.messages[topic], msg)
	return nil
}

func (r *recordingPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, nil
}

func (r *recordingPubSub) Close() error { return nil }

func TestPublishSetsMetadata(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ps := &recordingPubSub{}
	p := NewPublisher(ps, cfg, logger.NewNopLogger())

	ctx := types.SetEventID(context.Background(), "evt_1")
	ctx = types.SetRequestID(ctx, "req_1")

	event := types.NewBillingEvent(types.BillingEventSubscriptionPastDue)
	event.StripeSubscriptionID = "sub_1"
	require.NoError(t, p.Publish(ctx, event))

	msgs := ps.messages[cfg.Events.Topic]
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, string(types.BillingEventSubscriptionPastDue), msg.Metadata.Get("event_name"))
	assert.Equal(t, "evt_1", msg.Metadata.Get("source_event_id"))
	assert.Equal(t, "req_1", msg.Metadata.Get("request_id"))

	var decoded types.BillingEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, "sub_1", decoded.StripeSubscriptionID)
	assert.Equal(t, "evt_1", decoded.SourceEventID)
}

func TestPublishDisabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Events.Enabled = false
	ps := &recordingPubSub{}
	p := NewPublisher(ps, cfg, logger.NewNopLogger())

	require.NoError(t, p.Publish(context.Background(), types.NewBillingEvent(types.BillingEventSubscriptionSynced)))
	assert.Empty(t, ps.messages)
}

func TestPublishThroughMemoryPubSub(t *testing.T) {
	cfg := config.GetDefaultConfig()
	ps := memory.NewPubSub(logger.NewNopLogger())
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := ps.Subscribe(ctx, cfg.Events.Topic)
	require.NoError(t, err)

	p := NewPublisher(ps, cfg, logger.NewNopLogger())
	event := types.NewBillingEvent(types.BillingEventUsageReset)
	require.NoError(t, p.Publish(ctx, event))

	select {
	case msg := <-messages:
		assert.Equal(t, event.ID, msg.UUID)
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("billing event was not delivered")
	}
}
