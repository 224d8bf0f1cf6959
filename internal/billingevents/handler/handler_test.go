package handler

import (
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/pubsub/memory"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *handler {
	t.Helper()
	log := logger.NewNopLogger()
	h, ok := NewHandler(memory.NewPubSub(log), config.GetDefaultConfig(), log).(*handler)
	require.True(t, ok)
	return h
}

func TestProcessMessage(t *testing.T) {
	h := newTestHandler(t)

	for _, name := range []types.BillingEventName{
		types.BillingEventSubscriptionSynced,
		types.BillingEventSubscriptionPastDue,
		types.BillingEventSubscriptionCancelled,
		types.BillingEventUsageReset,
		types.BillingEventInvoiceRecorded,
	} {
		t.Run(string(name), func(t *testing.T) {
			payload, err := json.Marshal(types.NewBillingEvent(name))
			require.NoError(t, err)

			msg := message.NewMessage(watermill.NewUUID(), payload)
			msg.Metadata.Set("request_id", "req_1")
			assert.NoError(t, h.processMessage(msg))
		})
	}
}

func TestProcessMessageDropsGarbage(t *testing.T) {
	h := newTestHandler(t)
	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	assert.NoError(t, h.processMessage(msg))
}
