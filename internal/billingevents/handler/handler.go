package handler

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/pubsub"
	pubsubRouter "github.com/aiteamhq/billsync/internal/pubsub/router"
	"github.com/aiteamhq/billsync/internal/types"
)

// Handler consumes billing events inside the process
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.EventsConfig
	logger *logger.Logger
}

func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Events,
		logger: logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"billing_event_logger",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

func (h *handler) processMessage(msg *message.Message) error {
	var event types.BillingEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal billing event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // Don't retry on unmarshal errors
	}

	fields := []interface{}{
		"event_id", event.ID,
		"event_name", event.EventName,
		"user_id", event.UserID,
		"subscription_id", event.SubscriptionID,
		"stripe_subscription_id", event.StripeSubscriptionID,
		"stripe_invoice_id", event.StripeInvoiceID,
		"source_event_id", event.SourceEventID,
		"request_id", msg.Metadata.Get("request_id"),
	}

	switch event.EventName {
	case types.BillingEventSubscriptionPastDue:
		// No notification channel exists yet; the event is the hook for one
		h.logger.Warnw("subscription is past due, user should be notified", fields...)
	case types.BillingEventSubscriptionCancelled:
		h.logger.Infow("subscription cancelled", fields...)
	default:
		h.logger.Infow("billing event", fields...)
	}
	return nil
}
