package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/pubsub"
	"github.com/aiteamhq/billsync/internal/types"
)

// EventPublisher publishes billing events after the store has been written
type EventPublisher interface {
	Publish(ctx context.Context, event *types.BillingEvent) error
}

type eventPublisher struct {
	pubSub pubsub.PubSub
	config *config.EventsConfig
	logger *logger.Logger
}

// NewPublisher creates a publisher on events.topic. With events disabled the
// publisher only logs.
func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) EventPublisher {
	return &eventPublisher{
		pubSub: pubSub,
		config: &cfg.Events,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *types.BillingEvent) error {
	if event.SourceEventID == "" {
		event.SourceEventID = types.GetEventID(ctx)
	}

	if !p.config.Enabled {
		p.logger.Debugw("billing events disabled, dropping event",
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("event_name", string(event.EventName))
	msg.Metadata.Set("source_event_id", event.SourceEventID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish billing event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return err
	}

	p.logger.Debugw("published billing event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"topic", p.config.Topic,
	)
	return nil
}
