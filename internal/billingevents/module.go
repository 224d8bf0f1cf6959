package billingevents

import (
	"github.com/aiteamhq/billsync/internal/billingevents/handler"
	"github.com/aiteamhq/billsync/internal/billingevents/publisher"
	"github.com/aiteamhq/billsync/internal/pubsub/memory"
	"go.uber.org/fx"
)

// Module provides the billing event pubsub, publisher and consumer
var Module = fx.Options(
	fx.Provide(
		memory.NewPubSub,
		publisher.NewPublisher,
		handler.NewHandler,
	),
)
