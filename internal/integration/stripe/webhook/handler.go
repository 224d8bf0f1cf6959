package webhook

import (
	"context"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/sentry"
	"github.com/aiteamhq/billsync/internal/service"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/sourcegraph/conc/panics"
)

// Handler routes verified Stripe events to the billing synchronizer
type Handler struct {
	billingSync service.BillingSyncService
	sentry      *sentry.Service
	logger      *logger.Logger
}

// NewHandler creates a new Stripe webhook handler
func NewHandler(
	billingSync service.BillingSyncService,
	sentry *sentry.Service,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		billingSync: billingSync,
		sentry:      sentry,
		logger:      logger,
	}
}

// HandleWebhookEvent processes a verified Stripe event. It returns nil when
// the delivery should be acknowledged, including events that cannot be
// resolved locally and kinds we do not handle. Any returned error means the
// event was not applied and Stripe should redeliver it.
func (h *Handler) HandleWebhookEvent(ctx context.Context, event *stripe.Event) (err error) {
	ctx = types.SetEventID(ctx, event.ID)

	span, ctx := h.sentry.MonitorWebhookEvent(ctx, string(event.Type), event.Created)
	defer sentry.FinishSpan(span)

	h.logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
		"request_id", types.GetRequestID(ctx),
	)

	var catcher panics.Catcher
	catcher.Try(func() {
		err = h.dispatch(ctx, event)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		h.logger.Errorw("panic while handling Stripe webhook event",
			"event_id", event.ID,
			"event_type", event.Type,
			"panic", recovered.Value,
			"stack", string(recovered.Stack))
		err = ierr.WithError(recovered.AsError()).
			WithHint("Webhook handler failed").
			Mark(ierr.ErrSystem)
	}

	if err == nil {
		return nil
	}

	if ierr.IsNotFound(err) {
		h.logger.Warnw("could not resolve Stripe event locally, skipping",
			"event_id", event.ID,
			"event_type", event.Type,
			"reason", ierr.GetHint(err),
			"error", err)
		return nil
	}

	h.logger.Errorw("failed to handle Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
		"error", err)
	h.sentry.CaptureWebhookFailure(err, event.ID, string(event.Type))
	return err
}

func (h *Handler) dispatch(ctx context.Context, event *stripe.Event) error {
	switch payload := event.Payload.(type) {
	case *stripe.SubscriptionPayload:
		if event.Type == types.StripeEventSubscriptionDeleted {
			return h.billingSync.CancelSubscription(ctx, payload)
		}
		return h.billingSync.SyncSubscription(ctx, payload)

	case *stripe.InvoicePayload:
		if event.Type == types.StripeEventInvoicePaymentFailed {
			return h.billingSync.MarkPaymentFailed(ctx, payload)
		}
		return h.billingSync.RecordInvoicePayment(ctx, payload)

	case *stripe.CustomerPayload:
		return h.billingSync.MirrorCustomer(ctx, payload)

	default:
		h.logger.Infow("unhandled Stripe webhook event type",
			"event_id", event.ID,
			"type", event.Type)
		return nil
	}
}
