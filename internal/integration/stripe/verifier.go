package stripe

import (
	"encoding/json"
	"time"

	"github.com/aiteamhq/billsync/internal/config"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/aiteamhq/billsync/internal/validator"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Verifier authenticates webhook deliveries and parses them into Events.
// Nothing downstream ever sees a payload that failed verification.
type Verifier struct {
	secret                   string
	ignoreAPIVersionMismatch bool
	logger                   *logger.Logger
}

func NewVerifier(cfg *config.Configuration, logger *logger.Logger) *Verifier {
	return &Verifier{
		secret:                   cfg.Stripe.WebhookSecret,
		ignoreAPIVersionMismatch: cfg.Stripe.IgnoreAPIVersionMismatch,
		logger:                   logger,
	}
}

// Verify checks the Stripe-Signature header against the exact raw body and
// parses data.object for the event kinds the service handles
func (v *Verifier) Verify(payload []byte, signature string) (*Event, error) {
	if v.secret == "" {
		return nil, ierr.NewError("webhook secret not configured").
			WithHint("Webhook endpoint is not configured").
			Mark(ierr.ErrInvalidSignature)
	}
	if signature == "" {
		return nil, ierr.NewError("missing Stripe-Signature header").
			WithHint("Missing Stripe-Signature header").
			Mark(ierr.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: v.ignoreAPIVersionMismatch,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrInvalidSignature)
	}

	out := &Event{
		ID:      event.ID,
		Type:    types.StripeEventType(event.Type),
		Created: time.Unix(event.Created, 0).UTC(),
	}

	var raw json.RawMessage
	if event.Data != nil {
		raw = event.Data.Raw
	}

	payloadObj, err := parsePayload(out.Type, raw)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Malformed %s payload", out.Type).
			WithReportableDetails(map[string]any{
				"event_id":   out.ID,
				"event_type": out.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	out.Payload = payloadObj

	return out, nil
}

func parsePayload(eventType types.StripeEventType, raw json.RawMessage) (Payload, error) {
	switch eventType {
	case types.StripeEventSubscriptionCreated,
		types.StripeEventSubscriptionUpdated,
		types.StripeEventSubscriptionDeleted:
		var p SubscriptionPayload
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		// created/updated must name the price and period being synced
		if eventType != types.StripeEventSubscriptionDeleted {
			if p.PriceID() == "" {
				return nil, ierr.NewError("subscription has no priced item").Mark(ierr.ErrValidation)
			}
			if p.PeriodStart().IsZero() || p.PeriodEnd().IsZero() {
				return nil, ierr.NewError("subscription has no current period").Mark(ierr.ErrValidation)
			}
		}
		return &p, nil

	case types.StripeEventInvoicePaymentSucceeded,
		types.StripeEventInvoicePaymentFailed:
		var p InvoicePayload
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		if p.IsRenewal() && (p.PeriodStart == 0 || p.PeriodEnd == 0) {
			return nil, ierr.NewError("renewal invoice has no period").Mark(ierr.ErrValidation)
		}
		return &p, nil

	case types.StripeEventCustomerCreated,
		types.StripeEventCustomerUpdated:
		var p CustomerPayload
		if err := decode(raw, &p); err != nil {
			return nil, err
		}
		return &p, nil

	default:
		return &Unhandled{Type: string(eventType)}, nil
	}
}

func decode(raw json.RawMessage, dest interface{}) error {
	if len(raw) == 0 {
		return ierr.NewError("event has no data.object").Mark(ierr.ErrValidation)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	return validator.ValidateRequest(dest)
}
