package subscription

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/types"
)

// Repository defines the interface for user_subscriptions persistence.
// Every write is keyed by the Stripe subscription id.
type Repository interface {
	// Upsert inserts or updates the row for sub.StripeSubscriptionID. Usage
	// counters are never written and a cancelled row stays cancelled.
	Upsert(ctx context.Context, sub *Subscription) (*Subscription, error)

	// GetByStripeID returns the row for a Stripe subscription id
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)

	// UpdateStatus moves a non-cancelled row to status. It returns false when
	// the row is cancelled.
	UpdateStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus) (bool, error)

	// Cancel marks the row cancelled and stamps the cancellation times
	Cancel(ctx context.Context, stripeSubscriptionID string, cancelledAt, endedAt time.Time) error

	// ResetUsage empties the usage counters and moves the period to
	// periodStart..periodEnd, unless a reset for periodStart or a later period
	// was already applied. It reports whether the reset happened.
	ResetUsage(ctx context.Context, stripeSubscriptionID string, periodStart, periodEnd time.Time) (bool, error)
}
