package subscription

import (
	"time"

	"github.com/aiteamhq/billsync/internal/types"
)

// Subscription is a user's billing relationship mirrored from Stripe. Rows are
// keyed by StripeSubscriptionID; historical rows for the same user may exist.
type Subscription struct {
	// ID is the internal identifier
	ID string `db:"id" json:"id"`

	// UserID references profiles.id
	UserID string `db:"user_id" json:"user_id"`

	// PlanID is the internal plan the Stripe price resolved to
	PlanID string `db:"plan_id" json:"plan_id"`

	StripeSubscriptionID string `db:"stripe_subscription_id" json:"stripe_subscription_id"`
	StripeCustomerID     string `db:"stripe_customer_id" json:"stripe_customer_id"`

	Status       types.SubscriptionStatus `db:"status" json:"status"`
	BillingCycle types.BillingCycle       `db:"billing_cycle" json:"billing_cycle"`

	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   time.Time `db:"current_period_end" json:"current_period_end"`

	// Usage is the metered consumption of the current period
	Usage types.UsageCounters `db:"usage" json:"usage"`

	// UsageResetPeriodStart is the period start of the renewal invoice that last
	// reset Usage. A reset is applied only for a strictly later period.
	UsageResetPeriodStart *time.Time `db:"usage_reset_period_start" json:"usage_reset_period_start,omitempty"`

	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	EndedAt     *time.Time `db:"ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsCancelled reports whether the subscription reached its terminal status
func (s *Subscription) IsCancelled() bool {
	return s.Status.IsTerminal()
}

// CanResetUsage reports whether a renewal invoice starting at periodStart may
// still reset the usage counters
func (s *Subscription) CanResetUsage(periodStart time.Time) bool {
	return s.UsageResetPeriodStart == nil || s.UsageResetPeriodStart.Before(periodStart)
}
