package types

import (
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the internal lifecycle status of a user subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid    SubscriptionStatus = "unpaid"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusTrial,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusUnpaid,
		SubscriptionStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
				"status":  s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no further transition is allowed out of the status
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled
}

// stripeSubscriptionStatuses maps Stripe's subscription status vocabulary to ours.
var stripeSubscriptionStatuses = map[string]SubscriptionStatus{
	"active":             SubscriptionStatusActive,
	"past_due":           SubscriptionStatusPastDue,
	"unpaid":             SubscriptionStatusUnpaid,
	"canceled":           SubscriptionStatusCancelled,
	"incomplete":         SubscriptionStatusTrial,
	"incomplete_expired": SubscriptionStatusCancelled,
	"trialing":           SubscriptionStatusTrial,
}

// SubscriptionStatusFromStripe maps a Stripe subscription status. Unknown values
// fail closed to cancelled.
func SubscriptionStatusFromStripe(status string) SubscriptionStatus {
	if mapped, ok := stripeSubscriptionStatuses[status]; ok {
		return mapped
	}
	return SubscriptionStatusCancelled
}

// BillingCycle is how often a subscription renews
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (b BillingCycle) Validate() error {
	if b != BillingCycleMonthly && b != BillingCycleYearly {
		return ierr.NewError("invalid billing cycle").
			WithHintf("Billing cycle must be %s or %s", BillingCycleMonthly, BillingCycleYearly).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycleFromInterval maps a Stripe recurring interval. The second return
// value is false for intervals we do not bill on (day, week).
func BillingCycleFromInterval(interval string) (BillingCycle, bool) {
	switch interval {
	case "month":
		return BillingCycleMonthly, true
	case "year":
		return BillingCycleYearly, true
	default:
		return "", false
	}
}

// BillingReason values of interest on Stripe invoices
const (
	BillingReasonSubscriptionCycle  = "subscription_cycle"
	BillingReasonSubscriptionCreate = "subscription_create"
	BillingReasonSubscriptionUpdate = "subscription_update"
	BillingReasonManual             = "manual"
)
