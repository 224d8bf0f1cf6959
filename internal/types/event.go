package types

import (
	"time"
)

// StripeEventType is the type string carried on a Stripe event envelope
type StripeEventType string

const (
	StripeEventSubscriptionCreated     StripeEventType = "customer.subscription.created"
	StripeEventSubscriptionUpdated     StripeEventType = "customer.subscription.updated"
	StripeEventSubscriptionDeleted     StripeEventType = "customer.subscription.deleted"
	StripeEventInvoicePaymentSucceeded StripeEventType = "invoice.payment_succeeded"
	StripeEventInvoicePaymentFailed    StripeEventType = "invoice.payment_failed"
	StripeEventCustomerCreated         StripeEventType = "customer.created"
	StripeEventCustomerUpdated         StripeEventType = "customer.updated"
)

// BillingEventName names the internal events published after a state change
type BillingEventName string

const (
	BillingEventSubscriptionSynced    BillingEventName = "subscription.synced"
	BillingEventSubscriptionPastDue   BillingEventName = "subscription.past_due"
	BillingEventSubscriptionCancelled BillingEventName = "subscription.cancelled"
	BillingEventUsageReset            BillingEventName = "subscription.usage_reset"
	BillingEventInvoiceRecorded       BillingEventName = "invoice.recorded"
)

// BillingEvent is published on the internal topic after the store has been written
type BillingEvent struct {
	ID                   string           `json:"id"`
	EventName            BillingEventName `json:"event_name"`
	UserID               string           `json:"user_id,omitempty"`
	SubscriptionID       string           `json:"subscription_id,omitempty"`
	StripeSubscriptionID string           `json:"stripe_subscription_id,omitempty"`
	StripeInvoiceID      string           `json:"stripe_invoice_id,omitempty"`
	SourceEventID        string           `json:"source_event_id,omitempty"`
	Timestamp            time.Time        `json:"timestamp"`
}

// NewBillingEvent creates a billing event stamped with a fresh id and the current time
func NewBillingEvent(name BillingEventName) *BillingEvent {
	return &BillingEvent{
		ID:        GenerateUUIDWithPrefix(UUID_PREFIX_BILLING_EVENT),
		EventName: name,
		Timestamp: time.Now().UTC(),
	}
}
