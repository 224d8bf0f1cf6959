package stripe

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/aiteamhq/billsync/internal/types"
)

// Payload is the closed set of event bodies the service understands. The
// concrete type tells the dispatcher which synchronizer handler applies.
type Payload interface {
	isPayload()
}

// Event is a verified Stripe event with its data.object parsed into a Payload
type Event struct {
	ID      string
	Type    types.StripeEventType
	Created time.Time
	Payload Payload
}

// Unhandled carries an event type the service acknowledges without acting on
type Unhandled struct {
	Type string
}

func (*Unhandled) isPayload()           {}
func (*SubscriptionPayload) isPayload() {}
func (*InvoicePayload) isPayload()      {}
func (*CustomerPayload) isPayload()     {}

// ObjectRef is an expandable Stripe reference. It decodes both the bare id
// form ("cus_123") and the expanded object form ({"id": "cus_123", ...}).
type ObjectRef string

func (r *ObjectRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ObjectRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ObjectRef(obj.ID)
	return nil
}

func (r ObjectRef) String() string {
	return string(r)
}

// SubscriptionPayload is data.object of customer.subscription.* events
type SubscriptionPayload struct {
	ID       string    `json:"id" validate:"required"`
	Customer ObjectRef `json:"customer" validate:"required"`
	Status   string    `json:"status" validate:"required"`

	// Older API versions carry the period on the subscription, newer ones
	// only on the items
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`

	CanceledAt *int64 `json:"canceled_at"`
	EndedAt    *int64 `json:"ended_at"`

	Items struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}

type SubscriptionItem struct {
	Price struct {
		ID        string `json:"id"`
		Recurring *struct {
			Interval string `json:"interval"`
		} `json:"recurring"`
	} `json:"price"`
	CurrentPeriodStart int64 `json:"current_period_start"`
	CurrentPeriodEnd   int64 `json:"current_period_end"`
}

func (s *SubscriptionPayload) firstItem() *SubscriptionItem {
	if len(s.Items.Data) == 0 {
		return nil
	}
	return &s.Items.Data[0]
}

// PriceID returns the price of the first subscription item
func (s *SubscriptionPayload) PriceID() string {
	if item := s.firstItem(); item != nil {
		return item.Price.ID
	}
	return ""
}

// Interval returns the recurring interval of the first item's price
func (s *SubscriptionPayload) Interval() string {
	if item := s.firstItem(); item != nil && item.Price.Recurring != nil {
		return item.Price.Recurring.Interval
	}
	return ""
}

// PeriodStart returns the current period start from the subscription, or from
// its first item when the subscription does not carry one
func (s *SubscriptionPayload) PeriodStart() time.Time {
	if s.CurrentPeriodStart != 0 {
		return unix(s.CurrentPeriodStart)
	}
	if item := s.firstItem(); item != nil && item.CurrentPeriodStart != 0 {
		return unix(item.CurrentPeriodStart)
	}
	return time.Time{}
}

func (s *SubscriptionPayload) PeriodEnd() time.Time {
	if s.CurrentPeriodEnd != 0 {
		return unix(s.CurrentPeriodEnd)
	}
	if item := s.firstItem(); item != nil && item.CurrentPeriodEnd != 0 {
		return unix(item.CurrentPeriodEnd)
	}
	return time.Time{}
}

// CancelledAtTime returns when the subscription was cancelled. Without
// canceled_at it falls back to ended_at, then to now.
func (s *SubscriptionPayload) CancelledAtTime() time.Time {
	if t := unixPtr(s.CanceledAt); t != nil {
		return *t
	}
	if t := unixPtr(s.EndedAt); t != nil {
		return *t
	}
	return time.Now().UTC()
}

// EndedAtTime returns ended_at when Stripe set it, else the cancellation time
func (s *SubscriptionPayload) EndedAtTime() time.Time {
	if t := unixPtr(s.EndedAt); t != nil {
		return *t
	}
	return s.CancelledAtTime()
}

// InvoicePayload is data.object of invoice.* events
type InvoicePayload struct {
	ID       string    `json:"id" validate:"required"`
	Number   string    `json:"number"`
	Customer ObjectRef `json:"customer"`
	Status   string    `json:"status"`
	Currency string    `json:"currency" validate:"required"`

	// Legacy location of the subscription reference
	Subscription ObjectRef `json:"subscription"`

	// Location used by current API versions
	Parent *struct {
		SubscriptionDetails *struct {
			Subscription ObjectRef `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`

	BillingReason string `json:"billing_reason"`

	Subtotal int64  `json:"subtotal"`
	Total    int64  `json:"total"`
	Tax      *int64 `json:"tax"`

	TotalTaxes []struct {
		Amount int64 `json:"amount"`
	} `json:"total_taxes"`
	TotalDiscountAmounts []struct {
		Amount int64 `json:"amount"`
	} `json:"total_discount_amounts"`

	PeriodStart int64  `json:"period_start"`
	PeriodEnd   int64  `json:"period_end"`
	Created     int64  `json:"created"`
	DueDate     *int64 `json:"due_date"`

	StatusTransitions struct {
		PaidAt *int64 `json:"paid_at"`
	} `json:"status_transitions"`

	InvoicePDF string `json:"invoice_pdf"`

	Lines struct {
		Data []InvoiceLine `json:"data"`
	} `json:"lines"`
}

type InvoiceLine struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Quantity    int64  `json:"quantity"`

	Price *struct {
		ID string `json:"id"`
	} `json:"price"`

	Pricing *struct {
		PriceDetails *struct {
			Price ObjectRef `json:"price"`
		} `json:"price_details"`
	} `json:"pricing"`
}

// PriceID returns the line's price from whichever shape is present
func (l InvoiceLine) PriceID() string {
	if l.Price != nil && l.Price.ID != "" {
		return l.Price.ID
	}
	if l.Pricing != nil && l.Pricing.PriceDetails != nil {
		return l.Pricing.PriceDetails.Price.String()
	}
	return ""
}

// SubscriptionID returns the subscription the invoice bills, or "" for one-off invoices
func (i *InvoicePayload) SubscriptionID() string {
	if i.Subscription != "" {
		return i.Subscription.String()
	}
	if i.Parent != nil && i.Parent.SubscriptionDetails != nil {
		return i.Parent.SubscriptionDetails.Subscription.String()
	}
	return ""
}

// TaxAmount returns the tax in minor units
func (i *InvoicePayload) TaxAmount() int64 {
	if i.Tax != nil {
		return *i.Tax
	}
	var total int64
	for _, t := range i.TotalTaxes {
		total += t.Amount
	}
	return total
}

// DiscountAmount returns the discount in minor units
func (i *InvoicePayload) DiscountAmount() int64 {
	var total int64
	for _, d := range i.TotalDiscountAmounts {
		total += d.Amount
	}
	return total
}

// IsRenewal reports whether the invoice was raised for a regular cycle renewal
func (i *InvoicePayload) IsRenewal() bool {
	return i.BillingReason == types.BillingReasonSubscriptionCycle
}

func (i *InvoicePayload) PeriodStartTime() time.Time { return unix(i.PeriodStart) }
func (i *InvoicePayload) PeriodEndTime() time.Time   { return unix(i.PeriodEnd) }

func (i *InvoicePayload) IssuedAt() time.Time {
	if i.Created == 0 {
		return time.Now().UTC()
	}
	return unix(i.Created)
}

func (i *InvoicePayload) DueAt() *time.Time {
	return unixPtr(i.DueDate)
}

func (i *InvoicePayload) PaidAt() *time.Time {
	return unixPtr(i.StatusTransitions.PaidAt)
}

// CustomerPayload is data.object of customer.* events
type CustomerPayload struct {
	ID      string `json:"id" validate:"required"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Deleted bool   `json:"deleted"`
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func unixPtr(sec *int64) *time.Time {
	if sec == nil || *sec == 0 {
		return nil
	}
	t := unix(*sec)
	return &t
}
