package invoice

import (
	"time"

	"github.com/aiteamhq/billsync/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a Stripe invoice mirrored locally, keyed by StripeInvoiceID
type Invoice struct {
	ID string `db:"id" json:"id"`

	// SubscriptionID references user_subscriptions.id
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	InvoiceNumber   string `db:"invoice_number" json:"invoice_number"`
	StripeInvoiceID string `db:"stripe_invoice_id" json:"stripe_invoice_id"`

	// Amounts are in major currency units
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax         decimal.Decimal `db:"tax" json:"tax"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
	Currency    string          `db:"currency" json:"currency"`

	Status types.InvoiceStatus `db:"status" json:"status"`

	IssuedAt time.Time  `db:"issued_at" json:"issued_at"`
	DueAt    *time.Time `db:"due_at" json:"due_at,omitempty"`
	PaidAt   *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	LineItems     types.InvoiceLineItems `db:"line_items" json:"line_items"`
	InvoicePDFURL string                 `db:"invoice_pdf_url" json:"invoice_pdf_url,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
