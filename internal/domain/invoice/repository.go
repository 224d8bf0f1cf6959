package invoice

import "context"

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Upsert inserts or updates the row for inv.StripeInvoiceID and returns
	// the stored row
	Upsert(ctx context.Context, inv *Invoice) (*Invoice, error)

	// GetByStripeID retrieves an invoice by its Stripe invoice id
	GetByStripeID(ctx context.Context, stripeInvoiceID string) (*Invoice, error)
}
