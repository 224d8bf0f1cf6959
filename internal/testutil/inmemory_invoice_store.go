package testutil

import (
	"context"

	"github.com/aiteamhq/billsync/internal/domain/invoice"
)

// InMemoryInvoiceStore implements invoice.Repository keyed by Stripe invoice id
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.LineItems = append(c.LineItems[:0:0], inv.LineItems...)
	return &c
}

func (s *InMemoryInvoiceStore) Upsert(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	stored := copyInvoice(inv)
	if existing, err := s.Get(ctx, inv.StripeInvoiceID); err == nil {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	s.Set(ctx, inv.StripeInvoiceID, stored)
	return copyInvoice(stored), nil
}

func (s *InMemoryInvoiceStore) GetByStripeID(ctx context.Context, stripeInvoiceID string) (*invoice.Invoice, error) {
	inv, err := s.Get(ctx, stripeInvoiceID)
	if err != nil {
		return nil, err
	}
	return copyInvoice(inv), nil
}
