package testutil

import (
	"context"

	"github.com/aiteamhq/billsync/internal/domain/plan"
)

// InMemoryPlanPriceStore implements plan.Repository
type InMemoryPlanPriceStore struct {
	*InMemoryStore[*plan.PlanPrice]
	lookups int
}

func NewInMemoryPlanPriceStore() *InMemoryPlanPriceStore {
	return &InMemoryPlanPriceStore{
		InMemoryStore: NewInMemoryStore[*plan.PlanPrice](),
	}
}

// Add seeds a price mapping
func (s *InMemoryPlanPriceStore) Add(p *plan.PlanPrice) {
	c := *p
	s.Set(context.Background(), p.StripePriceID, &c)
}

// Lookups returns how many times GetByStripePriceID was called
func (s *InMemoryPlanPriceStore) Lookups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookups
}

func (s *InMemoryPlanPriceStore) GetByStripePriceID(ctx context.Context, stripePriceID string) (*plan.PlanPrice, error) {
	s.mu.Lock()
	s.lookups++
	s.mu.Unlock()

	p, err := s.Get(ctx, stripePriceID)
	if err != nil {
		return nil, err
	}
	c := *p
	return &c, nil
}
