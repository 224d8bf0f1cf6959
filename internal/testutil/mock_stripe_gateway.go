package testutil

import (
	"context"
	"sync"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
)

var _ stripe.Gateway = (*MockStripeGateway)(nil)

// MockStripeGateway serves customers and subscriptions from memory
type MockStripeGateway struct {
	mu            sync.Mutex
	customers     map[string]*stripe.Customer
	subscriptions map[string]*stripe.SubscriptionPayload
	calls         map[string]int

	// Err, when set, is returned by every call
	Err error
}

func NewMockStripeGateway() *MockStripeGateway {
	return &MockStripeGateway{
		customers:     make(map[string]*stripe.Customer),
		subscriptions: make(map[string]*stripe.SubscriptionPayload),
		calls:         make(map[string]int),
	}
}

func (g *MockStripeGateway) AddCustomer(c *stripe.Customer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers[c.ID] = c
}

func (g *MockStripeGateway) AddSubscription(s *stripe.SubscriptionPayload) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subscriptions[s.ID] = s
}

// Calls returns how many times method was invoked
func (g *MockStripeGateway) Calls(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[method]
}

func (g *MockStripeGateway) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["GetCustomer"]++

	if g.Err != nil {
		return nil, g.Err
	}
	c, ok := g.customers[customerID]
	if !ok {
		return nil, ierr.NewError("no such customer").
			WithHint("Stripe customer not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (g *MockStripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.SubscriptionPayload, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["GetSubscription"]++

	if g.Err != nil {
		return nil, g.Err
	}
	s, ok := g.subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("no such subscription").
			WithHint("Stripe subscription not found").
			Mark(ierr.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}
