package testutil

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/domain/subscription"
	"github.com/aiteamhq/billsync/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository with the same
// write rules as the Postgres repository, keyed by Stripe subscription id
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	c := *sub
	return &c
}

// Add seeds a subscription row as is
func (s *InMemorySubscriptionStore) Add(sub *subscription.Subscription) {
	s.Set(context.Background(), sub.StripeSubscriptionID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	existing, err := s.Get(ctx, sub.StripeSubscriptionID)
	if err != nil {
		stored := copySubscription(sub)
		s.Set(ctx, sub.StripeSubscriptionID, stored)
		return copySubscription(stored), nil
	}

	updated := copySubscription(existing)
	updated.UserID = sub.UserID
	updated.PlanID = sub.PlanID
	updated.StripeCustomerID = sub.StripeCustomerID
	if !existing.IsCancelled() {
		updated.Status = sub.Status
	}
	updated.BillingCycle = sub.BillingCycle
	updated.CurrentPeriodStart = sub.CurrentPeriodStart
	updated.CurrentPeriodEnd = sub.CurrentPeriodEnd
	if updated.CancelledAt == nil {
		updated.CancelledAt = sub.CancelledAt
	}
	if updated.EndedAt == nil {
		updated.EndedAt = sub.EndedAt
	}
	updated.UpdatedAt = sub.UpdatedAt

	s.Set(ctx, sub.StripeSubscriptionID, updated)
	return copySubscription(updated), nil
}

func (s *InMemorySubscriptionStore) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	sub, err := s.Get(ctx, stripeSubscriptionID)
	if err != nil {
		return nil, err
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) UpdateStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus) (bool, error) {
	updated := false
	_ = s.Mutate(ctx, stripeSubscriptionID, func(sub *subscription.Subscription) *subscription.Subscription {
		if sub.IsCancelled() {
			return sub
		}
		c := copySubscription(sub)
		c.Status = status
		c.UpdatedAt = time.Now().UTC()
		updated = true
		return c
	})
	return updated, nil
}

func (s *InMemorySubscriptionStore) Cancel(ctx context.Context, stripeSubscriptionID string, cancelledAt, endedAt time.Time) error {
	return s.Mutate(ctx, stripeSubscriptionID, func(sub *subscription.Subscription) *subscription.Subscription {
		c := copySubscription(sub)
		c.Status = types.SubscriptionStatusCancelled
		if c.CancelledAt == nil {
			c.CancelledAt = &cancelledAt
		}
		if c.EndedAt == nil {
			c.EndedAt = &endedAt
		}
		c.UpdatedAt = time.Now().UTC()
		return c
	})
}

func (s *InMemorySubscriptionStore) ResetUsage(ctx context.Context, stripeSubscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	reset := false
	_ = s.Mutate(ctx, stripeSubscriptionID, func(sub *subscription.Subscription) *subscription.Subscription {
		if !sub.CanResetUsage(periodStart) {
			return sub
		}
		c := copySubscription(sub)
		c.Usage = types.UsageCounters{}
		c.CurrentPeriodStart = periodStart
		c.CurrentPeriodEnd = periodEnd
		c.UsageResetPeriodStart = &periodStart
		c.UpdatedAt = time.Now().UTC()
		reset = true
		return c
	})
	return reset, nil
}
