package service

import (
	"context"

	"github.com/aiteamhq/billsync/internal/cache"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/domain/plan"
	ierr "github.com/aiteamhq/billsync/internal/errors"
)

// ResolverService maps Stripe identifiers onto internal entities
type ResolverService interface {
	// ResolveUserByCustomer returns the profile id of the Stripe customer. The
	// customer is fetched from Stripe and matched to a profile by email.
	ResolveUserByCustomer(ctx context.Context, customerID string) (string, error)

	// ResolvePlanByPrice returns the internal plan sold under a Stripe price
	ResolvePlanByPrice(ctx context.Context, priceID string) (*plan.PlanPrice, error)
}

type resolverService struct {
	ServiceParams
	prices map[string]config.PlanPriceConfig
}

func NewResolverService(params ServiceParams) ResolverService {
	return &resolverService{
		ServiceParams: params,
		prices:        params.Config.Plans.PriceMap(),
	}
}

func (s *resolverService) ResolveUserByCustomer(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", ierr.NewError("event carries no customer").
			WithHint("Stripe customer is missing").
			Mark(ierr.ErrNotFound)
	}

	customer, err := s.StripeGateway.GetCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}

	if customer.Deleted || customer.Email == "" {
		return "", ierr.NewError("customer has no email").
			WithHintf("Stripe customer %s has no email to match a profile", customerID).
			WithReportableDetails(map[string]any{
				"customer_id": customerID,
				"deleted":     customer.Deleted,
			}).
			Mark(ierr.ErrNotFound)
	}

	p, err := s.ProfileRepo.GetByEmail(ctx, customer.Email)
	if err != nil {
		if ierr.IsNotFound(err) {
			return "", ierr.WithError(err).
				WithHintf("No profile for Stripe customer %s", customerID).
				WithReportableDetails(map[string]any{
					"customer_id": customerID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return "", err
	}

	return p.ID, nil
}

func (s *resolverService) ResolvePlanByPrice(ctx context.Context, priceID string) (*plan.PlanPrice, error) {
	if priceID == "" {
		return nil, ierr.NewError("subscription has no price").
			WithHint("Stripe price is missing").
			Mark(ierr.ErrNotFound)
	}

	key := cache.GenerateKey(cache.PrefixPlanPrice, priceID)
	if cached, found := s.Cache.Get(ctx, key); found {
		if p, ok := cached.(*plan.PlanPrice); ok {
			out := *p
			return &out, nil
		}
	}

	p, err := s.PlanPriceRepo.GetByStripePriceID(ctx, priceID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if p == nil {
		// fall back to the static mapping from config
		mapped, ok := s.prices[priceID]
		if !ok {
			return nil, ierr.NewError("unknown stripe price").
				WithHintf("Stripe price %s is not mapped to a plan", priceID).
				WithReportableDetails(map[string]any{
					"price_id": priceID,
				}).
				Mark(ierr.ErrNotFound)
		}
		p = &plan.PlanPrice{
			StripePriceID: mapped.PriceID,
			PlanID:        mapped.PlanID,
			BillingCycle:  mapped.BillingCycle,
		}
	}

	s.Cache.Set(ctx, key, p, 0)
	out := *p
	return &out, nil
}
