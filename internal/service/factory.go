package service

import (
	"github.com/aiteamhq/billsync/internal/billingevents/publisher"
	"github.com/aiteamhq/billsync/internal/cache"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/domain/invoice"
	"github.com/aiteamhq/billsync/internal/domain/plan"
	"github.com/aiteamhq/billsync/internal/domain/profile"
	"github.com/aiteamhq/billsync/internal/domain/subscription"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.Transactor

	// Repositories
	ProfileRepo   profile.Repository
	SubRepo       subscription.Repository
	InvoiceRepo   invoice.Repository
	PlanPriceRepo plan.Repository

	Cache cache.Cache

	// Stripe API used to look up customers and subscriptions
	StripeGateway stripe.Gateway

	EventPublisher publisher.EventPublisher
}

// NewServiceParams creates a new ServiceParams with all the dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.Transactor,
	profileRepo profile.Repository,
	subRepo subscription.Repository,
	invoiceRepo invoice.Repository,
	planPriceRepo plan.Repository,
	cache cache.Cache,
	stripeGateway stripe.Gateway,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		DB:             db,
		ProfileRepo:    profileRepo,
		SubRepo:        subRepo,
		InvoiceRepo:    invoiceRepo,
		PlanPriceRepo:  planPriceRepo,
		Cache:          cache,
		StripeGateway:  stripeGateway,
		EventPublisher: eventPublisher,
	}
}
