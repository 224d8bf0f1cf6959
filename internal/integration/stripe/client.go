package stripe

import (
	"context"

	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Gateway is the read-only slice of the Stripe API the service calls back into
type Gateway interface {
	// GetCustomer fetches a customer by id
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	// GetSubscription fetches a subscription by id in webhook payload form
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionPayload, error)
}

// Client handles Stripe API client setup and configuration
type Client struct {
	api    *stripe.Client
	logger *logger.Logger
}

// NewClient creates a Stripe API client from stripe.secret_key with the
// configured network retry budget
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.Stripe.MaxNetworkRetries),
		LeveledLogger:     logger,
	}
	if cfg.Stripe.APIBaseURL != "" {
		backendConfig.URL = stripe.String(cfg.Stripe.APIBaseURL)
	}
	backends := stripe.NewBackendsWithConfig(backendConfig)

	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, stripe.WithBackends(backends)),
		logger: logger,
	}
}

// NewGateway exposes the Client as a Gateway for dependency injection
func NewGateway(c *Client) Gateway {
	return c
}
