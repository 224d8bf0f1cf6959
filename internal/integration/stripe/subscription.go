package stripe

import (
	"context"
	"encoding/json"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/validator"
	"github.com/stripe/stripe-go/v82"
)

// GetSubscription retrieves a subscription and decodes it into the same shape
// a customer.subscription.* webhook carries, so one sync path serves both
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionPayload, error) {
	c.logger.Debugw("retrieving Stripe subscription", "stripe_subscription_id", subscriptionID)

	params := &stripe.SubscriptionRetrieveParams{}
	params.AddExpand("items.data.price")

	sub, err := c.api.V1Subscriptions.Retrieve(ctx, subscriptionID, params)
	if err != nil {
		return nil, markAPIError(err, "subscription", subscriptionID)
	}

	var raw []byte
	if sub.LastResponse != nil && len(sub.LastResponse.RawJSON) > 0 {
		raw = sub.LastResponse.RawJSON
	} else if raw, err = json.Marshal(sub); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}

	var payload SubscriptionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithMessage("failed to decode Stripe subscription").
			Mark(ierr.ErrHTTPClient)
	}
	if err := validator.ValidateRequest(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
