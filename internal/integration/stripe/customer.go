package stripe

import (
	"context"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/stripe/stripe-go/v82"
)

// Customer is the part of a Stripe customer the resolver needs
type Customer struct {
	ID      string
	Email   string
	Name    string
	Phone   string
	Deleted bool
}

// GetCustomer retrieves a customer. A customer Stripe reports as missing is
// marked ErrNotFound; any other failure is an http client error.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	c.logger.Debugw("retrieving Stripe customer", "stripe_customer_id", customerID)

	cust, err := c.api.V1Customers.Retrieve(ctx, customerID, nil)
	if err != nil {
		return nil, markAPIError(err, "customer", customerID)
	}

	return &Customer{
		ID:      cust.ID,
		Email:   cust.Email,
		Name:    cust.Name,
		Phone:   cust.Phone,
		Deleted: cust.Deleted,
	}, nil
}

func markAPIError(err error, object, id string) error {
	details := map[string]any{
		"object": object,
		"id":     id,
	}
	var stripeErr *stripe.Error
	if ierr.As(err, &stripeErr) {
		details["stripe_code"] = string(stripeErr.Code)
		details["request_id"] = stripeErr.RequestID
		if stripeErr.HTTPStatusCode == 404 || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return ierr.WithError(err).
				WithHintf("Stripe %s not found", object).
				WithReportableDetails(details).
				Mark(ierr.ErrNotFound)
		}
	}
	return ierr.WithError(err).
		WithMessagef("failed to retrieve Stripe %s", object).
		WithReportableDetails(details).
		Mark(ierr.ErrHTTPClient)
}
