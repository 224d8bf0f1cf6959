package plan

import "context"

// Repository defines the interface for the plan_prices table
type Repository interface {
	GetByStripePriceID(ctx context.Context, stripePriceID string) (*PlanPrice, error)
}
