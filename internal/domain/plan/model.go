package plan

import "github.com/aiteamhq/billsync/internal/types"

// PlanPrice maps a Stripe price to the internal plan it sells
type PlanPrice struct {
	StripePriceID string             `db:"stripe_price_id" json:"stripe_price_id"`
	PlanID        string             `db:"plan_id" json:"plan_id"`
	BillingCycle  types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`
}
