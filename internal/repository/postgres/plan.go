package postgres

import (
	"context"

	"github.com/aiteamhq/billsync/internal/domain/plan"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
)

type planPriceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanPriceRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planPriceRepository{db: db, logger: logger}
}

func (r *planPriceRepository) GetByStripePriceID(ctx context.Context, stripePriceID string) (*plan.PlanPrice, error) {
	query := `SELECT stripe_price_id, plan_id, billing_cycle FROM plan_prices WHERE stripe_price_id = $1`

	var p plan.PlanPrice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, stripePriceID); err != nil {
		return nil, wrapQueryError(err, "plan price", map[string]any{
			"stripe_price_id": stripePriceID,
		})
	}
	return &p, nil
}
