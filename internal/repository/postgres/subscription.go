package postgres

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/domain/subscription"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
	"github.com/aiteamhq/billsync/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	// usage is only written on insert. A cancelled row keeps its status and
	// cancellation stamps.
	query := `
		INSERT INTO user_subscriptions (
			id,
			user_id,
			plan_id,
			stripe_subscription_id,
			stripe_customer_id,
			status,
			billing_cycle,
			current_period_start,
			current_period_end,
			usage,
			cancelled_at,
			ended_at,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:plan_id,
			:stripe_subscription_id,
			:stripe_customer_id,
			:status,
			:billing_cycle,
			:current_period_start,
			:current_period_end,
			:usage,
			:cancelled_at,
			:ended_at,
			:created_at,
			:updated_at
		)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			plan_id = EXCLUDED.plan_id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			status = CASE
				WHEN user_subscriptions.status = 'cancelled' THEN user_subscriptions.status
				ELSE EXCLUDED.status
			END,
			billing_cycle = EXCLUDED.billing_cycle,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			cancelled_at = COALESCE(user_subscriptions.cancelled_at, EXCLUDED.cancelled_at),
			ended_at = COALESCE(user_subscriptions.ended_at, EXCLUDED.ended_at),
			updated_at = EXCLUDED.updated_at
		RETURNING *
	`

	r.logger.Debugw("upserting subscription",
		"stripe_subscription_id", sub.StripeSubscriptionID,
		"user_id", sub.UserID,
		"status", sub.Status,
	)

	var stored subscription.Subscription
	if err := r.db.NamedGetContext(ctx, &stored, query, sub); err != nil {
		return nil, wrapQueryError(err, "subscription", map[string]any{
			"stripe_subscription_id": sub.StripeSubscriptionID,
		})
	}
	return &stored, nil
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*subscription.Subscription, error) {
	query := `SELECT * FROM user_subscriptions WHERE stripe_subscription_id = $1`

	var sub subscription.Subscription
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &sub, query, stripeSubscriptionID); err != nil {
		return nil, wrapQueryError(err, "subscription", map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
		})
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID string, status types.SubscriptionStatus) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET status = $2, updated_at = $3
		WHERE stripe_subscription_id = $1 AND status <> 'cancelled'
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, stripeSubscriptionID, status, time.Now().UTC())
	if err != nil {
		return false, wrapQueryError(err, "subscription", map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
			"status":                 status,
		})
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return n > 0, nil
}

func (r *subscriptionRepository) Cancel(ctx context.Context, stripeSubscriptionID string, cancelledAt, endedAt time.Time) error {
	query := `
		UPDATE user_subscriptions
		SET
			status = 'cancelled',
			cancelled_at = COALESCE(cancelled_at, $2),
			ended_at = COALESCE(ended_at, $3),
			updated_at = $4
		WHERE stripe_subscription_id = $1
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, stripeSubscriptionID, cancelledAt, endedAt, time.Now().UTC())
	if err != nil {
		return wrapQueryError(err, "subscription", map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
		})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]any{"stripe_subscription_id": stripeSubscriptionID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) ResetUsage(ctx context.Context, stripeSubscriptionID string, periodStart, periodEnd time.Time) (bool, error) {
	query := `
		UPDATE user_subscriptions
		SET
			usage = '{}',
			current_period_start = $2,
			current_period_end = $3,
			usage_reset_period_start = $2,
			updated_at = $4
		WHERE stripe_subscription_id = $1
			AND (usage_reset_period_start IS NULL OR usage_reset_period_start < $2)
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, stripeSubscriptionID, periodStart, periodEnd, time.Now().UTC())
	if err != nil {
		return false, wrapQueryError(err, "subscription", map[string]any{
			"stripe_subscription_id": stripeSubscriptionID,
			"period_start":           periodStart,
		})
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return n > 0, nil
}
