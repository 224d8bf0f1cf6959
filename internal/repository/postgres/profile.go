package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/aiteamhq/billsync/internal/domain/profile"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
)

type profileRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewProfileRepository(db *postgres.DB, logger *logger.Logger) profile.Repository {
	return &profileRepository{db: db, logger: logger}
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	query := `
		SELECT
			id,
			email,
			COALESCE(full_name, '') AS full_name,
			COALESCE(phone, '') AS phone,
			updated_at
		FROM profiles
		WHERE lower(email) = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var p profile.Profile
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, wrapQueryError(err, "profile", map[string]any{"email": email})
	}
	return &p, nil
}

func (r *profileRepository) UpdateContact(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles
		SET
			full_name = NULLIF(:full_name, ''),
			phone = NULLIF(:phone, ''),
			updated_at = :updated_at
		WHERE id = :id
	`

	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return wrapQueryError(err, "profile", map[string]any{"profile_id": p.ID})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("profile not found").
			WithHint("Profile not found").
			WithReportableDetails(map[string]any{"profile_id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
