package supabase

import (
	"context"
	"strings"
	"time"

	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/domain/profile"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/nedpals/supabase-go"
)

const profilesTable = "profiles"

// profileRepository reads profiles through the Supabase REST API using the
// service role key. It is used when the service has no direct database access
// to the auth schema owned tables.
type profileRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewProfileRepository(cfg *config.Configuration, logger *logger.Logger) profile.Repository {
	client := supabase.CreateClient(cfg.Supabase.BaseURL, cfg.Supabase.ServiceKey)
	return &profileRepository{client: client, logger: logger}
}

type profileRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

type contactUpdate struct {
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var rows []profileRow
	err := r.client.DB.From(profilesTable).
		Select("id", "email", "full_name", "phone", "updated_at").
		Eq("email", email).
		Execute(&rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessage("supabase profile lookup failed").
			WithReportableDetails(map[string]any{"email": email}).
			Mark(ierr.ErrHTTPClient)
	}

	if len(rows) == 0 {
		return nil, ierr.NewError("profile not found").
			WithHint("Profile not found").
			WithReportableDetails(map[string]any{"email": email}).
			Mark(ierr.ErrNotFound)
	}

	row := rows[0]
	return &profile.Profile{
		ID:        row.ID,
		Email:     row.Email,
		FullName:  row.FullName,
		Phone:     row.Phone,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *profileRepository) UpdateContact(ctx context.Context, p *profile.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	update := contactUpdate{
		FullName:  nullable(p.FullName),
		Phone:     nullable(p.Phone),
		UpdatedAt: p.UpdatedAt,
	}

	var rows []profileRow
	err := r.client.DB.From(profilesTable).
		Update(update).
		Eq("id", p.ID).
		Execute(&rows)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("supabase profile update failed").
			WithReportableDetails(map[string]any{"profile_id": p.ID}).
			Mark(ierr.ErrHTTPClient)
	}

	r.logger.Debugw("updated profile contact via supabase",
		"profile_id", p.ID,
		"rows", len(rows),
	)
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
