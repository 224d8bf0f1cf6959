package repository

import (
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/domain/invoice"
	"github.com/aiteamhq/billsync/internal/domain/plan"
	"github.com/aiteamhq/billsync/internal/domain/profile"
	"github.com/aiteamhq/billsync/internal/domain/subscription"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/postgres"
	postgresRepo "github.com/aiteamhq/billsync/internal/repository/postgres"
	supabaseRepo "github.com/aiteamhq/billsync/internal/repository/supabase"
	"github.com/aiteamhq/billsync/internal/types"
)

// NewProfileRepository picks the profile backend from profiles.source
func NewProfileRepository(cfg *config.Configuration, db *postgres.DB, logger *logger.Logger) profile.Repository {
	if cfg.Profiles.Source == types.ProfileSourceSupabase {
		return supabaseRepo.NewProfileRepository(cfg, logger)
	}
	return postgresRepo.NewProfileRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPlanPriceRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanPriceRepository(db, logger)
}
