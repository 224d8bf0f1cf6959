package config

import (
	"testing"

	"github.com/aiteamhq/billsync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, types.ModeLocal, cfg.Deployment.Mode)
	assert.Equal(t, types.ProfileSourcePostgres, cfg.Profiles.Source)
}

func TestValidateSupabaseRequiresCredentials(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Profiles.Source = types.ProfileSourceSupabase
	assert.Error(t, cfg.Validate())

	cfg.Supabase = SupabaseConfig{BaseURL: "https://project.supabase.co", ServiceKey: "service-key"}
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPlanPrice(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Plans.Prices = []PlanPriceConfig{
		{PriceID: "price_1", PlanID: "starter", BillingCycle: "weekly"},
	}
	assert.Error(t, cfg.Validate())
}

func TestPriceMap(t *testing.T) {
	plans := PlansConfig{Prices: []PlanPriceConfig{
		{PriceID: "price_starter_monthly", PlanID: "starter", BillingCycle: types.BillingCycleMonthly},
		{PriceID: "price_starter_yearly", PlanID: "starter", BillingCycle: types.BillingCycleYearly},
	}}

	m := plans.PriceMap()
	require.Len(t, m, 2)
	assert.Equal(t, types.BillingCycleYearly, m["price_starter_yearly"].BillingCycle)
	_, ok := m["price_unknown"]
	assert.False(t, ok)
}

func TestGetDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "postgres", SSLMode: "require"}
	assert.Equal(t, "user=u password=p dbname=postgres host=db port=5432 sslmode=require", c.GetDSN())
}
