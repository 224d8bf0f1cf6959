package testutil

import (
	"context"
	"time"

	"github.com/aiteamhq/billsync/internal/cache"
	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/aiteamhq/billsync/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the in-memory repositories for testing
type Stores struct {
	ProfileRepo      *InMemoryProfileStore
	SubscriptionRepo *InMemorySubscriptionStore
	InvoiceRepo      *InMemoryInvoiceStore
	PlanPriceRepo    *InMemoryPlanPriceStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	gateway   *MockStripeGateway
	publisher *InMemoryEventPublisher
	db        *MockTransactor
	cache     cache.Cache
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// TestConfig is the configuration every suite starts from
func TestConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError
	cfg.Stripe.WebhookSecret = TestWebhookSecret
	cfg.Plans.Prices = []config.PlanPriceConfig{
		{PriceID: "price_starter_monthly", PlanID: "starter", BillingCycle: types.BillingCycleMonthly},
		{PriceID: "price_starter_yearly", PlanID: "starter", BillingCycle: types.BillingCycleYearly},
		{PriceID: "price_professional_monthly", PlanID: "professional", BillingCycle: types.BillingCycleMonthly},
		{PriceID: "price_professional_yearly", PlanID: "professional", BillingCycle: types.BillingCycleYearly},
		{PriceID: "price_enterprise_monthly", PlanID: "enterprise", BillingCycle: types.BillingCycleMonthly},
		{PriceID: "price_enterprise_yearly", PlanID: "enterprise", BillingCycle: types.BillingCycleYearly},
	}
	return cfg
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.config = TestConfig()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.stores = Stores{
		ProfileRepo:      NewInMemoryProfileStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PlanPriceRepo:    NewInMemoryPlanPriceStore(),
	}
	s.gateway = NewMockStripeGateway()
	s.publisher = NewInMemoryEventPublisher()
	s.db = NewMockTransactor()
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.now = time.Now().UTC().Truncate(time.Second)
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake Stripe API
func (s *BaseServiceTestSuite) GetGateway() *MockStripeGateway {
	return s.gateway
}

// GetPublisher returns the recording event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetDB returns the test transactor
func (s *BaseServiceTestSuite) GetDB() *MockTransactor {
	return s.db
}

// GetCache returns a fresh cache for the current test
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
