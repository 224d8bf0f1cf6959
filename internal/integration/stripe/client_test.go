package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/testutil"
	"github.com/aiteamhq/billsync/internal/validator"
	"github.com/stretchr/testify/suite"
)

// ClientSuite runs the Stripe client against a local stand-in for api.stripe.com
type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	gateway stripe.Gateway
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

const notFoundBody = `{"error":{"code":"resource_missing","message":"No such object","type":"invalid_request_error"}}`

func (s *ClientSuite) SetupSuite() {
	validator.NewValidator()

	mux := http.NewServeMux()
	respond := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Request-Id", "req_test")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}

	mux.HandleFunc("/v1/customers/cus_alice", respond(http.StatusOK,
		`{"id":"cus_alice","object":"customer","email":"alice@example.com","name":"Alice","phone":"+15550100"}`))
	mux.HandleFunc("/v1/customers/cus_deleted", respond(http.StatusOK,
		`{"id":"cus_deleted","object":"customer","deleted":true}`))
	mux.HandleFunc("/v1/customers/cus_missing", respond(http.StatusNotFound, notFoundBody))
	mux.HandleFunc("/v1/customers/cus_broken", respond(http.StatusBadRequest,
		`{"error":{"code":"parameter_invalid_empty","message":"bad","type":"invalid_request_error"}}`))
	mux.HandleFunc("/v1/subscriptions/sub_1", respond(http.StatusOK, `{
		"id": "sub_1",
		"object": "subscription",
		"customer": "cus_alice",
		"status": "active",
		"items": {"object": "list", "data": [{
			"id": "si_1",
			"object": "subscription_item",
			"price": {"id": "price_professional_monthly", "object": "price", "recurring": {"interval": "month"}},
			"current_period_start": 1700000000,
			"current_period_end": 1702592000
		}]}
	}`))
	mux.HandleFunc("/v1/subscriptions/sub_missing", respond(http.StatusNotFound, notFoundBody))

	s.server = httptest.NewServer(mux)

	cfg := testutil.TestConfig()
	cfg.Stripe.SecretKey = "sk_test_123"
	cfg.Stripe.MaxNetworkRetries = 0
	cfg.Stripe.APIBaseURL = s.server.URL

	s.gateway = stripe.NewGateway(stripe.NewClient(cfg, logger.NewNopLogger()))
}

func (s *ClientSuite) TearDownSuite() {
	s.server.Close()
}

func (s *ClientSuite) TestGetCustomer() {
	c, err := s.gateway.GetCustomer(context.Background(), "cus_alice")
	s.Require().NoError(err)
	s.Equal("alice@example.com", c.Email)
	s.Equal("Alice", c.Name)
	s.Equal("+15550100", c.Phone)
	s.False(c.Deleted)
}

func (s *ClientSuite) TestGetDeletedCustomer() {
	c, err := s.gateway.GetCustomer(context.Background(), "cus_deleted")
	s.Require().NoError(err)
	s.True(c.Deleted)
	s.Empty(c.Email)
}

func (s *ClientSuite) TestGetCustomerErrors() {
	_, err := s.gateway.GetCustomer(context.Background(), "cus_missing")
	s.True(ierr.IsNotFound(err), "got %v", err)

	_, err = s.gateway.GetCustomer(context.Background(), "cus_broken")
	s.Error(err)
	s.False(ierr.IsNotFound(err))
	s.True(ierr.IsHTTPClient(err))
}

func (s *ClientSuite) TestGetSubscription() {
	sub, err := s.gateway.GetSubscription(context.Background(), "sub_1")
	s.Require().NoError(err)
	s.Equal("sub_1", sub.ID)
	s.Equal("cus_alice", sub.Customer.String())
	s.Equal("price_professional_monthly", sub.PriceID())
	s.Equal("month", sub.Interval())
	s.Equal(int64(1700000000), sub.PeriodStart().Unix())

	_, err = s.gateway.GetSubscription(context.Background(), "sub_missing")
	s.True(ierr.IsNotFound(err))
}
