package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/aiteamhq/billsync/internal/api/v1"
	"github.com/aiteamhq/billsync/internal/domain/profile"
	"github.com/aiteamhq/billsync/internal/domain/subscription"
	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/integration/stripe/webhook"
	"github.com/aiteamhq/billsync/internal/sentry"
	"github.com/aiteamhq/billsync/internal/service"
	"github.com/aiteamhq/billsync/internal/testutil"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	s.BaseServiceTestSuite.SetupSuite()
	gin.SetMode(gin.TestMode)
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.router = s.buildRouter(s.params(), nil)

	s.GetGateway().AddCustomer(&stripe.Customer{ID: "cus_alice", Email: "alice@example.com"})
	s.GetStores().ProfileRepo.Add(&profile.Profile{ID: "user_1", Email: "alice@example.com"})
}

func (s *RouterSuite) params() service.ServiceParams {
	stores := s.GetStores()
	return service.NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		stores.ProfileRepo,
		stores.SubscriptionRepo,
		stores.InvoiceRepo,
		stores.PlanPriceRepo,
		s.GetCache(),
		s.GetGateway(),
		s.GetPublisher(),
	)
}

// buildRouter wires the full HTTP stack. billingSync overrides the
// synchronizer built from params when set.
func (s *RouterSuite) buildRouter(params service.ServiceParams, billingSync service.BillingSyncService) *gin.Engine {
	if billingSync == nil {
		billingSync = service.NewBillingSyncService(params, service.NewResolverService(params))
	}

	handler := webhook.NewHandler(billingSync, sentry.NewSentryService(s.GetConfig(), s.GetLogger()), s.GetLogger())
	verifier := stripe.NewVerifier(s.GetConfig(), s.GetLogger())

	return NewRouter(Handlers{
		Health:  v1.NewHealthHandler(s.GetLogger()),
		Webhook: v1.NewWebhookHandler(verifier, handler, s.GetLogger()),
	}, s.GetConfig(), s.GetLogger())
}

func (s *RouterSuite) post(router *gin.Engine, path string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(types.HeaderStripeSignature, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *RouterSuite) activeSubscriptionEvent(eventID string) ([]byte, string) {
	start := s.GetNow()
	return testutil.SignedStripeEvent(eventID, types.StripeEventSubscriptionCreated,
		testutil.SubscriptionObject("sub_1", "cus_alice", "active", "price_professional_monthly", "month", start, start.AddDate(0, 1, 0)))
}

func (s *RouterSuite) assertReceived(w *httptest.ResponseRecorder) {
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(true, s.decode(w)["received"])
}

func (s *RouterSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("ok", s.decode(w)["status"])
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(types.HeaderRequestID, "req_fixed")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal("req_fixed", w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestUnknownRoute() {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
	body := s.decode(w)
	s.Equal(false, body["success"])
}

func (s *RouterSuite) TestSubscriptionCreatedOnBothPaths() {
	for _, path := range []string{"/", "/webhooks/stripe"} {
		s.Run(path, func() {
			body, sig := s.activeSubscriptionEvent("evt_" + path)
			w := s.post(s.router, path, body, sig)

			s.assertReceived(w)
			sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(context.Background(), "sub_1")
			s.Require().NoError(err)
			s.Equal(types.SubscriptionStatusActive, sub.Status)
			s.Equal("user_1", sub.UserID)
		})
	}
	s.Equal(1, s.GetStores().SubscriptionRepo.Count())
}

func (s *RouterSuite) TestTamperedBodyIsRejected() {
	body, sig := s.activeSubscriptionEvent("evt_tampered")
	tampered := bytes.Replace(body, []byte(`"active"`), []byte(`"trialing"`), 1)
	s.Require().NotEqual(body, tampered)

	w := s.post(s.router, "/webhooks/stripe", tampered, sig)

	s.Equal(http.StatusBadRequest, w.Code)
	s.NotEmpty(s.decode(w)["error"])
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
	s.Equal(0, s.GetGateway().Calls("GetCustomer"))
	s.Empty(s.GetPublisher().Events())
}

func (s *RouterSuite) TestRejectedDeliveries() {
	body, sig := s.activeSubscriptionEvent("evt_bad")

	testCases := []struct {
		name      string
		body      []byte
		signature string
	}{
		{name: "missing_signature", body: body},
		{name: "empty_body", body: nil, signature: sig},
		{name: "wrong_secret", body: body, signature: testutil.SignPayload(body, "whsec_other")},
		{name: "garbage_signature", body: body, signature: "t=1,v1=deadbeef"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.post(s.router, "/", tc.body, tc.signature)

			s.Equal(http.StatusBadRequest, w.Code)
			s.Contains(s.decode(w), "error")
			s.Equal(0, s.GetStores().SubscriptionRepo.Count())
		})
	}
}

func (s *RouterSuite) TestMalformedPayloadIsRejected() {
	object := map[string]any{
		"id":       "sub_noitems",
		"customer": "cus_alice",
		"status":   "active",
	}
	body, sig := testutil.SignedStripeEvent("evt_malformed", types.StripeEventSubscriptionUpdated, object)

	w := s.post(s.router, "/", body, sig)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *RouterSuite) TestCustomerUpdatedWithoutProfileIsNoop() {
	body, sig := testutil.SignedStripeEvent("evt_cus", types.StripeEventCustomerUpdated,
		testutil.CustomerObject("cus_bob", "bob@example.com", "Bob", "+15550199"))

	w := s.post(s.router, "/", body, sig)

	s.assertReceived(w)
	s.Equal(1, s.GetStores().ProfileRepo.Count())
	p, err := s.GetStores().ProfileRepo.GetByEmail(context.Background(), "alice@example.com")
	s.Require().NoError(err)
	s.Empty(p.FullName)
}

func (s *RouterSuite) TestUnhandledEventTypeIsAcknowledged() {
	body, sig := testutil.SignedStripeEvent("evt_charge", types.StripeEventType("charge.succeeded"),
		map[string]any{"id": "ch_1", "object": "charge"})

	w := s.post(s.router, "/", body, sig)

	s.assertReceived(w)
	s.Empty(s.GetPublisher().Events())
}

func (s *RouterSuite) TestResolutionMissIsAcknowledged() {
	start := s.GetNow()
	body, sig := testutil.SignedStripeEvent("evt_unknown_price", types.StripeEventSubscriptionCreated,
		testutil.SubscriptionObject("sub_2", "cus_alice", "active", "price_mystery", "month", start, start.AddDate(0, 1, 0)))

	w := s.post(s.router, "/", body, sig)

	s.assertReceived(w)
	s.Equal(0, s.GetStores().SubscriptionRepo.Count())
}

func (s *RouterSuite) TestRenewalInvoiceScenario() {
	t0 := s.GetNow()
	t1 := t0.AddDate(0, 1, 0)
	s.GetStores().SubscriptionRepo.Add(&subscription.Subscription{
		ID:                   "subs_local",
		UserID:               "user_1",
		PlanID:               "professional",
		StripeSubscriptionID: "sub_123",
		StripeCustomerID:     "cus_alice",
		Status:               types.SubscriptionStatusActive,
		BillingCycle:         types.BillingCycleMonthly,
		CurrentPeriodStart:   t0.AddDate(0, -1, 0),
		CurrentPeriodEnd:     t0,
		Usage:                types.UsageCounters{MessagesSent: 10, TokensUsed: 500},
	})

	body, sig := testutil.SignedStripeEvent("evt_renewal", types.StripeEventInvoicePaymentSucceeded,
		testutil.InvoiceObject("in_123", "sub_123", types.BillingReasonSubscriptionCycle, t0, t1, 7900, "usd"))

	// redelivery is acknowledged and changes nothing further
	for i := 0; i < 2; i++ {
		w := s.post(s.router, "/webhooks/stripe", body, sig)
		s.assertReceived(w)
	}

	s.Equal(1, s.GetStores().InvoiceRepo.Count())
	inv, err := s.GetStores().InvoiceRepo.GetByStripeID(context.Background(), "in_123")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("79.00").Equal(inv.TotalAmount))
	s.Equal("subs_local", inv.SubscriptionID)

	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(context.Background(), "sub_123")
	s.Require().NoError(err)
	s.True(sub.Usage.IsEmpty())
	s.True(t0.Equal(sub.CurrentPeriodStart))
	s.True(t1.Equal(sub.CurrentPeriodEnd))
}

func (s *RouterSuite) TestPaymentFailedMarksPastDue() {
	t0 := s.GetNow()
	s.GetStores().SubscriptionRepo.Add(&subscription.Subscription{
		ID:                   "subs_local",
		UserID:               "user_1",
		StripeSubscriptionID: "sub_late",
		Status:               types.SubscriptionStatusActive,
	})

	body, sig := testutil.SignedStripeEvent("evt_failed", types.StripeEventInvoicePaymentFailed,
		testutil.InvoiceObject("in_late", "sub_late", types.BillingReasonSubscriptionCycle, t0, t0.AddDate(0, 1, 0), 7900, "usd"))

	w := s.post(s.router, "/", body, sig)

	s.assertReceived(w)
	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(context.Background(), "sub_late")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusPastDue, sub.Status)
}

func (s *RouterSuite) TestSubscriptionDeletedCancels() {
	s.GetStores().SubscriptionRepo.Add(&subscription.Subscription{
		ID:                   "subs_local",
		UserID:               "user_1",
		StripeSubscriptionID: "sub_bye",
		Status:               types.SubscriptionStatusActive,
	})

	object := testutil.SubscriptionObject("sub_bye", "cus_alice", "canceled", "price_professional_monthly", "month", s.GetNow(), s.GetNow().AddDate(0, 1, 0))
	object["canceled_at"] = s.GetNow().Unix()
	body, sig := testutil.SignedStripeEvent("evt_deleted", types.StripeEventSubscriptionDeleted, object)

	w := s.post(s.router, "/", body, sig)

	s.assertReceived(w)
	sub, err := s.GetStores().SubscriptionRepo.GetByStripeID(context.Background(), "sub_bye")
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, sub.Status)
	s.Require().NotNil(sub.CancelledAt)
	s.True(s.GetNow().Equal(*sub.CancelledAt))
}

func (s *RouterSuite) TestWriteFailureAnswers500() {
	params := s.params()
	params.SubRepo = &failingSubscriptionRepo{InMemorySubscriptionStore: s.GetStores().SubscriptionRepo}
	router := s.buildRouter(params, nil)

	body, sig := s.activeSubscriptionEvent("evt_dbdown")
	w := s.post(router, "/", body, sig)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Webhook handler failed", s.decode(w)["error"])
	s.Empty(s.GetPublisher().Events())
}

func (s *RouterSuite) TestStripeOutageAnswers500() {
	s.GetGateway().Err = ierr.NewError("stripe unavailable").Mark(ierr.ErrHTTPClient)

	body, sig := s.activeSubscriptionEvent("evt_stripe_down")
	w := s.post(s.router, "/", body, sig)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "stripe unavailable")
}

func (s *RouterSuite) TestPanicAnswers500() {
	router := s.buildRouter(s.params(), panickingBillingSync{})

	body, sig := s.activeSubscriptionEvent("evt_panic")
	w := s.post(router, "/", body, sig)

	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal("Webhook handler failed", s.decode(w)["error"])
	s.NotContains(w.Body.String(), "boom")
}

type failingSubscriptionRepo struct {
	*testutil.InMemorySubscriptionStore
}

func (r *failingSubscriptionRepo) Upsert(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	return nil, ierr.NewError("connection refused").
		WithHint("Failed to upsert subscription").
		Mark(ierr.ErrDatabase)
}

type panickingBillingSync struct {
	service.BillingSyncService
}

func (panickingBillingSync) SyncSubscription(ctx context.Context, payload *stripe.SubscriptionPayload) error {
	panic("boom")
}
