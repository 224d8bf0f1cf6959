package stripe_test

import (
	"bytes"
	"testing"
	"time"

	ierr "github.com/aiteamhq/billsync/internal/errors"
	"github.com/aiteamhq/billsync/internal/integration/stripe"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/aiteamhq/billsync/internal/testutil"
	"github.com/aiteamhq/billsync/internal/types"
	"github.com/aiteamhq/billsync/internal/validator"
	"github.com/stretchr/testify/suite"
)

type VerifierSuite struct {
	suite.Suite
	verifier *stripe.Verifier
	start    time.Time
	end      time.Time
}

func TestVerifier(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupSuite() {
	validator.NewValidator()
	s.verifier = stripe.NewVerifier(testutil.TestConfig(), logger.NewNopLogger())
	s.start = time.Now().UTC().Truncate(time.Second)
	s.end = s.start.AddDate(0, 1, 0)
}

func (s *VerifierSuite) TestSubscriptionEvent() {
	body, sig := testutil.SignedStripeEvent("evt_sub", types.StripeEventSubscriptionUpdated,
		testutil.SubscriptionObject("sub_1", "cus_1", "past_due", "price_starter_monthly", "month", s.start, s.end))

	event, err := s.verifier.Verify(body, sig)
	s.Require().NoError(err)

	s.Equal("evt_sub", event.ID)
	s.Equal(types.StripeEventSubscriptionUpdated, event.Type)
	s.False(event.Created.IsZero())

	payload, ok := event.Payload.(*stripe.SubscriptionPayload)
	s.Require().True(ok, "payload is %T", event.Payload)
	s.Equal("sub_1", payload.ID)
	s.Equal("cus_1", payload.Customer.String())
	s.Equal("past_due", payload.Status)
	s.Equal("price_starter_monthly", payload.PriceID())
	s.Equal("month", payload.Interval())
	s.True(s.start.Equal(payload.PeriodStart()))
	s.True(s.end.Equal(payload.PeriodEnd()))
}

func (s *VerifierSuite) TestInvoiceEvent() {
	body, sig := testutil.SignedStripeEvent("evt_inv", types.StripeEventInvoicePaymentSucceeded,
		testutil.InvoiceObject("in_1", "sub_1", types.BillingReasonSubscriptionCycle, s.start, s.end, 7900, "usd"))

	event, err := s.verifier.Verify(body, sig)
	s.Require().NoError(err)

	payload, ok := event.Payload.(*stripe.InvoicePayload)
	s.Require().True(ok)
	s.Equal("in_1", payload.ID)
	s.Equal("sub_1", payload.SubscriptionID())
	s.True(payload.IsRenewal())
	s.Equal(int64(7900), payload.Total)
	s.Require().Len(payload.Lines.Data, 1)
}

func (s *VerifierSuite) TestCustomerEvent() {
	body, sig := testutil.SignedStripeEvent("evt_cus", types.StripeEventCustomerCreated,
		testutil.CustomerObject("cus_1", "a@example.com", "A", "+1555"))

	event, err := s.verifier.Verify(body, sig)
	s.Require().NoError(err)

	payload, ok := event.Payload.(*stripe.CustomerPayload)
	s.Require().True(ok)
	s.Equal("a@example.com", payload.Email)
}

func (s *VerifierSuite) TestUnhandledEvent() {
	body, sig := testutil.SignedStripeEvent("evt_other", types.StripeEventType("payment_intent.created"),
		map[string]any{"id": "pi_1", "object": "payment_intent"})

	event, err := s.verifier.Verify(body, sig)
	s.Require().NoError(err)

	payload, ok := event.Payload.(*stripe.Unhandled)
	s.Require().True(ok)
	s.Equal("payment_intent.created", payload.Type)
}

func (s *VerifierSuite) TestSignatureFailures() {
	body, sig := testutil.SignedStripeEvent("evt_sig", types.StripeEventCustomerUpdated,
		testutil.CustomerObject("cus_1", "a@example.com", "A", ""))

	testCases := []struct {
		name      string
		body      []byte
		signature string
	}{
		{name: "missing_header", body: body, signature: ""},
		{name: "tampered_body", body: bytes.Replace(body, []byte("a@example.com"), []byte("b@example.com"), 1), signature: sig},
		{name: "other_secret", body: body, signature: testutil.SignPayload(body, "whsec_nope")},
		{name: "not_a_signature", body: body, signature: "garbage"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			event, err := s.verifier.Verify(tc.body, tc.signature)
			s.Nil(event)
			s.Error(err)
			s.True(ierr.IsInvalidSignature(err), "got %v", err)
		})
	}
}

func (s *VerifierSuite) TestUnconfiguredSecretRejectsEverything() {
	cfg := testutil.TestConfig()
	cfg.Stripe.WebhookSecret = ""
	verifier := stripe.NewVerifier(cfg, logger.NewNopLogger())

	body, sig := testutil.SignedStripeEvent("evt_x", types.StripeEventCustomerUpdated,
		testutil.CustomerObject("cus_1", "a@example.com", "A", ""))

	_, err := verifier.Verify(body, sig)
	s.True(ierr.IsInvalidSignature(err))
}

func (s *VerifierSuite) TestMalformedPayloads() {
	testCases := []struct {
		name      string
		eventType types.StripeEventType
		object    map[string]any
	}{
		{
			name:      "subscription_without_items",
			eventType: types.StripeEventSubscriptionCreated,
			object:    map[string]any{"id": "sub_1", "customer": "cus_1", "status": "active"},
		},
		{
			name:      "subscription_without_customer",
			eventType: types.StripeEventSubscriptionUpdated,
			object:    testutil.SubscriptionObject("sub_1", "", "active", "price_starter_monthly", "month", s.start, s.end),
		},
		{
			name:      "invoice_without_currency",
			eventType: types.StripeEventInvoicePaymentSucceeded,
			object:    map[string]any{"id": "in_1", "subscription": "sub_1"},
		},
		{
			name:      "renewal_invoice_without_period",
			eventType: types.StripeEventInvoicePaymentSucceeded,
			object: map[string]any{
				"id":             "in_1",
				"currency":       "usd",
				"subscription":   "sub_1",
				"billing_reason": types.BillingReasonSubscriptionCycle,
			},
		},
		{
			name:      "customer_with_wrong_types",
			eventType: types.StripeEventCustomerUpdated,
			object:    map[string]any{"id": 42},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			body, sig := testutil.SignedStripeEvent("evt_bad", tc.eventType, tc.object)

			event, err := s.verifier.Verify(body, sig)
			s.Nil(event)
			s.Error(err)
			s.True(ierr.IsValidation(err), "got %v", err)
			s.False(ierr.IsInvalidSignature(err))
		})
	}
}

func (s *VerifierSuite) TestSubscriptionDeletedNeedsNoPrice() {
	body, sig := testutil.SignedStripeEvent("evt_del", types.StripeEventSubscriptionDeleted,
		map[string]any{"id": "sub_1", "customer": "cus_1", "status": "canceled"})

	event, err := s.verifier.Verify(body, sig)
	s.Require().NoError(err)
	s.IsType(&stripe.SubscriptionPayload{}, event.Payload)
}
