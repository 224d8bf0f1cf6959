package testutil

import (
	"encoding/json"
	"time"

	"github.com/aiteamhq/billsync/internal/types"
	"github.com/stripe/stripe-go/v82/webhook"
)

// TestWebhookSecret is the signing secret configured in test suites
const TestWebhookSecret = "whsec_test_secret"

// StripeEventJSON wraps object into a Stripe event envelope
func StripeEventJSON(id string, eventType types.StripeEventType, object any) []byte {
	body, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        string(eventType),
		"created":     time.Now().Unix(),
		"livemode":    false,
		"api_version": "2025-06-30.basil",
		"data": map[string]any{
			"object": object,
		},
	})
	if err != nil {
		panic(err)
	}
	return body
}

// SignPayload returns a Stripe-Signature header for payload signed now
func SignPayload(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

// SignedStripeEvent builds an event envelope and signs it with TestWebhookSecret
func SignedStripeEvent(id string, eventType types.StripeEventType, object any) ([]byte, string) {
	body := StripeEventJSON(id, eventType, object)
	return body, SignPayload(body, TestWebhookSecret)
}

// SubscriptionObject is a subscription in the current API shape, with the
// period carried on the item
func SubscriptionObject(id, customerID, status, priceID, interval string, start, end time.Time) map[string]any {
	return map[string]any{
		"id":          id,
		"object":      "subscription",
		"customer":    customerID,
		"status":      status,
		"canceled_at": nil,
		"ended_at":    nil,
		"items": map[string]any{
			"object": "list",
			"data": []any{
				map[string]any{
					"id":     "si_" + id,
					"object": "subscription_item",
					"price": map[string]any{
						"id":     priceID,
						"object": "price",
						"recurring": map[string]any{
							"interval": interval,
						},
					},
					"current_period_start": start.Unix(),
					"current_period_end":   end.Unix(),
				},
			},
		},
	}
}

// InvoiceObject is a paid subscription invoice in the legacy shape with a
// top level subscription reference
func InvoiceObject(id, subscriptionID, billingReason string, start, end time.Time, total int64, currency string) map[string]any {
	return map[string]any{
		"id":             id,
		"object":         "invoice",
		"number":         "INV-" + id,
		"customer":       "cus_fixture",
		"subscription":   subscriptionID,
		"status":         "paid",
		"currency":       currency,
		"billing_reason": billingReason,
		"subtotal":       total,
		"total":          total,
		"tax":            0,
		"period_start":   start.Unix(),
		"period_end":     end.Unix(),
		"created":        start.Unix(),
		"status_transitions": map[string]any{
			"paid_at": start.Unix(),
		},
		"invoice_pdf": "https://pay.stripe.com/invoice/" + id + "/pdf",
		"lines": map[string]any{
			"object": "list",
			"data": []any{
				map[string]any{
					"description": "1 × Professional (at $79.00 / month)",
					"amount":      total,
					"quantity":    1,
					"price":       map[string]any{"id": "price_professional_monthly"},
				},
			},
		},
	}
}

// CustomerObject is a Stripe customer
func CustomerObject(id, email, name, phone string) map[string]any {
	return map[string]any{
		"id":     id,
		"object": "customer",
		"email":  email,
		"name":   name,
		"phone":  phone,
	}
}

// DecodeObject round-trips a fixture object into a payload type the way the
// verifier decodes data.object
func DecodeObject[T any](object map[string]any) *T {
	body, err := json.Marshal(object)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		panic(err)
	}
	return &out
}
