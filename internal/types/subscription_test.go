package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionStatusFromStripe(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SubscriptionStatus
	}{
		{name: "active", input: "active", expected: SubscriptionStatusActive},
		{name: "past_due", input: "past_due", expected: SubscriptionStatusPastDue},
		{name: "unpaid", input: "unpaid", expected: SubscriptionStatusUnpaid},
		{name: "canceled", input: "canceled", expected: SubscriptionStatusCancelled},
		{name: "incomplete", input: "incomplete", expected: SubscriptionStatusTrial},
		{name: "incomplete_expired", input: "incomplete_expired", expected: SubscriptionStatusCancelled},
		{name: "trialing", input: "trialing", expected: SubscriptionStatusTrial},
		{name: "paused is unknown", input: "paused", expected: SubscriptionStatusCancelled},
		{name: "empty", input: "", expected: SubscriptionStatusCancelled},
		{name: "case sensitive", input: "ACTIVE", expected: SubscriptionStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SubscriptionStatusFromStripe(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.NoError(t, got.Validate())
		})
	}
}

func TestSubscriptionStatusValidate(t *testing.T) {
	assert.NoError(t, SubscriptionStatusPastDue.Validate())
	assert.Error(t, SubscriptionStatus("canceled").Validate())
	assert.True(t, SubscriptionStatusCancelled.IsTerminal())
	assert.False(t, SubscriptionStatusPastDue.IsTerminal())
}

func TestBillingCycleFromInterval(t *testing.T) {
	cycle, ok := BillingCycleFromInterval("month")
	assert.True(t, ok)
	assert.Equal(t, BillingCycleMonthly, cycle)

	cycle, ok = BillingCycleFromInterval("year")
	assert.True(t, ok)
	assert.Equal(t, BillingCycleYearly, cycle)

	_, ok = BillingCycleFromInterval("week")
	assert.False(t, ok)

	assert.Error(t, BillingCycle("weekly").Validate())
}
