package types

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageCountersEmptyValue(t *testing.T) {
	v, err := UsageCounters{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
	assert.True(t, UsageCounters{}.IsEmpty())
}

func TestUsageCountersScan(t *testing.T) {
	var u UsageCounters
	require.NoError(t, u.Scan([]byte(`{"messages_sent":12,"tokens_used":3400,"cost":"1.25"}`)))
	assert.Equal(t, int64(12), u.MessagesSent)
	assert.Equal(t, int64(3400), u.TokensUsed)
	assert.True(t, decimal.RequireFromString("1.25").Equal(*u.Cost))
	assert.False(t, u.IsEmpty())

	require.NoError(t, u.Scan(nil))
	assert.True(t, u.IsEmpty())

	assert.Error(t, u.Scan(42))
}

func TestUsageCountersZeroCostIsEmpty(t *testing.T) {
	u := UsageCounters{Cost: lo.ToPtr(decimal.Zero)}
	assert.True(t, u.IsEmpty())
}

func TestFromMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		currency string
		expected string
	}{
		{name: "usd cents", amount: 7900, currency: "usd", expected: "79.00"},
		{name: "upper case currency", amount: 1999, currency: "EUR", expected: "19.99"},
		{name: "zero decimal currency", amount: 500, currency: "jpy", expected: "500.00"},
		{name: "zero", amount: 0, currency: "usd", expected: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromMinorUnits(tt.amount, tt.currency).StringFixed(2))
		})
	}
}
