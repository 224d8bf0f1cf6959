package cache

import (
	"context"
	"testing"
	"time"

	"github.com/aiteamhq/billsync/internal/config"
	"github.com/aiteamhq/billsync/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "plan_price:v1:price_starter_monthly", GenerateKey(PrefixPlanPrice, "price_starter_monthly"))
	assert.Equal(t, "plan_price:v1:a:2", GenerateKey(PrefixPlanPrice, "a", 2))
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.GetDefaultConfig()

	t.Run("stores and returns values", func(t *testing.T) {
		c := NewInMemoryCache(cfg, logger.NewNopLogger())
		c.Set(ctx, "k", "v", 0)

		got, ok := c.Get(ctx, "k")
		assert.True(t, ok)
		assert.Equal(t, "v", got)

		c.Delete(ctx, "k")
		_, ok = c.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("expires entries", func(t *testing.T) {
		c := NewInMemoryCache(cfg, logger.NewNopLogger())
		c.Set(ctx, "k", "v", time.Millisecond)
		time.Sleep(5 * time.Millisecond)

		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
	})

	t.Run("disabled cache never hits", func(t *testing.T) {
		disabled := *cfg
		disabled.Cache.Enabled = false
		c := NewInMemoryCache(&disabled, logger.NewNopLogger())
		c.Set(ctx, "k", "v", 0)

		_, ok := c.Get(ctx, "k")
		assert.False(t, ok)
	})
}
