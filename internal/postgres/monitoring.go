package postgres

import (
	"context"

	sentrygo "github.com/getsentry/sentry-go"
)

// startTxSpan opens a sentry span around a top level transaction. Nested
// savepoints reuse the outer span.
func (db *DB) startTxSpan(ctx context.Context) (*sentrygo.Span, context.Context) {
	if db.sentry == nil {
		return nil, ctx
	}
	if _, ok := GetTx(ctx); ok {
		return nil, ctx
	}
	return db.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
	})
}
