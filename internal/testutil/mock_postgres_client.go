package testutil

import (
	"context"
	"sync"

	"github.com/aiteamhq/billsync/internal/postgres"
)

var _ postgres.Transactor = (*MockTransactor)(nil)

type txMarker struct{}

// MockTransactor runs fn directly. In-memory stores have no rollback, so
// tests assert on what fn wrote before failing.
type MockTransactor struct {
	mu    sync.Mutex
	count int
}

func NewMockTransactor() *MockTransactor {
	return &MockTransactor{}
}

// WithTx executes the given function within a transaction
func (m *MockTransactor) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	m.count++
	m.mu.Unlock()

	return fn(context.WithValue(ctx, txMarker{}, true))
}

// Count returns how many top level transactions were started
func (m *MockTransactor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// InTx reports whether ctx was handed out by WithTx
func InTx(ctx context.Context) bool {
	return ctx.Value(txMarker{}) != nil
}
