package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// UsageCounters is the per-period bag of metered consumption on a subscription.
// The zero value serialises to {}.
type UsageCounters struct {
	MessagesSent int64            `json:"messages_sent,omitempty"`
	TokensUsed   int64            `json:"tokens_used,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
}

// IsEmpty reports whether nothing has been metered in the bag
func (u UsageCounters) IsEmpty() bool {
	return u.MessagesSent == 0 && u.TokensUsed == 0 && (u.Cost == nil || u.Cost.IsZero())
}

// Value implements driver.Valuer for jsonb columns
func (u UsageCounters) Value() (driver.Value, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb columns
func (u *UsageCounters) Scan(value interface{}) error {
	if value == nil {
		*u = UsageCounters{}
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for usage counters: %T", value)
	}

	var out UsageCounters
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*u = out
	return nil
}
