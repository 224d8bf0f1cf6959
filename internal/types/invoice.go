package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// InvoiceStatus mirrors Stripe's invoice status vocabulary
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusUncollectible InvoiceStatus = "uncollectible"
	InvoiceStatusVoid          InvoiceStatus = "void"
)

// InvoiceLineItem is one line of a mirrored invoice
type InvoiceLineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    int64           `json:"quantity"`
	PriceID     string          `json:"price_id,omitempty"`
}

// InvoiceLineItems is stored as a jsonb array
type InvoiceLineItems []InvoiceLineItem

// Value implements driver.Valuer. A nil slice is stored as [].
func (l InvoiceLineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]InvoiceLineItem(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *InvoiceLineItems) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*l = InvoiceLineItems{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for invoice line items: %T", value)
	}
	var out []InvoiceLineItem
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
