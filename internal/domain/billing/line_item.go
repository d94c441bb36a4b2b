package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemType classifies a signed monetary component of an installment
type LineItemType string

const (
	LineItemTypeRent       LineItemType = "RENT"       // system-seeded, protected
	LineItemTypeExpenses   LineItemType = "EXPENSES"   // building expenses passed through
	LineItemTypeBreakage   LineItemType = "BREAKAGE"   // damage charges
	LineItemTypeServices   LineItemType = "SERVICES"   // utilities / services
	LineItemTypeLateFee    LineItemType = "LATE_FEE"   // punitive interest
	LineItemTypeAdjustment LineItemType = "ADJUSTMENT" // escalation or correction
	LineItemTypeDiscount   LineItemType = "DISCOUNT"   // stored negative
	LineItemTypeOther      LineItemType = "OTHER"
)

// IsValid checks if the line item type is valid
func (t LineItemType) IsValid() bool {
	switch t {
	case LineItemTypeRent, LineItemTypeExpenses, LineItemTypeBreakage,
		LineItemTypeServices, LineItemTypeLateFee, LineItemTypeAdjustment,
		LineItemTypeDiscount, LineItemTypeOther:
		return true
	}
	return false
}

// String returns the string representation of the line item type
func (t LineItemType) String() string {
	return string(t)
}

// LineItem is a signed-amount component contributing to an installment's
// total. It is a value object inside the Installment aggregate, stored as
// JSONB. Discount items carry a negative amount; every other type is
// strictly positive.
type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	Type      LineItemType    `json:"type"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsRent returns true for the system-seeded rent item
func (li *LineItem) IsRent() bool {
	return li.Type == LineItemTypeRent
}

// LineItems is a slice of LineItem implementing GORM Scanner/Valuer for JSONB
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Sum returns the exact sum of all item amounts
func (l LineItems) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// find returns the index of the item with the given id, or -1
func (l LineItems) find(id uuid.UUID) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// rentIndex returns the index of the seeded rent item, or -1
func (l LineItems) rentIndex() int {
	for i := range l {
		if l[i].Type == LineItemTypeRent {
			return i
		}
	}
	return -1
}
