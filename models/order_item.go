package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PurchaseStatus is the per-item purchasing state. The zero value means
// the item is still pending; the backend contract persists the decided
// states as Arabic literals, mapped only in purchaseLiterals.
type PurchaseStatus string

const (
	PurchasePending      PurchaseStatus = "" // stored as NULL
	PurchasePurchased    PurchaseStatus = "purchased"
	PurchaseNotPurchased PurchaseStatus = "not_purchased"
)

var purchaseLiterals = map[PurchaseStatus]string{
	PurchasePurchased:    "تم الشراء",
	PurchaseNotPurchased: "لم يتم الشراء",
}

var purchaseFromLiteral = make(map[string]PurchaseStatus, len(purchaseLiterals))

func init() {
	for status, literal := range purchaseLiterals {
		purchaseFromLiteral[literal] = status
	}
}

// Literal returns the external string literal, or "" while pending.
func (p PurchaseStatus) Literal() string {
	return purchaseLiterals[p]
}

// IsValid reports whether the value is pending or one of the decided states.
func (p PurchaseStatus) IsValid() bool {
	if p == PurchasePending {
		return true
	}
	_, ok := purchaseLiterals[p]
	return ok
}

// ParsePurchaseStatus resolves a literal or internal value; the empty
// string resolves to PurchasePending.
func ParsePurchaseStatus(value string) (PurchaseStatus, bool) {
	if value == "" {
		return PurchasePending, true
	}
	if status, ok := purchaseFromLiteral[value]; ok {
		return status, true
	}
	if status := PurchaseStatus(value); status.IsValid() {
		return status, true
	}
	return PurchasePending, false
}

// Value persists the decided states as their backend literals; pending
// persists as NULL.
func (p PurchaseStatus) Value() (driver.Value, error) {
	if p == PurchasePending {
		return nil, nil
	}
	literal, ok := purchaseLiterals[p]
	if !ok {
		return nil, fmt.Errorf("unknown purchase status %q", string(p))
	}
	return literal, nil
}

// Scan reads NULL or a backend literal back into the internal enum.
func (p *PurchaseStatus) Scan(value interface{}) error {
	if value == nil {
		*p = PurchasePending
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan purchase status from %T", value)
	}

	status, ok := ParsePurchaseStatus(raw)
	if !ok {
		return fmt.Errorf("unknown purchase status literal %q", raw)
	}
	*p = status
	return nil
}

// MarshalJSON serves null while pending, otherwise the backend literal.
func (p PurchaseStatus) MarshalJSON() ([]byte, error) {
	if p == PurchasePending {
		return json.Marshal(nil)
	}
	literal, ok := purchaseLiterals[p]
	if !ok {
		return nil, fmt.Errorf("unknown purchase status %q", string(p))
	}
	return json.Marshal(literal)
}

// UnmarshalJSON accepts null, a backend literal, or the internal value.
func (p *PurchaseStatus) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*p = PurchasePending
		return nil
	}

	status, ok := ParsePurchaseStatus(*raw)
	if !ok {
		return fmt.Errorf("unknown purchase status %q", *raw)
	}
	*p = status
	return nil
}

// OrderItem represents a single line item within a purchase order
type OrderItem struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OrderID         uint           `gorm:"not null;index" json:"order_id"` // foreign key to orders table
	Order           Order          `gorm:"foreignKey:OrderID" json:"-"`    // don't include full order in JSON
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	PurchaseStatus  PurchaseStatus `json:"purchase_status"`   // NULL while pending
	ApprovedByAdmin *bool          `json:"approved_by_admin"` // nil until the admin decides
	ItemNotes       string         `gorm:"type:text" json:"item_notes"`
	Attachments     []Attachment   `gorm:"foreignKey:OrderItemID" json:"attachments"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
