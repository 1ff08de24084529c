package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the internal workflow state of an order. The upstream
// backend contract persists and serves these as fixed Arabic literals;
// statusLiterals below is the only place that mapping exists.
type OrderStatus string

const (
	StatusOrderCreated         OrderStatus = "order_created"
	StatusEngineeringReviewed  OrderStatus = "engineering_reviewed"
	StatusUnderAdminReview     OrderStatus = "under_admin_review"
	StatusOwnerApproved        OrderStatus = "owner_approved"
	StatusOwnerRejected        OrderStatus = "owner_rejected"
	StatusPurchasingInProgress OrderStatus = "purchasing_in_progress"
	StatusOrderClosed          OrderStatus = "order_closed"
)

// statusLiterals is the single source of truth for the literal status
// strings the backend contract is defined in terms of.
var statusLiterals = map[OrderStatus]string{
	StatusOrderCreated:         "تم اجراء الطلب",
	StatusEngineeringReviewed:  "تمت المراجعة من قسم الهندسة",
	StatusUnderAdminReview:     "قيد مراجعة الإدارة",
	StatusOwnerApproved:        "تمت الموافقة من المالك",
	StatusOwnerRejected:        "تم الرفض من المالك",
	StatusPurchasingInProgress: "جاري الشراء",
	StatusOrderClosed:          "تم اغلاق الطلب",
}

var statusFromLiteral = make(map[string]OrderStatus, len(statusLiterals))

func init() {
	for status, literal := range statusLiterals {
		statusFromLiteral[literal] = status
	}
}

// AllOrderStatuses lists every workflow state, in workflow order.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusOrderCreated,
		StatusEngineeringReviewed,
		StatusUnderAdminReview,
		StatusOwnerApproved,
		StatusOwnerRejected,
		StatusPurchasingInProgress,
		StatusOrderClosed,
	}
}

// Literal returns the external string literal for the status.
func (s OrderStatus) Literal() string {
	return statusLiterals[s]
}

// IsValid reports whether the status is one of the seven workflow states.
func (s OrderStatus) IsValid() bool {
	_, ok := statusLiterals[s]
	return ok
}

// IsTerminal reports whether no further transitions may leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusOwnerRejected || s == StatusOrderClosed
}

// ParseOrderStatus resolves either the external literal or the internal
// enum value to an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	if status, ok := statusFromLiteral[value]; ok {
		return status, true
	}
	if OrderStatus(value).IsValid() {
		return OrderStatus(value), true
	}
	return "", false
}

// Value persists the status as its backend literal.
func (s OrderStatus) Value() (driver.Value, error) {
	literal, ok := statusLiterals[s]
	if !ok {
		return nil, fmt.Errorf("unknown order status %q", string(s))
	}
	return literal, nil
}

// Scan reads the backend literal back into the internal enum.
func (s *OrderStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan order status from %T", value)
	}

	status, ok := ParseOrderStatus(raw)
	if !ok {
		return fmt.Errorf("unknown order status literal %q", raw)
	}
	*s = status
	return nil
}

// MarshalJSON serves the status as its backend literal.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	literal, ok := statusLiterals[s]
	if !ok {
		return nil, fmt.Errorf("unknown order status %q", string(s))
	}
	return json.Marshal(literal)
}

// UnmarshalJSON accepts either the backend literal or the internal value.
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	status, ok := ParseOrderStatus(raw)
	if !ok {
		return fmt.Errorf("unknown order status %q", raw)
	}
	*s = status
	return nil
}

// Order represents a purchase order moving through the approval workflow
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	OrderNotes      string         `gorm:"type:text" json:"order_notes"`
	Status          OrderStatus    `gorm:"not null" json:"status"`
	AdminChecked    *bool          `json:"admin_checked"`               // true once every item has an admin decision
	RejectionReason *string        `json:"rejection_reason"`            // set when transitioning to OwnerRejected
	PurchasingNotes *string        `json:"purchasing_notes"`            // optional, set when closing the order
	CreatedByID     uint           `gorm:"not null;index" json:"created_by_id"`
	CreatedBy       User           `gorm:"foreignKey:CreatedByID" json:"created_by"`
	UpdatedByID     *uint          `gorm:"index" json:"updated_by_id"`
	UpdatedBy       *User          `gorm:"foreignKey:UpdatedByID" json:"updated_by,omitempty"`
	Items           []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}
