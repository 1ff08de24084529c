package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is one user's record of a status change on an order.
// Its lifecycle is independent of the order; Type carries the internal
// value of the status that triggered it.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // foreign key to users table
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Type      string         `gorm:"not null" json:"type"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
