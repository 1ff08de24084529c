package models

import (
	"time"

	"gorm.io/gorm"
)

// DeviceToken is an FCM registration token for one of a user's devices.
// A user may hold several; push delivery is attempted per token.
type DeviceToken struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // foreign key to users table
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Token     string         `gorm:"uniqueIndex;not null" json:"token"`
	Platform  string         `json:"platform"` // "web", "android" or "ios"
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the DeviceToken model
func (DeviceToken) TableName() string {
	return "device_tokens"
}
