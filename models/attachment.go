package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment represents a file attached to an order item. The bytes live
// in S3; URL is a presigned link computed when the attachment is served.
type Attachment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderItemID uint           `gorm:"not null;index" json:"order_item_id"` // foreign key to order_items table
	OrderItem   OrderItem      `gorm:"foreignKey:OrderItemID" json:"-"`
	FileName    string         `gorm:"not null" json:"file_name"`
	ContentType string         `gorm:"not null" json:"content_type"`
	S3Key       string         `gorm:"not null" json:"s3_key"`
	URL         string         `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Attachment model
func (Attachment) TableName() string {
	return "attachments"
}
