package models

import (
	"time"

	"gorm.io/gorm"
)

// Role identifies which dashboard a user belongs to and which workflow
// actions they may take.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSubAdmin    Role = "subadmin"
	RoleEngineering Role = "engineering"
	RoleSite        Role = "site"
	RolePurchasing  Role = "purchasing"
)

// IsAdmin reports whether the role carries the full-access override.
// SubAdmin mirrors Admin everywhere in the workflow.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSubAdmin
}

// IsValidRole reports whether the given string is a known role.
func IsValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleSubAdmin, RoleEngineering, RoleSite, RolePurchasing:
		return true
	}
	return false
}

// User represents a dashboard user in one of the five roles
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role           `gorm:"not null;default:'site'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
