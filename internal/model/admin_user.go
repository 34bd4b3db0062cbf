package model

import (
	"time"

	"gorm.io/gorm"
)

// RoleAdmin is the role required for every administrative operation.
const RoleAdmin = "admin"

// AdminUser is a dashboard account (table admin_users).
type AdminUser struct {
	ID           string `gorm:"type:uuid;primaryKey"              json:"id"`
	Email        string `gorm:"type:varchar(255);not null;unique" json:"email"`
	Name         string `gorm:"type:varchar(100);not null"        json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"        json:"-"`
	Timestamps

	Roles []UserRole `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
}

func (AdminUser) TableName() string { return "admin_users" }

func (u *AdminUser) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserRole grants a role to an admin user (table user_roles).
type UserRole struct {
	UserID    string    `gorm:"type:uuid;primaryKey"               json:"userId"`
	Role      string    `gorm:"type:varchar(30);primaryKey"        json:"role"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (UserRole) TableName() string { return "user_roles" }
