package model

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps audit columns embedded by mutable models.
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// ensureID fills an empty primary key with a random UUID. IDs are generated
// in the application so the same code runs against PostgreSQL and SQLite.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All returns every persisted model, in dependency order, for AutoMigrate and
// the schema check.
func All() []interface{} {
	return []interface{}{
		&Registration{},
		&TimeSlot{},
		&StudentSchedule{},
		&StudentPayment{},
		&AdminUser{},
		&UserRole{},
	}
}
