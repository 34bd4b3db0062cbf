package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TimeSlot is a recurring weekly session (table program_time_slots).
type TimeSlot struct {
	ID          string                      `gorm:"type:uuid;primaryKey"        json:"id"`
	Name        string                      `gorm:"type:varchar(100);not null"  json:"name"`
	StartTime   string                      `gorm:"type:varchar(5);not null"    json:"startTime"` // HH:MM
	EndTime     string                      `gorm:"type:varchar(5);not null"    json:"endTime"`
	Days        datatypes.JSONSlice[string] `gorm:"not null"                   json:"days"`
	MaxCapacity int                         `gorm:"not null"                    json:"maxCapacity"`
	Description string                      `gorm:"type:text"                   json:"description,omitempty"`
	Timestamps
}

func (TimeSlot) TableName() string { return "program_time_slots" }

func (t *TimeSlot) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// HasDay reports whether the slot runs on day.
func (t *TimeSlot) HasDay(day string) bool {
	for _, d := range t.Days {
		if d == day {
			return true
		}
	}
	return false
}
