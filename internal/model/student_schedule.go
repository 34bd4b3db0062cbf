package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentSchedule binds a registration to a time slot on one weekday (table student_schedules).
// There is no update path: re-assignment is delete + create.
type StudentSchedule struct {
	ID             string    `gorm:"type:uuid;primaryKey"                                        json:"id"`
	RegistrationID string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_schedule_unique,priority:1" json:"registrationId"`
	TimeSlotID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_unique,priority:2;index" json:"timeSlotId"`
	DayOfWeek      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_schedule_unique,priority:3" json:"dayOfWeek"`
	Notes          string    `gorm:"type:text"                                                   json:"notes,omitempty"`
	AssignedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                          json:"assignedAt"`

	Registration *Registration `gorm:"foreignKey:RegistrationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	TimeSlot     *TimeSlot     `gorm:"foreignKey:TimeSlotID;references:ID;constraint:OnDelete:CASCADE"     json:"-"`
}

func (StudentSchedule) TableName() string { return "student_schedules" }

func (s *StudentSchedule) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
