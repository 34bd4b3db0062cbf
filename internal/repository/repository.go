package repository

import "gorm.io/gorm"

// Repository aggregates every data access interface.
type Repository struct {
	Registration    RegistrationRepository
	TimeSlot        TimeSlotRepository
	StudentSchedule StudentScheduleRepository
	Payment         PaymentRepository
	AdminUser       AdminUserRepository
}

// NewRepository wires every repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Registration:    NewRegistrationRepo(db),
		TimeSlot:        NewTimeSlotRepo(db),
		StudentSchedule: NewStudentScheduleRepo(db),
		Payment:         NewPaymentRepo(db),
		AdminUser:       NewAdminUserRepo(db),
	}
}
