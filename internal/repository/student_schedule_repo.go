package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"robolab-portal/internal/model"
	pkgerrors "robolab-portal/pkg/errors"
)

var (
	// ErrDuplicateAssignment the (registration, slot, day) triple already exists.
	ErrDuplicateAssignment = errors.New("assignment already exists")
	// ErrSlotFull the slot has reached max_capacity.
	ErrSlotFull = errors.New("time slot is full")
)

// ScheduleFilter narrows List; empty fields match everything.
type ScheduleFilter struct {
	TimeSlotID     string
	RegistrationID string
	DayOfWeek      string
}

// StudentScheduleRepository assignment data access
type StudentScheduleRepository interface {
	// Assign inserts s only if the triple is new and the slot has room, as one
	// conditional statement under a lock on the slot row.
	Assign(ctx context.Context, s *model.StudentSchedule) error
	GetByID(ctx context.Context, id string) (*model.StudentSchedule, error)
	List(ctx context.Context, f ScheduleFilter) ([]model.StudentSchedule, error)
	CountBySlot(ctx context.Context, slotID string) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type studentScheduleRepo struct {
	db *gorm.DB
}

func NewStudentScheduleRepo(db *gorm.DB) StudentScheduleRepository {
	return &studentScheduleRepo{db: db}
}

const assignSQLite = `INSERT INTO student_schedules (id, registration_id, time_slot_id, day_of_week, notes, assigned_at)
SELECT ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (
    SELECT 1 FROM student_schedules WHERE registration_id = ? AND time_slot_id = ? AND day_of_week = ?
)
AND (SELECT COUNT(*) FROM student_schedules WHERE time_slot_id = ?) < ?`

// PostgreSQL cannot infer parameter types in a SELECT list.
const assignPostgres = `INSERT INTO student_schedules (id, registration_id, time_slot_id, day_of_week, notes, assigned_at)
SELECT CAST(? AS uuid), CAST(? AS varchar), CAST(? AS uuid), CAST(? AS varchar), CAST(? AS text), CAST(? AS timestamptz)
WHERE NOT EXISTS (
    SELECT 1 FROM student_schedules WHERE registration_id = ? AND time_slot_id = ? AND day_of_week = ?
)
AND (SELECT COUNT(*) FROM student_schedules WHERE time_slot_id = ?) < ?`

func (r *studentScheduleRepo) Assign(ctx context.Context, s *model.StudentSchedule) error {
	if err := s.BeforeCreate(nil); err != nil {
		return err
	}
	if s.AssignedAt.IsZero() {
		s.AssignedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent assignments to the same slot. SQLite ignores
		// the locking clause; its single writer gives the same guarantee.
		var slot model.TimeSlot
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", s.TimeSlotID).
			First(&slot).Error
		if err != nil {
			return err
		}

		query := assignSQLite
		if tx.Dialector.Name() == "postgres" {
			query = assignPostgres
		}
		res := tx.Exec(query,
			s.ID, s.RegistrationID, s.TimeSlotID, s.DayOfWeek, s.Notes, s.AssignedAt,
			s.RegistrationID, s.TimeSlotID, s.DayOfWeek,
			s.TimeSlotID, slot.MaxCapacity,
		)
		if res.Error != nil {
			if pkgerrors.IsDuplicate(res.Error) {
				return ErrDuplicateAssignment
			}
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}

		var dup int64
		err = tx.Model(&model.StudentSchedule{}).
			Where("registration_id = ? AND time_slot_id = ? AND day_of_week = ?", s.RegistrationID, s.TimeSlotID, s.DayOfWeek).
			Count(&dup).Error
		if err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateAssignment
		}
		return ErrSlotFull
	})
}

func (r *studentScheduleRepo) GetByID(ctx context.Context, id string) (*model.StudentSchedule, error) {
	var s model.StudentSchedule
	err := r.db.WithContext(ctx).
		Preload("Registration").
		Preload("TimeSlot").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]model.StudentSchedule, error) {
	var list []model.StudentSchedule
	db := r.db.WithContext(ctx)

	if f.TimeSlotID != "" {
		db = db.Where("time_slot_id = ?", f.TimeSlotID)
	}
	if f.RegistrationID != "" {
		db = db.Where("registration_id = ?", f.RegistrationID)
	}
	if f.DayOfWeek != "" {
		db = db.Where("day_of_week = ?", f.DayOfWeek)
	}

	err := db.Preload("Registration").
		Preload("TimeSlot").
		Order("assigned_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *studentScheduleRepo) CountBySlot(ctx context.Context, slotID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.StudentSchedule{}).
		Where("time_slot_id = ?", slotID).
		Count(&n).Error
	return n, err
}

func (r *studentScheduleRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.StudentSchedule{})
	return res.RowsAffected, res.Error
}
