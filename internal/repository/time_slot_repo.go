package repository

import (
	"context"

	"gorm.io/gorm"

	"robolab-portal/internal/model"
)

// TimeSlotRepository time slot data access
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	List(ctx context.Context) ([]model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	Delete(ctx context.Context, id string) (int64, error)
	// AssignedCounts returns the number of assignments per slot ID.
	AssignedCounts(ctx context.Context) (map[string]int, error)
}

type timeSlotRepo struct {
	db *gorm.DB
}

func NewTimeSlotRepo(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepo{db: db}
}

func (r *timeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *timeSlotRepo) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepo) List(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	err := r.db.WithContext(ctx).
		Order("start_time ASC, name ASC").
		Find(&slots).Error
	return slots, err
}

func (r *timeSlotRepo) Update(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Save(slot).Error
}

func (r *timeSlotRepo) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("time_slot_id = ?", id).Delete(&model.StudentSchedule{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.TimeSlot{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *timeSlotRepo) AssignedCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TimeSlotID string
		Assigned   int
	}
	err := r.db.WithContext(ctx).
		Model(&model.StudentSchedule{}).
		Select("time_slot_id, COUNT(*) AS assigned").
		Group("time_slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.TimeSlotID] = row.Assigned
	}
	return counts, nil
}
