package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"robolab-portal/internal/model"
)

// RegistrationRepository registration data access
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	// InsertIgnore inserts reg unless a row with the same ID exists; inserted
	// reports which happened.
	InsertIgnore(ctx context.Context, reg *model.Registration) (inserted bool, err error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	List(ctx context.Context) ([]model.Registration, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type registrationRepo struct {
	db *gorm.DB
}

func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registrationRepo) InsertIgnore(ctx context.Context, reg *model.Registration) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(reg)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *registrationRepo) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) List(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Order("submitted_at DESC, id ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) Delete(ctx context.Context, id string) (int64, error) {
	// student_schedules and student_payments cascade; removed explicitly so
	// SQLite without foreign key enforcement behaves the same.
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("registration_id = ?", id).Delete(&model.StudentSchedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("registration_id = ?", id).Delete(&model.StudentPayment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Registration{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
