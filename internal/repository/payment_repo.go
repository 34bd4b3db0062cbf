package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"robolab-portal/internal/model"
)

// PaymentFilter narrows List; nil / empty fields match everything.
type PaymentFilter struct {
	MonthYear      string
	RegistrationID string
	IsPaid         *bool
}

// PaymentTotals is the aggregate for one paid state.
type PaymentTotals struct {
	IsPaid bool
	Count  int
	Total  float64
}

// PaymentRepository tuition record data access
type PaymentRepository interface {
	Create(ctx context.Context, p *model.StudentPayment) error
	// CreateMissing inserts every record whose (registration_id, month_year)
	// is not taken yet, in one transaction, and returns how many were added.
	CreateMissing(ctx context.Context, list []model.StudentPayment) (int64, error)
	GetByID(ctx context.Context, id string) (*model.StudentPayment, error)
	List(ctx context.Context, f PaymentFilter) ([]model.StudentPayment, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Totals(ctx context.Context, monthYear string) ([]PaymentTotals, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

var paymentConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "registration_id"}, {Name: "month_year"}},
	DoNothing: true,
}

func (r *paymentRepo) Create(ctx context.Context, p *model.StudentPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) CreateMissing(ctx context.Context, list []model.StudentPayment) (int64, error) {
	if len(list) == 0 {
		return 0, nil
	}
	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(paymentConflict).CreateInBatches(&list, 200)
		created = res.RowsAffected
		return res.Error
	})
	return created, err
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.StudentPayment, error) {
	var p model.StudentPayment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepo) List(ctx context.Context, f PaymentFilter) ([]model.StudentPayment, error) {
	var list []model.StudentPayment
	db := r.db.WithContext(ctx)

	if f.MonthYear != "" {
		db = db.Where("month_year = ?", f.MonthYear)
	}
	if f.RegistrationID != "" {
		db = db.Where("registration_id = ?", f.RegistrationID)
	}
	if f.IsPaid != nil {
		db = db.Where("is_paid = ?", *f.IsPaid)
	}

	err := db.Order("month_year ASC, student_name ASC").Find(&list).Error
	return list, err
}

func (r *paymentRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StudentPayment{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *paymentRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.StudentPayment{})
	return res.RowsAffected, res.Error
}

func (r *paymentRepo) Totals(ctx context.Context, monthYear string) ([]PaymentTotals, error) {
	var rows []PaymentTotals
	db := r.db.WithContext(ctx).
		Model(&model.StudentPayment{}).
		Select("is_paid, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("is_paid")
	if monthYear != "" {
		db = db.Where("month_year = ?", monthYear)
	}
	err := db.Scan(&rows).Error
	return rows, err
}
