package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"robolab-portal/internal/model"
)

// AdminUserRepository administrator account and role data access
type AdminUserRepository interface {
	// Create inserts the user together with its roles.
	Create(ctx context.Context, u *model.AdminUser, roles ...string) error
	GetByID(ctx context.Context, id string) (*model.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*model.AdminUser, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	GrantRole(ctx context.Context, userID, role string) error
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

type adminUserRepo struct {
	db *gorm.DB
}

func NewAdminUserRepo(db *gorm.DB) AdminUserRepository {
	return &adminUserRepo{db: db}
}

func (r *adminUserRepo) Create(ctx context.Context, u *model.AdminUser, roles ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles").Create(u).Error; err != nil {
			return err
		}
		for _, role := range roles {
			if err := grant(tx, u.ID, role); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *adminUserRepo) GetByID(ctx context.Context, id string) (*model.AdminUser, error) {
	var u model.AdminUser
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *adminUserRepo) GetByEmail(ctx context.Context, email string) (*model.AdminUser, error) {
	var u model.AdminUser
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *adminUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).
		Model(&model.AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *adminUserRepo) GrantRole(ctx context.Context, userID, role string) error {
	return grant(r.db.WithContext(ctx), userID, role)
}

func (r *adminUserRepo) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&n).Error
	return n > 0, err
}

func grant(db *gorm.DB, userID, role string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserRole{UserID: userID, Role: role}).Error
}
