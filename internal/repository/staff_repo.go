package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository interface {
	CreateTx(tx *gorm.DB, s *model.Staff) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	FindByUsername(ctx context.Context, username string) (*model.Staff, error)
	List(ctx context.Context, includeInactive bool) ([]model.Staff, error)
	UpdateTx(tx *gorm.DB, s *model.Staff) error
	CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type staffRepo struct{ db *gorm.DB }

func NewStaffRepository(db *gorm.DB) StaffRepository { return &staffRepo{db: db} }

func (r *staffRepo) CreateTx(tx *gorm.DB, s *model.Staff) error {
	return tx.Create(s).Error
}

func (r *staffRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var s model.Staff
	err := r.db.WithContext(ctx).Preload("Role").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *staffRepo) FindByUsername(ctx context.Context, username string) (*model.Staff, error) {
	var s model.Staff
	err := r.db.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&s).Error
	return &s, err
}

func (r *staffRepo) List(ctx context.Context, includeInactive bool) ([]model.Staff, error) {
	var staff []model.Staff
	q := r.db.WithContext(ctx).Preload("Role")
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("username ASC").Find(&staff).Error
	return staff, err
}

func (r *staffRepo) UpdateTx(tx *gorm.DB, s *model.Staff) error {
	return tx.Save(s).Error
}

func (r *staffRepo) CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Staff{}).
		Where("role_id = ?", roleID).Count(&n).Error
	return n, err
}

func (r *staffRepo) DB() *gorm.DB { return r.db }
