package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.ProductHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.ProductHistory, int64, error)
}

type productHistoryRepo struct{ db *gorm.DB }

func NewProductHistoryRepository(db *gorm.DB) ProductHistoryRepository {
	return &productHistoryRepo{db: db}
}

func (r *productHistoryRepo) CreateTx(tx *gorm.DB, h *model.ProductHistory) error {
	return tx.Create(h).Error
}

func (r *productHistoryRepo) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]model.ProductHistory, int64, error) {
	var rows []model.ProductHistory
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductHistory{}).Where("product_id = ?", productID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&rows).Error
	return rows, total, err
}
