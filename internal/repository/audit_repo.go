package repository

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/model"

	"gorm.io/gorm"
)

// AuditRepository is append-only: rows are inserted and read, never updated
// or deleted.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditLog) error
	CreateTx(tx *gorm.DB, e *model.AuditLog) error
	List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) CreateTx(tx *gorm.DB, e *model.AuditLog) error {
	return tx.Create(e).Error
}

func (r *auditRepo) List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error) {
	var rows []model.AuditLog
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit).Find(&rows).Error
	return rows, total, err
}
