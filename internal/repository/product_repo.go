package repository

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindByIDs returns live (non-soft-deleted) products only; callers diff
	// the result against the requested ids to itemize missing products.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	UpdateTx(tx *gorm.DB, p *model.Product) error
	SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error
	RestoreTx(tx *gorm.DB, id uuid.UUID) error
	UpdateImageTx(tx *gorm.DB, id uuid.UUID, url string) error
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)

	// Guarded stock mutations — callers must run these inside a transaction.
	// Both return the number of affected rows: 0 means the guard failed
	// (stock would go negative) and the caller must roll back.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error)
	IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").Preload("Subcategory").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Unscoped().First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	switch filter.Deleted {
	case "true":
		q = q.Unscoped().Where("deleted_at IS NOT NULL")
	case "all":
		q = q.Unscoped()
	default:
		// live only — gorm.DeletedAt handles the filter
	}

	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ? OR subcategory_id = ?", filter.CategoryID, filter.CategoryID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Save(p).Error
}

func (r *productRepo) SoftDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) RestoreTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Unscoped().Model(&model.Product{}).Where("id = ?", id).
		Update("deleted_at", nil).Error
}

func (r *productRepo) UpdateImageTx(tx *gorm.DB, id uuid.UUID, url string) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("image_url", url).Error
}

func (r *productRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ? OR subcategory_id = ?", categoryID, categoryID).
		Count(&n).Error
	return n, err
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND remaining >= ?", id, qty).
		Update("remaining", gorm.Expr("remaining - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productRepo) IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("remaining", gorm.Expr("remaining + ?", qty)).Error
}

func (r *productRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND remaining + ? >= 0", id, delta).
		Update("remaining", gorm.Expr("remaining + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
