package service

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	SetImage(ctx context.Context, actor Actor, id uuid.UUID, url string) (*dto.ProductResponse, error)
	History(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.ProductHistoryResponse, int64, error)
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	historyRepo  repository.ProductHistoryRepository
	audit        AuditService
}

func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	historyRepo repository.ProductHistoryRepository,
	audit AuditService,
) ProductService {
	return &productService{repo: repo, categoryRepo: categoryRepo, historyRepo: historyRepo, audit: audit}
}

func mapProduct(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Remaining:     p.Remaining,
		ImageURL:      p.ImageURL,
	}
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		resp.DeletedAt = &t
	}
	return resp
}

func productSnapshot(p *model.Product) map[string]any {
	return map[string]any{
		"name":           p.Name,
		"price":          p.Price,
		"costprice":      p.CostPrice,
		"category_id":    p.CategoryID,
		"subcategory_id": p.SubcategoryID,
		"remaining":      p.Remaining,
	}
}

func (s *productService) Create(ctx context.Context, actor Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, businessErr("invalid category_id")
	}
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, notFound("Category")
	}

	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		CategoryID:  categoryID,
		Remaining:   req.Remaining,
	}
	if req.SubcategoryID != nil {
		subID, err := uuid.Parse(*req.SubcategoryID)
		if err != nil {
			return nil, businessErr("invalid subcategory_id")
		}
		if _, err := s.categoryRepo.FindByID(ctx, subID); err != nil {
			return nil, notFound("Subcategory")
		}
		p.SubcategoryID = &subID
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   p.ID.String(),
			Action:     model.AuditCreate,
			New:        productSnapshot(p),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapProduct(p), nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Product")
	}
	previous := productSnapshot(p)

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, businessErr("invalid category_id")
		}
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			return nil, notFound("Category")
		}
		p.CategoryID = categoryID
	}
	if req.SubcategoryID != nil {
		subID, err := uuid.Parse(*req.SubcategoryID)
		if err != nil {
			return nil, businessErr("invalid subcategory_id")
		}
		if _, err := s.categoryRepo.FindByID(ctx, subID); err != nil {
			return nil, notFound("Subcategory")
		}
		p.SubcategoryID = &subID
	}

	// Save only the mutable columns; relations loaded by FindByID stay out.
	p.Category, p.Subcategory = nil, nil

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   p.ID.String(),
			Action:     model.AuditUpdate,
			Previous:   previous,
			New:        productSnapshot(p),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapProduct(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Product")
	}
	return mapProduct(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *mapProduct(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Delete soft-deletes: products referenced by order lines are never removed.
func (s *productService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("Product")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SoftDeleteTx(tx, id); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   id.String(),
			Action:     model.AuditDelete,
			Previous:   productSnapshot(p),
		})
	})
}

func (s *productService) Restore(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, notFound("Product")
	}
	if !p.DeletedAt.Valid {
		return nil, businessErr("product is not deleted")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.RestoreTx(tx, id); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   id.String(),
			Action:     model.AuditRestore,
			New:        productSnapshot(p),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	restored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapProduct(restored), nil
}

// AdjustStock applies a signed manual correction; remaining never drops
// below zero (guarded update).
func (s *productService) AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Product")
	}
	// Snapshot before the tx: the guarded update mutates the row in place.
	before := p.Remaining
	if before+req.Delta < 0 {
		return nil, businessErr("stock cannot go negative (remaining %d, delta %d)", before, req.Delta)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.AdjustStockTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		if n == 0 {
			return businessErr("stock cannot go negative (remaining %d, delta %d)", before, req.Delta)
		}
		if err := s.historyRepo.CreateTx(tx, &model.ProductHistory{
			ProductID:   id,
			Operation:   model.HistoryInventoryAdjust,
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  before + req.Delta,
			Reason:      req.Reason,
		}); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   id.String(),
			Action:     model.AuditInventoryAdjust,
			Previous:   map[string]any{"remaining": before},
			New:        map[string]any{"remaining": before + req.Delta},
			Metadata:   map[string]any{"reason": req.Reason},
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapProduct(updated), nil
}

func (s *productService) SetImage(ctx context.Context, actor Actor, id uuid.UUID, url string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Product")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateImageTx(tx, id, url); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "product",
			EntityID:   id.String(),
			Action:     model.AuditUpdate,
			Previous:   map[string]any{"image_url": p.ImageURL},
			New:        map[string]any{"image_url": url},
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	p.ImageURL = &url
	return mapProduct(p), nil
}

func (s *productService) History(ctx context.Context, id uuid.UUID, page, limit int) ([]dto.ProductHistoryResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if _, err := s.repo.FindByIDUnscoped(ctx, id); err != nil {
		return nil, 0, notFound("Product")
	}
	rows, total, err := s.historyRepo.ListByProduct(ctx, id, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ProductHistoryResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.ProductHistoryResponse{
			ID:          h.ID,
			ProductID:   h.ProductID,
			Operation:   h.Operation,
			Quantity:    h.Quantity,
			StockBefore: h.StockBefore,
			StockAfter:  h.StockAfter,
			Reason:      h.Reason,
			OrderID:     h.OrderID,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out, total, nil
}
