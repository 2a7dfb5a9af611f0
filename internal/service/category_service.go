package service

import (
	"context"
	"errors"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxCategoryDepth bounds the tree so the storefront navigation stays
// renderable: root → subcategory → sub-subcategory.
const maxCategoryDepth = 3

type CategoryService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
	audit       AuditService
}

func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository, audit AuditService) CategoryService {
	return &categoryService{repo: repo, productRepo: productRepo, audit: audit}
}

func mapCategory(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
}

func categorySnapshot(c *model.Category) map[string]any {
	return map[string]any{"name": c.Name, "parent_id": c.ParentID}
}

func (s *categoryService) Create(ctx context.Context, actor Actor, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if existing, err := s.repo.FindByName(ctx, req.Name); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, businessErr("category %q already exists", req.Name)
	}

	c := &model.Category{Name: req.Name}
	if req.ParentID != nil {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, businessErr("invalid parent_id")
		}
		parent, err := s.repo.FindByID(ctx, pid)
		if err != nil {
			return nil, notFound("Parent category")
		}
		depth, err := s.depthOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		if depth+1 >= maxCategoryDepth {
			return nil, businessErr("category tree depth limit (%d) exceeded", maxCategoryDepth)
		}
		c.ParentID = &pid
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, c); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "category",
			EntityID:   c.ID.String(),
			Action:     model.AuditCreate,
			New:        categorySnapshot(c),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapCategory(c), nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Category")
	}
	previous := categorySnapshot(c)

	if req.Name != nil && *req.Name != c.Name {
		existing, err := s.repo.FindByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, businessErr("category %q already exists", *req.Name)
		}
		c.Name = *req.Name
	}

	if req.ParentID != nil {
		if *req.ParentID == "" {
			c.ParentID = nil
		} else {
			pid, err := uuid.Parse(*req.ParentID)
			if err != nil {
				return nil, businessErr("invalid parent_id")
			}
			if pid == id {
				return nil, businessErr("Cannot set category as its own parent")
			}
			parent, err := s.repo.FindByID(ctx, pid)
			if err != nil {
				return nil, notFound("Parent category")
			}
			// Full ancestor-chain walk: rejects A→B→A, not just A→A.
			if err := s.checkCycle(ctx, id, parent); err != nil {
				return nil, err
			}
			depth, err := s.depthOf(ctx, parent)
			if err != nil {
				return nil, err
			}
			if depth+1 >= maxCategoryDepth {
				return nil, businessErr("category tree depth limit (%d) exceeded", maxCategoryDepth)
			}
			c.ParentID = &pid
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, c); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "category",
			EntityID:   c.ID.String(),
			Action:     model.AuditUpdate,
			Previous:   previous,
			New:        categorySnapshot(c),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapCategory(c), nil
}

func (s *categoryService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("Category")
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return businessErr("Cannot delete category with subcategories")
	}
	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return businessErr("Cannot delete category with products")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, id); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "category",
			EntityID:   id.String(),
			Action:     model.AuditDelete,
			Previous:   categorySnapshot(c),
		})
	})
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Category")
	}
	return mapCategory(c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *mapCategory(&categories[i]))
	}
	return out, nil
}

// checkCycle walks up from candidate; finding id among its ancestors means
// attaching to candidate would close a cycle.
func (s *categoryService) checkCycle(ctx context.Context, id uuid.UUID, candidate *model.Category) error {
	node := candidate
	for i := 0; node != nil && i < 64; i++ {
		if node.ID == id {
			return businessErr("Cannot set category as its own parent")
		}
		if node.ParentID == nil {
			return nil
		}
		parent, err := s.repo.FindByID(ctx, *node.ParentID)
		if err != nil {
			return err
		}
		node = parent
	}
	return nil
}

// depthOf returns the 0-based depth of c (root = 0).
func (s *categoryService) depthOf(ctx context.Context, c *model.Category) (int, error) {
	depth := 0
	node := c
	for node.ParentID != nil && depth < 64 {
		parent, err := s.repo.FindByID(ctx, *node.ParentID)
		if err != nil {
			return 0, err
		}
		node = parent
		depth++
	}
	return depth, nil
}
