package dto

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=120"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// UpdateCategoryRequest: nil fields are left untouched. Setting ParentID to
// the empty string detaches the category (makes it a root).
type UpdateCategoryRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	ParentID *string `json:"parent_id"` // "" detaches; otherwise must parse as a UUID
}

type CategoryResponse struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// CatalogResponse is the public storefront read model: the category tree
// plus all live products.
type CatalogResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Products   []ProductResponse  `json:"products"`
}
