package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required,gt=0"`
	CostPrice     decimal.Decimal `json:"costprice" validate:"required,gte=0"`
	CategoryID    string          `json:"category_id" validate:"required,uuid"`
	SubcategoryID *string         `json:"subcategory_id" validate:"omitempty,uuid"`
	Remaining     int             `json:"remaining" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	CostPrice     *decimal.Decimal `json:"costprice" validate:"omitempty,gte=0"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
	SubcategoryID *string          `json:"subcategory_id" validate:"omitempty,uuid"`
}

// AdjustStockRequest applies a signed delta to a product's remaining count.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductFilter struct {
	Name       string
	CategoryID string
	// Deleted: "" = live only, "true" = soft-deleted only, "all" = everything
	Deleted string
	Page    int
	Limit   int
}

type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"costprice,omitempty"`
	CategoryID    uuid.UUID       `json:"category_id"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id,omitempty"`
	Remaining     int             `json:"remaining"`
	ImageURL      *string         `json:"image_url,omitempty"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type ProductHistoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	Operation   string     `json:"operation"`
	Quantity    int        `json:"quantity"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
	Reason      string     `json:"reason"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
