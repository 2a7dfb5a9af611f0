package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentType string             `json:"payment_type" validate:"required,oneof=cash card online"`
	// UserID lets staff place an order on behalf of a customer; customers
	// always order for themselves and this field is ignored.
	UserID *string        `json:"user_id" validate:"omitempty,uuid"`
	Data   map[string]any `json:"data"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACCEPTED CANCELLED"`
}

type OrderFilter struct {
	Status  string
	UserID  string
	StaffID string
	Page    int
	Limit   int
}

type OrderItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	Status      string              `json:"status"`
	PaymentType string              `json:"payment_type"`
	UserID      *uuid.UUID          `json:"user_id,omitempty"`
	StaffID     *uuid.UUID          `json:"staff_id,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	Total       decimal.Decimal     `json:"total"`
	Data        map[string]any      `json:"data,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
