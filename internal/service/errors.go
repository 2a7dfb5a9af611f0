package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinels distinguish the 401/403 paths from ordinary business errors.
// ErrForbidden is deliberately distinct from "not found": a staff member with
// only an :own scope probing someone else's order gets 403 regardless of the
// order's existence.
var (
	ErrUnauthorized = errors.New("Unauthorized")
	ErrForbidden    = errors.New("Forbidden")
)

// BusinessError is an expected rule violation, mapped to HTTP 400.
type BusinessError struct{ Msg string }

func (e *BusinessError) Error() string { return e.Msg }

func businessErr(format string, args ...any) error {
	return &BusinessError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError maps to HTTP 404.
type NotFoundError struct{ Entity string }

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func notFound(entity string) error { return &NotFoundError{Entity: entity} }

// ProductsNotFoundError itemizes every missing or soft-deleted product id in
// an order request; ids are never silently dropped.
type ProductsNotFoundError struct{ IDs []uuid.UUID }

func (e *ProductsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return "products not found: " + strings.Join(ids, ", ")
}

// Detail is the structured payload returned in the error envelope.
func (e *ProductsNotFoundError) Detail() any {
	return map[string]any{"message": "Products not found", "product_ids": e.IDs}
}

// StockShortage describes one order line that cannot be fulfilled.
type StockShortage struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Requested int       `json:"requested"`
	Remaining int       `json:"remaining"`
}

// InsufficientStockError enumerates every short line, not just the first.
type InsufficientStockError struct{ Lines []StockShortage }

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = fmt.Sprintf("%s (requested %d, remaining %d)", l.Name, l.Requested, l.Remaining)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Detail() any {
	return map[string]any{"message": "Insufficient stock", "lines": e.Lines}
}
