package model

import (
	"time"

	"github.com/google/uuid"
)

// Product history operations.
const (
	HistoryInventoryAdd    = "INVENTORY_ADD"
	HistoryInventoryRemove = "INVENTORY_REMOVE"
	HistoryInventoryAdjust = "INVENTORY_ADJUST"
)

// ProductHistory is the per-product stock ledger: one row per stock movement
// with before/after counts and a human-readable reason.
type ProductHistory struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Operation   string     `gorm:"type:varchar(30);not null"`
	Quantity    int        `gorm:"not null"`
	StockBefore int        `gorm:"not null"`
	StockAfter  int        `gorm:"not null"`
	Reason      string     `gorm:"not null"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (ProductHistory) TableName() string { return "product_history" }
