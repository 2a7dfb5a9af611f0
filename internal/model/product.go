package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is soft-deleted via DeletedAt and never hard-deleted once an order
// line references it. Remaining is the stock count and must never go negative;
// all decrements run through guarded updates inside transactions.
type Product struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"index;not null"`
	Description   *string
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	Remaining     int             `gorm:"not null;default:0"`
	ImageURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`

	Category    *Category `gorm:"foreignKey:CategoryID"`
	Subcategory *Category `gorm:"foreignKey:SubcategoryID"`
}
