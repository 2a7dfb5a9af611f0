package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order status state machine:
//
//	NEW --(accept)--> ACCEPTED
//	NEW --(cancel)--> CANCELLED
//
// ACCEPTED is terminal for cancellation. Stock is deducted at creation and
// restored exactly once, on cancellation or on deletion of a NEW order.
const (
	OrderStatusNew       = "NEW"
	OrderStatusAccepted  = "ACCEPTED"
	OrderStatusCancelled = "CANCELLED"
)

type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      *uuid.UUID `gorm:"type:uuid;index"`
	StaffID     *uuid.UUID `gorm:"type:uuid;index"`
	PaymentType string     `gorm:"type:varchar(20);not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'NEW';index"`
	Data        datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User  *User       `gorm:"foreignKey:UserID"`
	Staff *Staff      `gorm:"foreignKey:StaffID"`
}

// OrderItem snapshots the product price at order time; it is never re-read
// from the product later.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Data      datatypes.JSON

	Product *Product `gorm:"foreignKey:ProductID"`
}
