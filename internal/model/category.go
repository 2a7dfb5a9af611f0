package model

import (
	"time"

	"github.com/google/uuid"
)

// Category is a self-referential tree node. Cycles are rejected at the
// service layer (full ancestor-chain walk) and deletion is blocked while
// children or products reference the node.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"uniqueIndex;not null"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Parent *Category `gorm:"foreignKey:ParentID"`
}

func (Category) TableName() string { return "categories" }
