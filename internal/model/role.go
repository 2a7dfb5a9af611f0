package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role groups permission tokens under a unique name. Permissions is a JSON
// array of tokens from the closed set in internal/permission; rows with
// unknown tokens are tolerated on read (they are dropped at decode time).
type Role struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"uniqueIndex;not null"`
	Permissions datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
