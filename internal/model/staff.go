package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff stores back-office principals. Permissions are carried by the
// referenced Role and resolved into the access token at login/refresh time,
// not re-read from the database per request.
type Staff struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Role *Role `gorm:"foreignKey:RoleID"`
}

func (Staff) TableName() string { return "staff" }
