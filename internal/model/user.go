package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a storefront customer authenticated via the Telegram login widget.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
	Username   *string
	FirstName  string `gorm:"not null"`
	LastName   *string
	PhotoURL   *string
	Active     bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
