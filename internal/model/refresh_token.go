package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is server-side refresh state: exactly one of StaffID/UserID is
// set. Tokens are revoked on logout and on rotation, never deleted — the
// trail is retained for audit.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Token     string     `gorm:"uniqueIndex;not null"`
	StaffID   *uuid.UUID `gorm:"type:uuid;index"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	ExpiredAt time.Time  `gorm:"not null"`
	Revoked   bool       `gorm:"not null;default:false"`
	UserAgent string
	IPAddress string
	CreatedAt time.Time
}
