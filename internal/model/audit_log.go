package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActorType identifies who performed an audited action.
const (
	ActorStaff  = "STAFF"
	ActorUser   = "USER"
	ActorSystem = "SYSTEM"
)

// Audit actions.
const (
	AuditCreate            = "CREATE"
	AuditUpdate            = "UPDATE"
	AuditDelete            = "DELETE"
	AuditRestore           = "RESTORE"
	AuditLogin             = "LOGIN"
	AuditLogout            = "LOGOUT"
	AuditPasswordChange    = "PASSWORD_CHANGE"
	AuditPermissionChange  = "PERMISSION_CHANGE"
	AuditOrderStatusChange = "ORDER_STATUS_CHANGE"
	AuditInventoryAdjust   = "INVENTORY_ADJUST"
)

// AuditLog rows are append-only: created exactly once per instrumented
// state-changing operation, never updated or deleted.
type AuditLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID    *string    `gorm:"index"`
	ActorID      *uuid.UUID `gorm:"type:uuid;index"`
	ActorType    string     `gorm:"type:varchar(10);not null"`
	EntityType   string     `gorm:"type:varchar(30);not null;index"`
	EntityID     string     `gorm:"not null;index"`
	Action       string     `gorm:"type:varchar(30);not null;index"`
	PreviousData datatypes.JSON
	NewData      datatypes.JSON
	Metadata     datatypes.JSON
	CreatedAt    time.Time
}
