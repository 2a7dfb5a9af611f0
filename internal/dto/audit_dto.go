package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Page       int
	Limit      int
}

type AuditLogResponse struct {
	ID           uuid.UUID       `json:"id"`
	RequestID    *string         `json:"request_id,omitempty"`
	ActorID      *uuid.UUID      `json:"actor_id,omitempty"`
	ActorType    string          `json:"actor_type"`
	EntityType   string          `json:"entity_type"`
	EntityID     string          `json:"entity_id"`
	Action       string          `json:"action"`
	PreviousData json.RawMessage `json:"previous_data,omitempty"`
	NewData      json.RawMessage `json:"new_data,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditLogResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
