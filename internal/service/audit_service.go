package service

import (
	"context"
	"encoding/json"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEntry describes one state transition to record. Previous/New are
// marshalled to JSON snapshots; nil means no snapshot on that side.
type AuditEntry struct {
	EntityType string
	EntityID   string
	Action     string
	Previous   any
	New        any
	Metadata   map[string]any
}

// AuditService writes the append-only audit trail.
//
// Two call paths with different guarantees:
//   - LogTx participates in the caller's transaction — the business mutation
//     and its audit record commit or roll back together.
//   - Log is best-effort for low-value events (LOGIN, LOGOUT): a failed write
//     is logged and swallowed, never failing the triggering request.
type AuditService interface {
	Log(ctx context.Context, actor Actor, e AuditEntry)
	LogTx(tx *gorm.DB, actor Actor, e AuditEntry) error
	List(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Log(ctx context.Context, actor Actor, e AuditEntry) {
	row, err := buildAuditRow(actor, e)
	if err == nil {
		err = s.repo.Create(ctx, row)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", actor.RequestID).
			Str("entity_type", e.EntityType).
			Str("entity_id", e.EntityID).
			Str("action", e.Action).
			Msg("audit write failed (best-effort path)")
	}
}

func (s *auditService) LogTx(tx *gorm.DB, actor Actor, e AuditEntry) error {
	row, err := buildAuditRow(actor, e)
	if err != nil {
		return err
	}
	return s.repo.CreateTx(tx, row)
}

func (s *auditService) List(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.AuditLogResponse{
			ID:           r.ID,
			RequestID:    r.RequestID,
			ActorID:      r.ActorID,
			ActorType:    r.ActorType,
			EntityType:   r.EntityType,
			EntityID:     r.EntityID,
			Action:       r.Action,
			PreviousData: json.RawMessage(r.PreviousData),
			NewData:      json.RawMessage(r.NewData),
			Metadata:     json.RawMessage(r.Metadata),
			CreatedAt:    r.CreatedAt,
		})
	}
	return &dto.AuditListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func buildAuditRow(actor Actor, e AuditEntry) (*model.AuditLog, error) {
	row := &model.AuditLog{
		ActorID:    actor.ID,
		ActorType:  actor.Type,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
	}
	if row.ActorType == "" {
		row.ActorType = model.ActorSystem
	}
	if actor.RequestID != "" {
		rid := actor.RequestID
		row.RequestID = &rid
	}

	var err error
	if row.PreviousData, err = marshalSnapshot(e.Previous); err != nil {
		return nil, err
	}
	if row.NewData, err = marshalSnapshot(e.New); err != nil {
		return nil, err
	}
	if e.Metadata != nil {
		if row.Metadata, err = marshalSnapshot(e.Metadata); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func marshalSnapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
