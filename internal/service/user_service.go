package service

import (
	"context"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error)
	List(ctx context.Context, page, limit int) (*dto.UserListResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	audit AuditService
}

func NewUserService(repo repository.UserRepository, audit AuditService) UserService {
	return &userService{repo: repo, audit: audit}
}

func mapUser(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		PhotoURL:   u.PhotoURL,
		Active:     u.Active,
	}
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("User")
	}
	return mapUser(u), nil
}

func (s *userService) List(ctx context.Context, page, limit int) (*dto.UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, *mapUser(&users[i]))
	}
	return &dto.UserListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

// Update covers back-office moderation only. Profile fields normally track
// the Telegram payload on each login; Active=false locks the account out.
func (s *userService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("User")
	}
	previous := map[string]any{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"active":     u.Active,
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = req.LastName
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, u); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "user",
			EntityID:   u.ID.String(),
			Action:     model.AuditUpdate,
			Previous:   previous,
			New: map[string]any{
				"first_name": u.FirstName,
				"last_name":  u.LastName,
				"active":     u.Active,
			},
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapUser(u), nil
}

// Deactivate locks a customer account. Rows are never deleted: orders and
// audit entries reference users by id and must stay resolvable.
func (s *userService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("User")
	}
	if !u.Active {
		return nil
	}
	previous := map[string]any{"active": u.Active}
	u.Active = false

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, u); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "user",
			EntityID:   u.ID.String(),
			Action:     model.AuditUpdate,
			Previous:   previous,
			New:        map[string]any{"active": false},
		})
	})
}
