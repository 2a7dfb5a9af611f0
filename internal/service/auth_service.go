package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"storefront/internal/config"
	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/permission"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ClientInfo carries the request metadata persisted alongside refresh tokens.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error)
	TelegramLogin(ctx context.Context, req dto.TelegramLoginRequest, client ClientInfo) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string, requestID string) error
}

type authService struct {
	staffRepo   repository.StaffRepository
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	audit       AuditService
	cfg         *config.Config
	now         func() time.Time
}

func NewAuthService(
	staffRepo repository.StaffRepository,
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	audit AuditService,
	cfg *config.Config,
) AuthService {
	return &authService{
		staffRepo:   staffRepo,
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		audit:       audit,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Login verifies staff credentials. Unknown username and password mismatch
// are logged at different levels but both return the same opaque
// ErrUnauthorized — no user enumeration.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error) {
	staff, err := s.staffRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Info().Str("username", req.Username).Msg("login: unknown username")
		return nil, ErrUnauthorized
	}
	if !staff.Active {
		log.Warn().Str("staff_id", staff.ID.String()).Msg("login: inactive staff")
		return nil, ErrUnauthorized
	}

	ok, err := VerifyPassword(staff.PasswordHash, req.Password)
	if err != nil {
		log.Error().Err(err).Str("staff_id", staff.ID.String()).Msg("login: hash verification failed")
		return nil, ErrUnauthorized
	}
	if !ok {
		log.Warn().Str("staff_id", staff.ID.String()).Msg("login: password mismatch")
		return nil, ErrUnauthorized
	}

	perms := rolePermissions(staff.Role)
	resp, err := s.issueTokens(ctx, principal{staffID: &staff.ID, perms: perms, username: staff.Username}, client)
	if err != nil {
		return nil, err
	}
	resp.Staff = mapStaff(staff)

	id := staff.ID
	s.audit.Log(ctx, Actor{ID: &id, Type: model.ActorStaff}, AuditEntry{
		EntityType: "staff",
		EntityID:   staff.ID.String(),
		Action:     model.AuditLogin,
		Metadata:   map[string]any{"ip": client.IPAddress, "user_agent": client.UserAgent},
	})
	return resp, nil
}

// TelegramLogin authenticates a storefront customer from a login-widget
// payload: signature check, 5-minute freshness window, then upsert by
// telegram id.
func (s *authService) TelegramLogin(ctx context.Context, req dto.TelegramLoginRequest, client ClientInfo) (*dto.LoginResponse, error) {
	if !ValidateTelegramHash(req, s.cfg.TelegramBotToken) {
		log.Warn().Int64("telegram_id", req.ID).Msg("telegram login: invalid hash")
		return nil, ErrUnauthorized
	}
	if age := s.now().Unix() - req.AuthDate; age > telegramAuthWindow || age < -60 {
		log.Warn().Int64("telegram_id", req.ID).Int64("age_seconds", age).Msg("telegram login: stale auth_date")
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.FindByTelegramID(ctx, req.ID)
	if err != nil {
		user = &model.User{TelegramID: req.ID, Active: true}
		applyTelegramProfile(user, req)
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		if !user.Active {
			log.Warn().Str("user_id", user.ID.String()).Msg("telegram login: deactivated user")
			return nil, ErrUnauthorized
		}
		applyTelegramProfile(user, req)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	resp, err := s.issueTokens(ctx, principal{userID: &user.ID, perms: permission.UserDefaults(), username: req.Username}, client)
	if err != nil {
		return nil, err
	}
	resp.User = mapUser(user)

	id := user.ID
	s.audit.Log(ctx, Actor{ID: &id, Type: model.ActorUser}, AuditEntry{
		EntityType: "user",
		EntityID:   user.ID.String(),
		Action:     model.AuditLogin,
		Metadata:   map[string]any{"ip": client.IPAddress, "telegram_id": req.ID},
	})
	return resp, nil
}

// Refresh validates and rotates a refresh token. Rotation revokes the old
// token through a guarded update: of two concurrent refreshes with the same
// token, exactly one wins and the other gets ErrUnauthorized.
func (s *authService) Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*dto.LoginResponse, error) {
	row, err := s.refreshRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		log.Warn().Msg("refresh: token not found")
		return nil, ErrUnauthorized
	}
	if row.Revoked {
		log.Warn().Str("token_id", row.ID.String()).Msg("refresh: token revoked")
		return nil, ErrUnauthorized
	}
	if row.ExpiredAt.Before(s.now()) {
		log.Warn().Str("token_id", row.ID.String()).Msg("refresh: token expired")
		return nil, ErrUnauthorized
	}

	n, err := s.refreshRepo.RevokeIfActive(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		log.Warn().Str("token_id", row.ID.String()).Msg("refresh: lost rotation race")
		return nil, ErrUnauthorized
	}

	switch {
	case row.StaffID != nil:
		staff, err := s.staffRepo.FindByID(ctx, *row.StaffID)
		if err != nil || !staff.Active {
			log.Warn().Str("token_id", row.ID.String()).Msg("refresh: staff missing or inactive")
			return nil, ErrUnauthorized
		}
		resp, err := s.issueTokens(ctx, principal{staffID: &staff.ID, perms: rolePermissions(staff.Role), username: staff.Username}, client)
		if err != nil {
			return nil, err
		}
		resp.Staff = mapStaff(staff)
		return resp, nil

	case row.UserID != nil:
		user, err := s.userRepo.FindByID(ctx, *row.UserID)
		if err != nil || !user.Active {
			log.Warn().Str("token_id", row.ID.String()).Msg("refresh: user missing or inactive")
			return nil, ErrUnauthorized
		}
		resp, err := s.issueTokens(ctx, principal{userID: &user.ID, perms: permission.UserDefaults()}, client)
		if err != nil {
			return nil, err
		}
		resp.User = mapUser(user)
		return resp, nil
	}

	log.Error().Str("token_id", row.ID.String()).Msg("refresh: token without principal")
	return nil, ErrUnauthorized
}

// Logout revokes the presented refresh token. Idempotent: an already-revoked
// or unknown token is not an error to the caller.
func (s *authService) Logout(ctx context.Context, refreshToken string, requestID string) error {
	row, err := s.refreshRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil
	}
	if _, err := s.refreshRepo.RevokeIfActive(ctx, row.ID); err != nil {
		return err
	}

	actor := Actor{RequestID: requestID}
	var entity, entityID string
	switch {
	case row.StaffID != nil:
		actor.ID, actor.Type = row.StaffID, model.ActorStaff
		entity, entityID = "staff", row.StaffID.String()
	case row.UserID != nil:
		actor.ID, actor.Type = row.UserID, model.ActorUser
		entity, entityID = "user", row.UserID.String()
	default:
		return nil
	}
	s.audit.Log(ctx, actor, AuditEntry{
		EntityType: entity,
		EntityID:   entityID,
		Action:     model.AuditLogout,
	})
	return nil
}

// ── internals ────────────────────────────────────────────────────────────────

type principal struct {
	staffID  *uuid.UUID
	userID   *uuid.UUID
	perms    []permission.Permission
	username string
}

func (s *authService) issueTokens(ctx context.Context, p principal, client ClientInfo) (*dto.LoginResponse, error) {
	actorType := model.ActorUser
	actorID := p.userID
	if p.staffID != nil {
		actorType = model.ActorStaff
		actorID = p.staffID
	}

	claims := jwt.MapClaims{
		"actor_id":    actorID.String(),
		"actor_type":  actorType,
		"permissions": permission.Strings(p.perms),
		"exp":         s.now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":         s.now().Unix(),
	}
	if p.username != "" {
		claims["username"] = p.username
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}
	row := &model.RefreshToken{
		Token:     refresh,
		StaffID:   p.staffID,
		UserID:    p.userID,
		ExpiredAt: s.now().Add(time.Duration(s.cfg.RefreshTokenDays) * 24 * time.Hour),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := s.refreshRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		RefreshToken: refresh,
	}, nil
}

// newOpaqueToken returns 32 random bytes, URL-safe base64 encoded.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func applyTelegramProfile(u *model.User, req dto.TelegramLoginRequest) {
	u.FirstName = req.FirstName
	u.LastName = optString(req.LastName)
	u.Username = optString(req.Username)
	u.PhotoURL = optString(req.PhotoURL)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// rolePermissions decodes a role's JSON token list, dropping any token that
// has left the closed set since the row was written.
func rolePermissions(role *model.Role) []permission.Permission {
	if role == nil || len(role.Permissions) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(role.Permissions, &raw); err != nil {
		log.Error().Err(err).Str("role_id", role.ID.String()).Msg("role permissions: malformed JSON")
		return nil
	}
	return permission.FromStrings(raw)
}
