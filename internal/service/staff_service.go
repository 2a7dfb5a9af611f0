package service

import (
	"context"
	"encoding/json"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/permission"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StaffService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateStaffRequest) (*dto.StaffResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.StaffResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.StaffResponse, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
}

type RoleService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateRoleRequest) (*dto.RoleResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateRoleRequest) (*dto.RoleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RoleResponse, error)
	List(ctx context.Context) ([]dto.RoleResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type staffService struct {
	repo     repository.StaffRepository
	roleRepo repository.RoleRepository
	audit    AuditService
}

func NewStaffService(repo repository.StaffRepository, roleRepo repository.RoleRepository, audit AuditService) StaffService {
	return &staffService{repo: repo, roleRepo: roleRepo, audit: audit}
}

func mapStaff(s *model.Staff) *dto.StaffResponse {
	resp := &dto.StaffResponse{
		ID:       s.ID,
		Username: s.Username,
		Name:     s.Name,
		RoleID:   s.RoleID,
		Active:   s.Active,
	}
	if s.Role != nil {
		resp.RoleName = s.Role.Name
	}
	return resp
}

func staffSnapshot(s *model.Staff) map[string]any {
	return map[string]any{
		"username": s.Username,
		"name":     s.Name,
		"role_id":  s.RoleID,
		"active":   s.Active,
	}
}

func (s *staffService) Create(ctx context.Context, actor Actor, req dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, businessErr("username %q is already taken", req.Username)
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		return nil, businessErr("invalid role_id")
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, notFound("Role")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	staff := &model.Staff{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		RoleID:       roleID,
		Active:       true,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, staff); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "staff",
			EntityID:   staff.ID.String(),
			Action:     model.AuditCreate,
			New:        staffSnapshot(staff),
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	staff.Role = role
	return mapStaff(staff), nil
}

func (s *staffService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Staff")
	}
	previous := staffSnapshot(staff)
	action := model.AuditUpdate

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		staff.PasswordHash = hash
		action = model.AuditPasswordChange
	}
	if req.RoleID != nil {
		roleID, err := uuid.Parse(*req.RoleID)
		if err != nil {
			return nil, businessErr("invalid role_id")
		}
		if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
			return nil, notFound("Role")
		}
		staff.RoleID = roleID
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}

	staff.Role = nil

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, staff); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "staff",
			EntityID:   staff.ID.String(),
			Action:     action,
			Previous:   previous,
			New:        staffSnapshot(staff),
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapStaff(updated), nil
}

func (s *staffService) Get(ctx context.Context, id uuid.UUID) (*dto.StaffResponse, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Staff")
	}
	return mapStaff(staff), nil
}

func (s *staffService) List(ctx context.Context, includeInactive bool) ([]dto.StaffResponse, error) {
	staff, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StaffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, *mapStaff(&staff[i]))
	}
	return out, nil
}

// Deactivate flips Active off instead of deleting the row. Audit rows
// reference staff by id and must stay resolvable forever.
func (s *staffService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("Staff")
	}
	if actor.ID != nil && *actor.ID == id {
		return businessErr("cannot deactivate your own account")
	}
	if !staff.Active {
		return nil
	}
	previous := staffSnapshot(staff)
	staff.Active = false
	staff.Role = nil

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, staff); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "staff",
			EntityID:   staff.ID.String(),
			Action:     model.AuditUpdate,
			Previous:   previous,
			New:        staffSnapshot(staff),
		})
	})
}

type roleService struct {
	repo      repository.RoleRepository
	staffRepo repository.StaffRepository
	audit     AuditService
}

func NewRoleService(repo repository.RoleRepository, staffRepo repository.StaffRepository, audit AuditService) RoleService {
	return &roleService{repo: repo, staffRepo: staffRepo, audit: audit}
}

func mapRole(r *model.Role) *dto.RoleResponse {
	var perms []string
	_ = json.Unmarshal(r.Permissions, &perms)
	return &dto.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: permission.Strings(permission.FromStrings(perms)),
	}
}

// validatePermissions rejects tokens outside the closed set. Unlike reads,
// writes are strict: a typo in a role definition must not silently vanish.
func validatePermissions(raw []string) (datatypes.JSON, error) {
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		p, ok := permission.Parse(t)
		if !ok {
			return nil, businessErr("unknown permission %q", t)
		}
		tokens = append(tokens, string(p))
	}
	buf, err := json.Marshal(tokens)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(buf), nil
}

func (s *roleService) Create(ctx context.Context, actor Actor, req dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if existing, _ := s.repo.FindByName(ctx, req.Name); existing != nil {
		return nil, businessErr("role %q already exists", req.Name)
	}
	perms, err := validatePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	role := &model.Role{Name: req.Name, Permissions: perms}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, role); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "role",
			EntityID:   role.ID.String(),
			Action:     model.AuditCreate,
			New:        map[string]any{"name": role.Name, "permissions": req.Permissions},
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapRole(role), nil
}

func (s *roleService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Role")
	}
	var prevPerms []string
	_ = json.Unmarshal(role.Permissions, &prevPerms)
	previous := map[string]any{"name": role.Name, "permissions": prevPerms}
	action := model.AuditUpdate

	if req.Name != nil && *req.Name != role.Name {
		if existing, _ := s.repo.FindByName(ctx, *req.Name); existing != nil {
			return nil, businessErr("role %q already exists", *req.Name)
		}
		role.Name = *req.Name
	}
	newPerms := prevPerms
	if req.Permissions != nil {
		perms, err := validatePermissions(req.Permissions)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
		newPerms = req.Permissions
		action = model.AuditPermissionChange
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, role); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "role",
			EntityID:   role.ID.String(),
			Action:     action,
			Previous:   previous,
			New:        map[string]any{"name": role.Name, "permissions": newPerms},
		})
	})
	if txErr != nil {
		return nil, txErr
	}
	return mapRole(role), nil
}

func (s *roleService) Get(ctx context.Context, id uuid.UUID) (*dto.RoleResponse, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("Role")
	}
	return mapRole(role), nil
}

func (s *roleService) List(ctx context.Context) ([]dto.RoleResponse, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, *mapRole(&roles[i]))
	}
	return out, nil
}

func (s *roleService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("Role")
	}
	n, err := s.staffRepo.CountByRole(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return businessErr("role is assigned to %d staff member(s)", n)
	}
	var perms []string
	_ = json.Unmarshal(role.Permissions, &perms)

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, id); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "role",
			EntityID:   id.String(),
			Action:     model.AuditDelete,
			Previous:   map[string]any{"name": role.Name, "permissions": perms},
		})
	})
}
