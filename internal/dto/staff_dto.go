package dto

import "github.com/google/uuid"

type CreateStaffRequest struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	RoleID   string `json:"role_id" validate:"required,uuid"`
}

type UpdateStaffRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	RoleID   *string `json:"role_id" validate:"omitempty,uuid"`
	Active   *bool   `json:"active"`
}

type StaffResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	RoleID   uuid.UUID `json:"role_id"`
	RoleName string    `json:"role_name,omitempty"`
	Active   bool      `json:"active"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=60"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type UpdateRoleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=60"`
	Permissions []string `json:"permissions" validate:"omitempty,min=1"`
}

type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
}
