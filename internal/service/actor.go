package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the request-scoped identity handed to every service call: who is
// acting, under which request, with which resolved permission set. The
// permission set comes from the access token (resolved at login/refresh), not
// from a per-request database read.
type Actor struct {
	RequestID   string
	ID          *uuid.UUID
	Type        string // model.ActorStaff | model.ActorUser | model.ActorSystem
	Permissions []permission.Permission
}

// SystemActor identifies operations with no authenticated principal
// (seed tools, startup tasks).
func SystemActor() Actor {
	return Actor{Type: model.ActorSystem}
}

func (a Actor) IsStaff() bool { return a.Type == model.ActorStaff }
func (a Actor) IsUser() bool  { return a.Type == model.ActorUser }

// Can is shorthand for a membership check against the actor's resolved set.
func (a Actor) Can(p permission.Permission) bool {
	return permission.Has(a.Permissions, p)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
