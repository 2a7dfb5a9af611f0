package tests

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateUser_ModerationIsAtomicWithAudit(t *testing.T) {
	userRepo := newStubUserRepo()
	audit := &stubAudit{}
	svc := service.NewUserService(userRepo, audit)
	u := userRepo.add(&model.User{TelegramID: 100, FirstName: "Alice", Active: true})

	off := false
	resp, err := svc.Update(context.Background(), staffActor(), u.ID, dto.UpdateUserRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.Equal(t, []string{model.AuditUpdate}, audit.actions())
}

func TestUpdateUser_FailsWhenAuditCannotBeRecorded(t *testing.T) {
	userRepo := newStubUserRepo()
	svc := service.NewUserService(userRepo, &failingAudit{})
	u := userRepo.add(&model.User{TelegramID: 100, FirstName: "Alice", Active: true})

	off := false
	_, err := svc.Update(context.Background(), staffActor(), u.ID, dto.UpdateUserRequest{Active: &off})
	require.Error(t, err)
}

func TestUpdateUser_Missing(t *testing.T) {
	svc := service.NewUserService(newStubUserRepo(), &stubAudit{})

	name := "Ghost"
	_, err := svc.Update(context.Background(), staffActor(), uuid.New(), dto.UpdateUserRequest{FirstName: &name})
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestDeactivateUser_LocksAccountAndAudits(t *testing.T) {
	userRepo := newStubUserRepo()
	audit := &stubAudit{}
	svc := service.NewUserService(userRepo, audit)
	u := userRepo.add(&model.User{TelegramID: 100, FirstName: "Alice", Active: true})

	require.NoError(t, svc.Deactivate(context.Background(), staffActor(), u.ID))
	assert.False(t, userRepo.users[u.ID].Active)
	assert.Equal(t, []string{model.AuditUpdate}, audit.actions())
}

func TestDeactivateUser_IdempotentWhenAlreadyInactive(t *testing.T) {
	userRepo := newStubUserRepo()
	audit := &stubAudit{}
	svc := service.NewUserService(userRepo, audit)
	u := userRepo.add(&model.User{TelegramID: 100, FirstName: "Alice", Active: false})

	require.NoError(t, svc.Deactivate(context.Background(), staffActor(), u.ID))
	assert.Empty(t, audit.actions())
}
