package tests

import (
	"context"
	"errors"
	"time"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── Product repository stub ───────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	deleted  map[uuid.UUID]bool
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		deleted:  make(map[uuid.UUID]bool),
	}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	r.add(p)
	return nil
}

// FindByID returns a copy, like a real row scan would: callers must not see
// later in-place mutations through a stale snapshot.
func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || r.deleted[id] {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && !r.deleted[id] {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDUnscoped(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for id, p := range r.products {
		if !r.deleted[id] {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) UpdateTx(_ *gorm.DB, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return errNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.deleted[id] = true
	if p, ok := r.products[id]; ok {
		p.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}
	return nil
}

func (r *stubProductRepo) RestoreTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.deleted, id)
	if p, ok := r.products[id]; ok {
		p.DeletedAt = gorm.DeletedAt{}
	}
	return nil
}

func (r *stubProductRepo) UpdateImageTx(_ *gorm.DB, id uuid.UUID, url string) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.ImageURL = &url
	return nil
}

func (r *stubProductRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	var n int64
	for id, p := range r.products {
		if r.deleted[id] {
			continue
		}
		if p.CategoryID == categoryID || (p.SubcategoryID != nil && *p.SubcategoryID == categoryID) {
			n++
		}
	}
	return n, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	p, ok := r.products[id]
	if !ok || r.deleted[id] || p.Remaining < qty {
		return 0, nil
	}
	p.Remaining -= qty
	return 1, nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	p, ok := r.products[id]
	if !ok {
		return errNotFound
	}
	p.Remaining += qty
	return nil
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	p, ok := r.products[id]
	if !ok || p.Remaining+delta < 0 {
		return 0, nil
	}
	p.Remaining += delta
	return 1, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Order repository stub ─────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && (o.UserID == nil || o.UserID.String() != filter.UserID) {
			continue
		}
		if filter.StaffID != "" && (o.StaffID == nil || o.StaffID.String() != filter.StaffID) {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return errNotFound
	}
	o.Status = status
	return nil
}

func (r *stubOrderRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── Product history repository stub ──────────────────────────────────────────

type stubHistoryRepo struct {
	rows []model.ProductHistory
}

func (r *stubHistoryRepo) CreateTx(_ *gorm.DB, h *model.ProductHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistoryRepo) ListByProduct(_ context.Context, productID uuid.UUID, _, _ int) ([]model.ProductHistory, int64, error) {
	var out []model.ProductHistory
	for _, h := range r.rows {
		if h.ProductID == productID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.ProductHistoryRepository = (*stubHistoryRepo)(nil)

// ── Category repository stub ─────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) add(c *model.Category) *model.Category {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories[c.ID] = c
	return c
}

func (r *stubCategoryRepo) CreateTx(_ *gorm.DB, c *model.Category) error {
	r.add(c)
	return nil
}

func (r *stubCategoryRepo) UpdateTx(_ *gorm.DB, c *model.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return errNotFound
	}
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.categories, id)
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoryRepo) CountChildren(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r *stubCategoryRepo) DB() *gorm.DB { return nil }

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Staff / user / refresh-token stubs ───────────────────────────────────────

type stubStaffRepo struct {
	staff map[uuid.UUID]*model.Staff
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{staff: make(map[uuid.UUID]*model.Staff)}
}

func (r *stubStaffRepo) add(s *model.Staff) *model.Staff {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.staff[s.ID] = s
	return s
}

func (r *stubStaffRepo) CreateTx(_ *gorm.DB, s *model.Staff) error {
	r.add(s)
	return nil
}

func (r *stubStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	s, ok := r.staff[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubStaffRepo) FindByUsername(_ context.Context, username string) (*model.Staff, error) {
	for _, s := range r.staff {
		if s.Username == username {
			return s, nil
		}
	}
	return nil, errNotFound
}

func (r *stubStaffRepo) List(_ context.Context, includeInactive bool) ([]model.Staff, error) {
	var out []model.Staff
	for _, s := range r.staff {
		if s.Active || includeInactive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStaffRepo) UpdateTx(_ *gorm.DB, s *model.Staff) error {
	if _, ok := r.staff[s.ID]; !ok {
		return errNotFound
	}
	r.staff[s.ID] = s
	return nil
}

func (r *stubStaffRepo) CountByRole(_ context.Context, roleID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.staff {
		if s.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *stubStaffRepo) DB() *gorm.DB { return nil }

var _ repository.StaffRepository = (*stubStaffRepo)(nil)

type stubRoleRepo struct {
	roles map[uuid.UUID]*model.Role
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[uuid.UUID]*model.Role)}
}

func (r *stubRoleRepo) add(role *model.Role) *model.Role {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	r.roles[role.ID] = role
	return role
}

func (r *stubRoleRepo) CreateTx(_ *gorm.DB, role *model.Role) error {
	r.add(role)
	return nil
}

func (r *stubRoleRepo) UpdateTx(_ *gorm.DB, role *model.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return errNotFound
	}
	r.roles[role.ID] = role
	return nil
}

func (r *stubRoleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.roles, id)
	return nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, errNotFound
	}
	return role, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *stubRoleRepo) DB() *gorm.DB { return nil }

var _ repository.RoleRepository = (*stubRoleRepo)(nil)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) add(u *model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.add(u)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) UpdateTx(_ *gorm.DB, u *model.User) error {
	return r.Update(context.Background(), u)
}

func (r *stubUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) DB() *gorm.DB { return nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

type stubRefreshRepo struct {
	tokens map[string]*model.RefreshToken
}

func newStubRefreshRepo() *stubRefreshRepo {
	return &stubRefreshRepo{tokens: make(map[string]*model.RefreshToken)}
}

func (r *stubRefreshRepo) Create(_ context.Context, t *model.RefreshToken) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tokens[t.Token] = t
	return nil
}

func (r *stubRefreshRepo) FindByToken(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, errNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubRefreshRepo) RevokeIfActive(_ context.Context, id uuid.UUID) (int64, error) {
	for _, t := range r.tokens {
		if t.ID == id {
			if t.Revoked {
				return 0, nil
			}
			t.Revoked = true
			return 1, nil
		}
	}
	return 0, nil
}

var _ repository.RefreshTokenRepository = (*stubRefreshRepo)(nil)

// ── Audit stub ────────────────────────────────────────────────────────────────

// stubAudit records every entry so tests can assert the trail.
type stubAudit struct {
	entries []service.AuditEntry
}

func (a *stubAudit) Log(_ context.Context, _ service.Actor, e service.AuditEntry) {
	a.entries = append(a.entries, e)
}

func (a *stubAudit) LogTx(_ *gorm.DB, _ service.Actor, e service.AuditEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

func (a *stubAudit) List(_ context.Context, _ dto.AuditFilter) (*dto.AuditListResponse, error) {
	return &dto.AuditListResponse{}, nil
}

// failingAudit rejects every in-tx write, for asserting that mutations do
// not commit when their audit row cannot be recorded.
type failingAudit struct{ stubAudit }

func (a *failingAudit) LogTx(_ *gorm.DB, _ service.Actor, _ service.AuditEntry) error {
	return errors.New("audit sink unavailable")
}

var _ service.AuditService = (*failingAudit)(nil)

func (a *stubAudit) actions() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

var _ service.AuditService = (*stubAudit)(nil)
