// Package permission defines the closed set of authorization tokens and the
// pure membership checks used by both the route layer and the services.
// Tokens have the form "resource:action" or "resource:action:scope".
// No state, no I/O — unknown tokens simply fail the checks.
package permission

import (
	"sort"
	"strings"
)

// Permission is an opaque authorization token drawn from the closed set below.
type Permission string

func (p Permission) String() string { return string(p) }

// Scopes qualify whether a permission applies to records owned by the actor
// or to all records. ScopeAll subsumes ScopeOwn.
const (
	ScopeOwn = "own"
	ScopeAll = "all"
)

const (
	ProductsCreate      Permission = "products:create"
	ProductsRead        Permission = "products:read"
	ProductsUpdate      Permission = "products:update"
	ProductsDelete      Permission = "products:delete"
	ProductsAdjustStock Permission = "products:adjust-stock"

	CategoriesCreate Permission = "categories:create"
	CategoriesRead   Permission = "categories:read"
	CategoriesUpdate Permission = "categories:update"
	CategoriesDelete Permission = "categories:delete"

	OrdersCreate    Permission = "orders:create"
	OrdersReadOwn   Permission = "orders:read:own"
	OrdersReadAll   Permission = "orders:read:all"
	OrdersUpdateOwn Permission = "orders:update:own"
	OrdersUpdateAll Permission = "orders:update:all"
	OrdersDelete    Permission = "orders:delete"

	UsersRead   Permission = "users:read"
	UsersUpdate Permission = "users:update"
	UsersDelete Permission = "users:delete"

	StaffCreate Permission = "staff:create"
	StaffRead   Permission = "staff:read"
	StaffUpdate Permission = "staff:update"
	StaffDelete Permission = "staff:delete"

	RolesCreate Permission = "roles:create"
	RolesRead   Permission = "roles:read"
	RolesUpdate Permission = "roles:update"
	RolesDelete Permission = "roles:delete"

	AuditRead Permission = "audit:read"
)

var registry = map[Permission]struct{}{
	ProductsCreate: {}, ProductsRead: {}, ProductsUpdate: {}, ProductsDelete: {}, ProductsAdjustStock: {},
	CategoriesCreate: {}, CategoriesRead: {}, CategoriesUpdate: {}, CategoriesDelete: {},
	OrdersCreate: {}, OrdersReadOwn: {}, OrdersReadAll: {}, OrdersUpdateOwn: {}, OrdersUpdateAll: {}, OrdersDelete: {},
	UsersRead: {}, UsersUpdate: {}, UsersDelete: {},
	StaffCreate: {}, StaffRead: {}, StaffUpdate: {}, StaffDelete: {},
	RolesCreate: {}, RolesRead: {}, RolesUpdate: {}, RolesDelete: {},
	AuditRead: {},
}

// Valid reports whether p belongs to the closed set.
func Valid(p Permission) bool {
	_, ok := registry[p]
	return ok
}

// Build composes resource/action[/scope] into a Permission and validates it
// against the closed set. ok is false for any unrecognized combination.
func Build(resource, action, scope string) (Permission, bool) {
	token := resource + ":" + action
	if scope != "" {
		token += ":" + scope
	}
	p := Permission(token)
	return p, Valid(p)
}

// Has reports whether required is present in held (exact membership).
func Has(held []Permission, required Permission) bool {
	for _, p := range held {
		if p == required {
			return true
		}
	}
	return false
}

// HasAny reports whether any of required is present in held.
func HasAny(held []Permission, required ...Permission) bool {
	for _, r := range required {
		if Has(held, r) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of required is present in held.
func HasAll(held []Permission, required ...Permission) bool {
	for _, r := range required {
		if !Has(held, r) {
			return false
		}
	}
	return true
}

// HasScope checks resource:action with scope subsumption: the ":all" token
// covers any narrower scope, then the exact resource:action[:scope] token is
// tried. Unknown combinations fail closed.
func HasScope(held []Permission, resource, action, scope string) bool {
	if all, ok := Build(resource, action, ScopeAll); ok && Has(held, all) {
		return true
	}
	p, ok := Build(resource, action, scope)
	if !ok {
		return false
	}
	return Has(held, p)
}

// Parse validates a raw token string. ok is false for strings outside the set.
func Parse(s string) (Permission, bool) {
	p := Permission(strings.TrimSpace(s))
	return p, Valid(p)
}

// FromStrings converts raw tokens, silently dropping unrecognized ones.
// Used when decoding permission lists from JWT claims or role rows.
func FromStrings(raw []string) []Permission {
	out := make([]Permission, 0, len(raw))
	for _, s := range raw {
		if p, ok := Parse(s); ok {
			out = append(out, p)
		}
	}
	return out
}

// Strings converts a permission list to raw tokens for serialization.
func Strings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

// All returns every token in the closed set in sorted order. Used by the
// admin seed tool.
func All() []Permission {
	out := make([]Permission, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// UserDefaults is the fixed permission set granted to storefront customers.
// Customers manage only their own orders; catalog browsing is public.
func UserDefaults() []Permission {
	return []Permission{OrdersCreate, OrdersReadOwn, OrdersUpdateOwn}
}
