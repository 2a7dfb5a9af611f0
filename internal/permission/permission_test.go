package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas(t *testing.T) {
	held := []Permission{ProductsRead, OrdersReadOwn}

	assert.True(t, Has(held, ProductsRead))
	assert.False(t, Has(held, ProductsDelete))
	assert.False(t, Has(nil, ProductsRead))
}

func TestHasAnyAndAll(t *testing.T) {
	held := []Permission{CategoriesRead, CategoriesUpdate}

	assert.True(t, HasAny(held, CategoriesDelete, CategoriesRead))
	assert.False(t, HasAny(held, CategoriesDelete, CategoriesCreate))

	assert.True(t, HasAll(held, CategoriesRead, CategoriesUpdate))
	assert.False(t, HasAll(held, CategoriesRead, CategoriesDelete))
	assert.True(t, HasAll(held)) // vacuous
}

func TestHasScopeOwnSatisfiedByAll(t *testing.T) {
	// ":all" subsumes ":own" for the same resource:action.
	assert.True(t, HasScope([]Permission{OrdersReadOwn}, "orders", "read", "own"))
	assert.True(t, HasScope([]Permission{OrdersReadAll}, "orders", "read", "own"))
	assert.False(t, HasScope([]Permission{OrdersReadOwn}, "orders", "read", "all"))
	assert.False(t, HasScope([]Permission{OrdersUpdateAll}, "orders", "read", "own"))
}

func TestHasScopeUnscopedResource(t *testing.T) {
	// products:read has no scoped variants; only the exact token matches.
	assert.True(t, HasScope([]Permission{ProductsRead}, "products", "read", ""))
	assert.False(t, HasScope([]Permission{ProductsRead}, "products", "read", "own"))
}

func TestBuild(t *testing.T) {
	p, ok := Build("orders", "read", "own")
	assert.True(t, ok)
	assert.Equal(t, OrdersReadOwn, p)

	p, ok = Build("products", "create", "")
	assert.True(t, ok)
	assert.Equal(t, ProductsCreate, p)

	// Unrecognized combinations return ok=false, never an error.
	_, ok = Build("products", "fly", "")
	assert.False(t, ok)
	_, ok = Build("orders", "create", "own")
	assert.False(t, ok)
}

func TestFromStringsDropsUnknown(t *testing.T) {
	perms := FromStrings([]string{"orders:read:all", "bogus:token", "products:read"})
	assert.Equal(t, []Permission{OrdersReadAll, ProductsRead}, perms)
}
