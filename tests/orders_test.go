package tests

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/permission"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOrderSvc() (service.OrderService, *stubOrderRepo, *stubProductRepo, *stubHistoryRepo, *stubAudit) {
	orderRepo := newStubOrderRepo()
	productRepo := newStubProductRepo()
	historyRepo := &stubHistoryRepo{}
	audit := &stubAudit{}
	svc := service.NewOrderService(orderRepo, productRepo, historyRepo, audit)
	return svc, orderRepo, productRepo, historyRepo, audit
}

func staffActor(perms ...permission.Permission) service.Actor {
	id := uuid.New()
	return service.Actor{ID: &id, Type: model.ActorStaff, Permissions: perms}
}

func userActor(perms ...permission.Permission) service.Actor {
	id := uuid.New()
	return service.Actor{ID: &id, Type: model.ActorUser, Permissions: perms}
}

func orderReq(items ...dto.OrderItemRequest) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{Items: items, PaymentType: "cash"}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	svc, orderRepo, productRepo, historyRepo, audit := buildOrderSvc()

	p := productRepo.add(&model.Product{
		Name: "Espresso", Price: decimal.NewFromInt(5), Remaining: 10,
	})

	actor := staffActor(permission.OrdersCreate)
	resp, err := svc.Create(context.Background(), actor, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 3},
	))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusNew, resp.Status)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 7, p.Remaining)
	assert.Len(t, orderRepo.orders, 1)

	require.Len(t, historyRepo.rows, 1)
	assert.Equal(t, model.HistoryInventoryRemove, historyRepo.rows[0].Operation)
	assert.Equal(t, 10, historyRepo.rows[0].StockBefore)
	assert.Equal(t, 7, historyRepo.rows[0].StockAfter)

	assert.Equal(t, []string{model.AuditCreate}, audit.actions())
}

func TestCreateOrder_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	svc, orderRepo, productRepo, _, _ := buildOrderSvc()

	p := productRepo.add(&model.Product{
		Name: "Latte", Price: decimal.NewFromInt(8), Remaining: 5,
	})

	resp, err := svc.Create(context.Background(), staffActor(permission.OrdersCreate), orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 2},
	))
	require.NoError(t, err)

	// Price change after the order must not alter the stored line price.
	p.Price = decimal.NewFromInt(99)
	stored := orderRepo.orders[resp.ID]
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].Price.Equal(decimal.NewFromInt(8)))
}

func TestCreateOrder_MissingProductsItemized(t *testing.T) {
	svc, orderRepo, productRepo, _, _ := buildOrderSvc()

	p := productRepo.add(&model.Product{Name: "Mocha", Price: decimal.NewFromInt(6), Remaining: 4})
	ghost1 := uuid.New()
	ghost2 := uuid.New()

	_, err := svc.Create(context.Background(), staffActor(permission.OrdersCreate), orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1},
		dto.OrderItemRequest{ProductID: ghost1.String(), Quantity: 1},
		dto.OrderItemRequest{ProductID: ghost2.String(), Quantity: 1},
	))

	var nf *service.ProductsNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.ElementsMatch(t, []uuid.UUID{ghost1, ghost2}, nf.IDs)

	// Nothing persisted, nothing decremented.
	assert.Empty(t, orderRepo.orders)
	assert.Equal(t, 4, p.Remaining)
}

func TestCreateOrder_SoftDeletedProductCountsAsMissing(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()

	p := productRepo.add(&model.Product{Name: "Flat White", Price: decimal.NewFromInt(7), Remaining: 9})
	productRepo.deleted[p.ID] = true

	_, err := svc.Create(context.Background(), staffActor(permission.OrdersCreate), orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1},
	))

	var nf *service.ProductsNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []uuid.UUID{p.ID}, nf.IDs)
}

func TestCreateOrder_InsufficientStockEnumeratesAllLines(t *testing.T) {
	svc, orderRepo, productRepo, historyRepo, _ := buildOrderSvc()

	short1 := productRepo.add(&model.Product{Name: "Beans", Price: decimal.NewFromInt(20), Remaining: 1})
	short2 := productRepo.add(&model.Product{Name: "Filters", Price: decimal.NewFromInt(3), Remaining: 0})
	fine := productRepo.add(&model.Product{Name: "Cups", Price: decimal.NewFromInt(2), Remaining: 50})

	_, err := svc.Create(context.Background(), staffActor(permission.OrdersCreate), orderReq(
		dto.OrderItemRequest{ProductID: short1.ID.String(), Quantity: 5},
		dto.OrderItemRequest{ProductID: short2.ID.String(), Quantity: 2},
		dto.OrderItemRequest{ProductID: fine.ID.String(), Quantity: 10},
	))

	var ins *service.InsufficientStockError
	require.True(t, errors.As(err, &ins))
	require.Len(t, ins.Lines, 2)

	// Atomicity: the fulfillable line must not have been decremented.
	assert.Equal(t, 50, fine.Remaining)
	assert.Equal(t, 1, short1.Remaining)
	assert.Empty(t, orderRepo.orders)
	assert.Empty(t, historyRepo.rows)
}

func TestCreateOrder_DuplicateProductRejected(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Tea", Price: decimal.NewFromInt(4), Remaining: 10})

	_, err := svc.Create(context.Background(), staffActor(permission.OrdersCreate), orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1},
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 2},
	))

	var be *service.BusinessError
	require.True(t, errors.As(err, &be))
}

func TestCreateOrder_UserOrdersForSelf(t *testing.T) {
	svc, orderRepo, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Juice", Price: decimal.NewFromInt(3), Remaining: 6})

	actor := userActor(permission.UserDefaults()...)
	someoneElse := uuid.New().String()
	req := orderReq(dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1})
	req.UserID = &someoneElse // ignored for customers

	resp, err := svc.Create(context.Background(), actor, req)
	require.NoError(t, err)

	stored := orderRepo.orders[resp.ID]
	require.NotNil(t, stored.UserID)
	assert.Equal(t, *actor.ID, *stored.UserID)
	assert.Nil(t, stored.StaffID)
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	svc, _, productRepo, historyRepo, audit := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Cake", Price: decimal.NewFromInt(12), Remaining: 10})

	actor := staffActor(permission.OrdersCreate, permission.OrdersUpdateAll, permission.OrdersDelete, permission.OrdersReadAll)
	resp, err := svc.Create(context.Background(), actor, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 4},
	))
	require.NoError(t, err)
	require.Equal(t, 6, p.Remaining)

	_, err = svc.UpdateStatus(context.Background(), actor, resp.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Remaining)

	// Deleting the cancelled order must not restore again.
	require.NoError(t, svc.Delete(context.Background(), actor, resp.ID))
	assert.Equal(t, 10, p.Remaining)

	var adds int
	for _, h := range historyRepo.rows {
		if h.Operation == model.HistoryInventoryAdd {
			adds++
		}
	}
	assert.Equal(t, 1, adds)
	assert.Contains(t, audit.actions(), model.AuditOrderStatusChange)
	assert.Contains(t, audit.actions(), model.AuditDelete)
}

func TestDeleteNewOrder_RoundTripsStock(t *testing.T) {
	svc, orderRepo, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Pie", Price: decimal.NewFromInt(9), Remaining: 7})

	actor := staffActor(permission.OrdersCreate, permission.OrdersDelete, permission.OrdersReadAll)
	resp, err := svc.Create(context.Background(), actor, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 2},
	))
	require.NoError(t, err)
	require.Equal(t, 5, p.Remaining)

	require.NoError(t, svc.Delete(context.Background(), actor, resp.ID))
	assert.Equal(t, 7, p.Remaining)
	assert.Empty(t, orderRepo.orders)
}

func TestDeleteOrder_SkipsSoftDeletedProducts(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Scone", Price: decimal.NewFromInt(5), Remaining: 8})

	actor := staffActor(permission.OrdersCreate, permission.OrdersDelete, permission.OrdersReadAll)
	resp, err := svc.Create(context.Background(), actor, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 3},
	))
	require.NoError(t, err)
	require.Equal(t, 5, p.Remaining)

	// Product retired between order and deletion: its stock stays untouched.
	productRepo.deleted[p.ID] = true
	require.NoError(t, svc.Delete(context.Background(), actor, resp.ID))
	assert.Equal(t, 5, p.Remaining)
}

func TestAcceptedOrder_CannotChangeStatus(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Bagel", Price: decimal.NewFromInt(4), Remaining: 5})

	actor := staffActor(permission.OrdersCreate, permission.OrdersUpdateAll, permission.OrdersReadAll)
	resp, err := svc.Create(context.Background(), actor, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), actor, resp.ID, model.OrderStatusAccepted)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), actor, resp.ID, model.OrderStatusCancelled)
	var be *service.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 4, p.Remaining)
}

func TestGetOrder_OwnScopeNeverLeaksExistence(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Donut", Price: decimal.NewFromInt(2), Remaining: 9})

	owner := userActor(permission.UserDefaults()...)
	resp, err := svc.Create(context.Background(), owner, orderReq(
		dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1},
	))
	require.NoError(t, err)

	stranger := userActor(permission.UserDefaults()...)

	// Someone else's real order and a nonexistent one look identical to an
	// :own-scoped caller.
	_, errReal := svc.Get(context.Background(), stranger, resp.ID)
	_, errGhost := svc.Get(context.Background(), stranger, uuid.New())
	assert.ErrorIs(t, errReal, service.ErrForbidden)
	assert.ErrorIs(t, errGhost, service.ErrForbidden)

	// An :all-scoped reader gets the honest 404.
	admin := staffActor(permission.OrdersReadAll)
	_, err = svc.Get(context.Background(), admin, uuid.New())
	var nf *service.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestListOrders_OwnScopePinned(t *testing.T) {
	svc, _, productRepo, _, _ := buildOrderSvc()
	p := productRepo.add(&model.Product{Name: "Muffin", Price: decimal.NewFromInt(3), Remaining: 20})

	alice := userActor(permission.UserDefaults()...)
	bob := userActor(permission.UserDefaults()...)

	_, err := svc.Create(context.Background(), alice, orderReq(dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob, orderReq(dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: 1}))
	require.NoError(t, err)

	// Filtering by someone else's user_id is overridden for :own callers.
	resp, err := svc.List(context.Background(), alice, dto.OrderFilter{UserID: bob.ID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, *alice.ID, *resp.Data[0].UserID)

	// :all callers see everything.
	admin := staffActor(permission.OrdersReadAll)
	all, err := svc.List(context.Background(), admin, dto.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
}
