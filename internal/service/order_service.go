package service

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/permission"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*dto.OrderResponse, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type orderService struct {
	repo        repository.OrderRepository
	productRepo repository.ProductRepository
	historyRepo repository.ProductHistoryRepository
	audit       AuditService
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	historyRepo repository.ProductHistoryRepository,
	audit AuditService,
) OrderService {
	return &orderService{
		repo:        repo,
		productRepo: productRepo,
		historyRepo: historyRepo,
		audit:       audit,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────
// All-or-nothing per request:
//  1. Every referenced product must exist and be live — missing/soft-deleted
//     ids fail with an itemized error, never silently dropped.
//  2. Every line must have sufficient stock — all short lines are enumerated.
//  3. One transaction: order + items (price snapshotted now), guarded stock
//     decrement, one INVENTORY_REMOVE history row per line, audit record.

func (s *orderService) Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, businessErr("invalid product_id %q", item.ProductID)
		}
		if seen[pid] {
			return nil, businessErr("duplicate product %s in order", pid)
		}
		seen[pid] = true
		ids = append(ids, pid)
	}

	// Pre-flight: resolve live products, itemize everything missing.
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if byID[id] == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductsNotFoundError{IDs: missing}
	}

	// Pre-flight: enumerate every short line, not just the first.
	var short []StockShortage
	for _, item := range req.Items {
		pid, _ := uuid.Parse(item.ProductID)
		p := byID[pid]
		if p.Remaining < item.Quantity {
			short = append(short, StockShortage{
				ProductID: p.ID, Name: p.Name,
				Requested: item.Quantity, Remaining: p.Remaining,
			})
		}
	}
	if len(short) > 0 {
		return nil, &InsufficientStockError{Lines: short}
	}

	order := model.Order{
		PaymentType: req.PaymentType,
		Status:      model.OrderStatusNew,
	}
	if req.Data != nil {
		b, err := json.Marshal(req.Data)
		if err != nil {
			return nil, businessErr("invalid order data")
		}
		order.Data = datatypes.JSON(b)
	}
	if err := s.resolveOwner(&order, actor, req.UserID); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		pid, _ := uuid.Parse(item.ProductID)
		p := byID[pid]
		order.Items = append(order.Items, model.OrderItem{
			ProductID: p.ID,
			Quantity:  item.Quantity,
			Price:     p.Price, // snapshot — never re-read later
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &order); err != nil {
			return err
		}

		for _, item := range order.Items {
			p := byID[item.ProductID]

			// Guarded decrement: a concurrent order may have consumed the
			// stock since pre-flight; 0 rows means roll everything back.
			n, err := s.productRepo.DecrementStockTx(tx, p.ID, item.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return &InsufficientStockError{Lines: []StockShortage{{
					ProductID: p.ID, Name: p.Name,
					Requested: item.Quantity, Remaining: p.Remaining,
				}}}
			}

			if err := s.historyRepo.CreateTx(tx, &model.ProductHistory{
				ProductID:   p.ID,
				Operation:   model.HistoryInventoryRemove,
				Quantity:    item.Quantity,
				StockBefore: p.Remaining,
				StockAfter:  p.Remaining - item.Quantity,
				Reason:      fmt.Sprintf("Order %s created", order.ID),
				OrderID:     &order.ID,
			}); err != nil {
				return err
			}
		}

		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "order",
			EntityID:   order.ID.String(),
			Action:     model.AuditCreate,
			New:        orderSnapshot(&order),
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return mapOrder(created), nil
}

func (s *orderService) resolveOwner(order *model.Order, actor Actor, requestedUser *string) error {
	switch {
	case actor.IsUser():
		// Customers always order for themselves.
		order.UserID = actor.ID
	case actor.IsStaff():
		order.StaffID = actor.ID
		if requestedUser != nil {
			uid, err := uuid.Parse(*requestedUser)
			if err != nil {
				return businessErr("invalid user_id %q", *requestedUser)
			}
			order.UserID = &uid
		}
	default:
		return ErrForbidden
	}
	return nil
}

// ── Read paths ───────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.fetchScoped(ctx, actor, id, "read")
	if err != nil {
		return nil, err
	}
	return mapOrder(order), nil
}

// fetchScoped loads an order and enforces own/all scoping. Callers without
// the :all scope get Forbidden for any order that is not theirs — including
// nonexistent ids, so 403 vs 404 never becomes an existence oracle.
func (s *orderService) fetchScoped(ctx context.Context, actor Actor, id uuid.UUID, action string) (*model.Order, error) {
	hasAll := permission.HasScope(actor.Permissions, "orders", action, permission.ScopeAll)

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if hasAll {
			return nil, notFound("Order")
		}
		return nil, ErrForbidden
	}
	if hasAll {
		return order, nil
	}
	if !permission.HasScope(actor.Permissions, "orders", action, permission.ScopeOwn) {
		return nil, ErrForbidden
	}
	if actor.IsStaff() && order.StaffID != nil && actor.ID != nil && *order.StaffID == *actor.ID {
		return order, nil
	}
	if actor.IsUser() && order.UserID != nil && actor.ID != nil && *order.UserID == *actor.ID {
		return order, nil
	}
	return nil, ErrForbidden
}

func (s *orderService) List(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}

	// :own callers are pinned to their own records; :all callers may filter
	// by arbitrary user_id/staff_id.
	if !permission.HasScope(actor.Permissions, "orders", "read", permission.ScopeAll) {
		if !permission.HasScope(actor.Permissions, "orders", "read", permission.ScopeOwn) || actor.ID == nil {
			return nil, ErrForbidden
		}
		if actor.IsUser() {
			filter.UserID = actor.ID.String()
			filter.StaffID = ""
		} else {
			filter.StaffID = actor.ID.String()
			filter.UserID = ""
		}
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *mapOrder(&orders[i]))
	}
	return &dto.OrderListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Status transitions ───────────────────────────────────────────────────────

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	order, err := s.fetchScoped(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}

	if order.Status != model.OrderStatusNew {
		return nil, businessErr("cannot change status of %s order", order.Status)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if status == model.OrderStatusCancelled {
			if err := s.restoreStock(ctx, tx, order, "cancelled"); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateStatusTx(tx, order.ID, status); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "order",
			EntityID:   order.ID.String(),
			Action:     model.AuditOrderStatusChange,
			Previous:   map[string]any{"status": order.Status},
			New:        map[string]any{"status": status},
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	updated, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return mapOrder(updated), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────
// Symmetric restore: every item whose product is still live gets its stock
// back with an INVENTORY_ADD row. Soft-deleted products are intentionally
// excluded — their stock concept is no longer meaningful. CANCELLED orders
// already restored at cancellation and are not restored twice.

func (s *orderService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFound("Order")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if order.Status == model.OrderStatusNew {
			if err := s.restoreStock(ctx, tx, order, "deleted"); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteTx(tx, order.ID); err != nil {
			return err
		}
		return s.audit.LogTx(tx, actor, AuditEntry{
			EntityType: "order",
			EntityID:   order.ID.String(),
			Action:     model.AuditDelete,
			Previous:   orderSnapshot(order),
		})
	})
}

func (s *orderService) restoreStock(ctx context.Context, tx *gorm.DB, order *model.Order, cause string) error {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	live, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	liveByID := make(map[uuid.UUID]*model.Product, len(live))
	for i := range live {
		liveByID[live[i].ID] = &live[i]
	}

	for _, item := range order.Items {
		p := liveByID[item.ProductID]
		if p == nil {
			continue // soft-deleted — skip restoration
		}
		if err := s.productRepo.IncrementStockTx(tx, p.ID, item.Quantity); err != nil {
			return err
		}
		if err := s.historyRepo.CreateTx(tx, &model.ProductHistory{
			ProductID:   p.ID,
			Operation:   model.HistoryInventoryAdd,
			Quantity:    item.Quantity,
			StockBefore: p.Remaining,
			StockAfter:  p.Remaining + item.Quantity,
			Reason:      fmt.Sprintf("Order %s %s", order.ID, cause),
			OrderID:     &order.ID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func orderSnapshot(o *model.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"price":      item.Price,
		})
	}
	return map[string]any{
		"status":       o.Status,
		"payment_type": o.PaymentType,
		"user_id":      o.UserID,
		"staff_id":     o.StaffID,
		"items":        items,
	}
}

func mapOrder(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	total := decimal.Zero
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		subtotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		items = append(items, dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    subtotal,
		})
	}

	var data map[string]any
	if len(o.Data) > 0 {
		_ = json.Unmarshal(o.Data, &data)
	}

	return &dto.OrderResponse{
		ID:          o.ID,
		Status:      o.Status,
		PaymentType: o.PaymentType,
		UserID:      o.UserID,
		StaffID:     o.StaffID,
		Items:       items,
		Total:       total,
		Data:        data,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
