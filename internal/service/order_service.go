package service

import (
	"context"
	"errors"
	"fmt"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderService interface {
	Create(ctx context.Context, actor Actor, req *CreateOrderRequest) (*model.Order, error)
	Accept(ctx context.Context, actor Actor, id uuid.UUID, req *AcceptOrderRequest) (*model.Order, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, q *OrderListQuery) (*pagination.Result[model.Order], error)
}

type CreateOrderRequest struct {
	ShopID uuid.UUID         `json:"shopId" validate:"uuid_required"`
	Items  []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	// Price overrides the product's list price for this order only.
	Price *int64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

type AcceptOrderRequest struct {
	Items []AcceptOrderItem `json:"items" validate:"required,min=1,dive"`
}

type AcceptOrderItem struct {
	OrderItemID uuid.UUID         `json:"orderItemId" validate:"uuid_required"`
	Allocations []StockAllocation `json:"allocations" validate:"required,min=1,dive"`
}

type StockAllocation struct {
	StockEntryID uuid.UUID `json:"stockEntryId" validate:"uuid_required"`
	Quantity     int       `json:"quantity" validate:"gt=0"`
}

type OrderListQuery struct {
	ListQuery
	Status string `query:"status" validate:"omitempty,oneof=PENDING PROCESSING COMPLETED CANCELLED"`
	ShopID string `query:"shopId"`
}

type orderService struct {
	store  repository.Store
	events EventPublisher
	invalidator
}

func NewOrderService(store repository.Store, events EventPublisher, c cache.Cache, log logrus.FieldLogger) OrderService {
	return &orderService{
		store:       store,
		events:      events,
		invalidator: invalidator{cache: c, log: log, module: "orderService"},
	}
}

func (s *orderService) Create(ctx context.Context, actor Actor, req *CreateOrderRequest) (*model.Order, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()

	// 2. Shop must exist
	if _, err := repos.Shops.FindByID(ctx, req.ShopID); err != nil {
		return nil, repoError(err, "Shop not found")
	}

	// 3. Products must exist and cover the summed demand per product
	demand := make(map[uuid.UUID]int)
	var ids []uuid.UUID
	for _, item := range req.Items {
		if _, seen := demand[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		demand[item.ProductID] += item.Quantity
	}
	products, err := repos.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, apperr.NotFound(fmt.Sprintf("Product %s not found", id))
		}
		if p.Stock < demand[id] {
			return nil, apperr.BadRequest(fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", p.Name, p.Stock, demand[id]))
		}
	}

	// 4. Snapshot prices and total
	order := &model.Order{
		ShopID: req.ShopID,
		Status: model.OrderPending,
	}
	if actor.ID != uuid.Nil {
		creator := actor.ID
		order.CreatedBy = &creator
	}
	for _, item := range req.Items {
		price := byID[item.ProductID].Price
		if item.Price != nil {
			price = *item.Price
		}
		oi := model.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: price}
		order.TotalAmount += oi.Subtotal()
		order.OrderItems = append(order.OrderItems, oi)
	}

	// 5. Insert and reserve atomically
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, item := range order.OrderItems {
			if err := tx.Products.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				return insufficientStock(err, byID[item.ProductID].Name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, repoError(err, "Order not found")
	}

	created, err := repos.Orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	s.afterChange(ctx, "Create", actor, "order_created", created, fmt.Sprintf("%s created an order", actor.Name))
	return created, nil
}

func (s *orderService) Accept(ctx context.Context, actor Actor, id uuid.UUID, req *AcceptOrderRequest) (*model.Order, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()

	// 2. Order must be pending
	order, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	if order.Status != model.OrderPending {
		return nil, apperr.BadRequest("Only PENDING orders can be accepted")
	}

	// 3. Allocations must cover every item exactly once and sum to its quantity
	items := make(map[uuid.UUID]*model.OrderItem, len(order.OrderItems))
	for i := range order.OrderItems {
		items[order.OrderItems[i].ID] = &order.OrderItems[i]
	}
	covered := make(map[uuid.UUID]bool, len(req.Items))
	var lotIDs []uuid.UUID
	seenLot := make(map[uuid.UUID]bool)
	for _, ai := range req.Items {
		oi, ok := items[ai.OrderItemID]
		if !ok {
			return nil, apperr.BadRequest(fmt.Sprintf("Order item %s does not belong to this order", ai.OrderItemID))
		}
		if covered[ai.OrderItemID] {
			return nil, apperr.BadRequest(fmt.Sprintf("Order item %s is allocated more than once", ai.OrderItemID))
		}
		covered[ai.OrderItemID] = true

		total := 0
		for _, a := range ai.Allocations {
			total += a.Quantity
			if !seenLot[a.StockEntryID] {
				seenLot[a.StockEntryID] = true
				lotIDs = append(lotIDs, a.StockEntryID)
			}
		}
		if total != oi.Quantity {
			return nil, apperr.BadRequest(fmt.Sprintf("Allocated quantity for %s is %d, ordered %d", itemName(oi), total, oi.Quantity))
		}
	}
	for _, oi := range order.OrderItems {
		if !covered[oi.ID] {
			return nil, apperr.BadRequest(fmt.Sprintf("Order item for %s has no allocation", itemName(&oi)))
		}
	}

	// 4. Lots must exist, match the product and hold enough for the combined demand
	lotList, err := repos.StockEntries.FindByIDs(ctx, lotIDs)
	if err != nil {
		return nil, repoError(err, "Stock entry not found")
	}
	lots := make(map[uuid.UUID]model.StockEntry, len(lotList))
	for _, l := range lotList {
		lots[l.ID] = l
	}
	lotDemand := make(map[uuid.UUID]int)
	for _, ai := range req.Items {
		oi := items[ai.OrderItemID]
		for _, a := range ai.Allocations {
			lot, ok := lots[a.StockEntryID]
			if !ok {
				return nil, apperr.BadRequest(fmt.Sprintf("Stock entry %s not found", a.StockEntryID))
			}
			if lot.ProductID != oi.ProductID {
				return nil, apperr.BadRequest(fmt.Sprintf("Stock entry %s does not belong to product %s", lot.ID, itemName(oi)))
			}
			lotDemand[lot.ID] += a.Quantity
			if lot.RemainingQty < lotDemand[lot.ID] {
				return nil, apperr.BadRequest(fmt.Sprintf("Stock entry %s has only %d remaining", lot.ID, lot.RemainingQty))
			}
		}
	}

	// 5. Flip status, allocate lots, record margins, release reservations
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if err := tx.Orders.TransitionStatus(ctx, id, []model.OrderStatus{model.OrderPending}, model.OrderProcessing); err != nil {
			return err
		}
		for _, ai := range req.Items {
			oi := items[ai.OrderItemID]

			lines := make([]lineMargin, len(ai.Allocations))
			for i, a := range ai.Allocations {
				lines[i] = lineMargin{Quantity: a.Quantity, UnitCost: lots[a.StockEntryID].UnitCost}
			}
			costs := computeItemCosts(oi.Price, oi.Quantity, lines)

			rows := make([]model.OrderItemStockEntry, len(ai.Allocations))
			for i, a := range ai.Allocations {
				if err := tx.StockEntries.Allocate(ctx, a.StockEntryID, a.Quantity); err != nil {
					return err
				}
				rows[i] = model.OrderItemStockEntry{
					OrderItemID:  oi.ID,
					StockEntryID: a.StockEntryID,
					Quantity:     a.Quantity,
					UnitCost:     costs.Lines[i].UnitCost,
					UnitPrice:    oi.Price,
					MarginAmount: costs.Lines[i].MarginAmount,
					MarginRate:   costs.Lines[i].MarginRate,
				}
			}
			if err := tx.Orders.CreateAllocations(ctx, rows); err != nil {
				return err
			}
			if err := tx.Orders.UpdateItemCosts(ctx, oi.ID, costs.TotalCost, costs.TotalMargin, costs.AvgMarginRate); err != nil {
				return err
			}
			if err := tx.Products.ReleaseReservation(ctx, oi.ProductID, oi.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, repoError(err, "Order not found")
	}

	accepted, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	s.afterChange(ctx, "Accept", actor, "order_accepted", accepted, fmt.Sprintf("%s accepted an order", actor.Name))
	return accepted, nil
}

func (s *orderService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error) {
	repos := s.store.Repositories()
	order, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}

	var allocations []model.OrderItemStockEntry
	switch order.Status {
	case model.OrderPending:
	case model.OrderProcessing:
		if allocations, err = repos.Orders.AllocationsByOrder(ctx, id); err != nil {
			return nil, repoError(err, "Order not found")
		}
	default:
		return nil, apperr.BadRequest("Only PENDING or PROCESSING orders can be cancelled")
	}

	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if err := tx.Orders.TransitionStatus(ctx, id, []model.OrderStatus{order.Status}, model.OrderCancelled); err != nil {
			return err
		}
		// pending items still hold a reservation, processing ones already released it
		release := order.Status == model.OrderPending
		for _, item := range order.OrderItems {
			if err := tx.Products.Restock(ctx, item.ProductID, item.Quantity, release); err != nil {
				return err
			}
		}
		for _, a := range allocations {
			if err := tx.StockEntries.Restore(ctx, a.StockEntryID, a.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, repoError(err, "Order not found")
	}

	cancelled, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	s.afterChange(ctx, "Cancel", actor, "order_cancelled", cancelled, fmt.Sprintf("%s cancelled an order", actor.Name))
	return cancelled, nil
}

func (s *orderService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error) {
	repos := s.store.Repositories()
	order, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	if order.Status != model.OrderProcessing {
		return nil, apperr.BadRequest("Only PROCESSING orders can be completed")
	}

	err = repos.Orders.TransitionStatus(ctx, id, []model.OrderStatus{model.OrderProcessing}, model.OrderCompleted)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}

	completed, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	s.afterChange(ctx, "Complete", actor, "order_completed", completed, fmt.Sprintf("%s completed an order", actor.Name))
	return completed, nil
}

func (s *orderService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	repos := s.store.Repositories()
	order, err := repos.Orders.FindByID(ctx, id)
	if err != nil {
		return repoError(err, "Order not found")
	}

	// 1. Status must be PENDING or CANCELLED
	if !order.Status.Deletable() {
		return apperr.BadRequest("Only PENDING or CANCELLED orders can be deleted")
	}
	// 2. Only admins may delete orders created by someone else
	if !actor.IsAdmin() && !order.IsCreatedBy(actor.ID) {
		return apperr.Forbidden("You can only delete orders you created")
	}

	// 3. Pending orders give their reservation back; cancelled ones already did
	err = s.store.Transaction(ctx, func(tx repository.Repositories) error {
		if order.Status == model.OrderPending {
			// guards against a concurrent accept between the read and this transaction
			if err := tx.Orders.TransitionStatus(ctx, id, []model.OrderStatus{model.OrderPending}, model.OrderCancelled); err != nil {
				return err
			}
			for _, item := range order.OrderItems {
				if err := tx.Products.Restock(ctx, item.ProductID, item.Quantity, true); err != nil {
					return err
				}
			}
		}
		return tx.Orders.Delete(ctx, id)
	})
	if err != nil {
		return repoError(err, "Order not found")
	}

	s.afterChange(ctx, "Delete", actor, "order_deleted", map[string]interface{}{"id": id}, fmt.Sprintf("%s deleted an order", actor.Name))
	return nil
}

func (s *orderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error) {
	order, err := s.store.Repositories().Orders.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	canDelete := order.DeletableBy(actor.ID, actor.Role)
	order.CanDelete = &canDelete
	return order, nil
}

func (s *orderService) List(ctx context.Context, q *OrderListQuery) (*pagination.Result[model.Order], error) {
	if err := validator.Struct(q); err != nil {
		return nil, err
	}
	params, err := q.params(repository.OrderSortColumns)
	if err != nil {
		return nil, err
	}
	shopID, err := parseOptionalUUID(q.ShopID, "shopId")
	if err != nil {
		return nil, err
	}

	filter := repository.OrderFilter{ListParams: params, ShopID: shopID}
	if q.Status != "" {
		st := model.OrderStatus(q.Status)
		filter.Status = &st
	}
	orders, total, err := s.store.Repositories().Orders.List(ctx, filter)
	if err != nil {
		return nil, repoError(err, "Order not found")
	}
	return pagination.NewResult(orders, params.Page, params.Limit, total), nil
}

func (s *orderService) afterChange(ctx context.Context, funcName string, actor Actor, action string, data interface{}, message string) {
	s.invalidate(ctx, funcName, orderTags...)
	s.events.Publish(ws.Event{
		Type:    ws.TypeOrderUpdate,
		Action:  action,
		Data:    data,
		User:    actor.wsActor(),
		Message: message,
	})
}

func insufficientStock(err error, name string) error {
	if errors.Is(err, repository.ErrInsufficientStock) {
		return apperr.BadRequest(fmt.Sprintf("Insufficient stock for %s", name))
	}
	return err
}

func itemName(oi *model.OrderItem) string {
	if oi.Product != nil && oi.Product.Name != "" {
		return oi.Product.Name
	}
	return oi.ProductID.String()
}
