package repository

import (
	"context"
	"time"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// Create inserts the order together with its items.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	// ListByCreator returns the user's orders created in [start, end) with their items.
	ListByCreator(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Order, error)

	// TransitionStatus flips the status only while it is still one of from,
	// failing with ErrStatusConflict otherwise.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) error
	CreateAllocations(ctx context.Context, allocations []model.OrderItemStockEntry) error
	UpdateItemCosts(ctx context.Context, itemID uuid.UUID, totalCost, totalMargin int64, avgMarginRate float64) error
	AllocationsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItemStockEntry, error)
	// Delete removes the order, its items and their allocations.
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func withOrderRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Shop", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "created_at", "updated_at") }).
		Preload("Creator", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "role", "created_at", "updated_at") }).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("OrderItems.Product", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug", "price") })
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	err := r.db.WithContext(ctx).Omit("Shop", "Creator").Create(order).Error
	return translate(err, "create order")
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := withOrderRelations(r.db.WithContext(ctx)).
		Preload("OrderItems.Allocations").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find order")
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ShopID != nil {
		q = q.Where("shop_id = ?", *f.ShopID)
	}
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count orders")
	}

	var orders []model.Order
	err := paginate(withOrderRelations(q), "orders", f.ListParams, OrderSortColumns).Find(&orders).Error
	return orders, total, translate(err, "list orders")
}

func (r *orderRepo) ListByCreator(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("created_by = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Find(&orders).Error
	return orders, translate(err, "list orders by creator")
}

func (r *orderRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []model.OrderStatus, to model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return expectRows(res, ErrStatusConflict, "transition order status")
}

func (r *orderRepo) CreateAllocations(ctx context.Context, allocations []model.OrderItemStockEntry) error {
	if len(allocations) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Omit("StockEntry").Create(&allocations).Error
	return translate(err, "create allocations")
}

func (r *orderRepo) UpdateItemCosts(ctx context.Context, itemID uuid.UUID, totalCost, totalMargin int64, avgMarginRate float64) error {
	res := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"total_cost":      totalCost,
			"total_margin":    totalMargin,
			"avg_margin_rate": avgMarginRate,
		})
	return expectRows(res, ErrNotFound, "update order item costs")
}

func (r *orderRepo) AllocationsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItemStockEntry, error) {
	var allocations []model.OrderItemStockEntry
	err := r.db.WithContext(ctx).
		Joins("JOIN order_items ON order_items.id = order_item_stock_entries.order_item_id").
		Where("order_items.order_id = ?", orderID).
		Find(&allocations).Error
	return allocations, translate(err, "find order allocations")
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	itemIDs := db.Model(&model.OrderItem{}).Select("id").Where("order_id = ?", id)

	if err := db.Where("order_item_id IN (?)", itemIDs).Delete(&model.OrderItemStockEntry{}).Error; err != nil {
		return translate(err, "delete order allocations")
	}
	if err := db.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
		return translate(err, "delete order items")
	}
	res := db.Delete(&model.Order{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete order")
}
