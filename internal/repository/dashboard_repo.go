package repository

import (
	"context"
	"time"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRevenue struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	OrderCount   int64     `json:"orderCount"`
	TotalRevenue int64     `json:"totalRevenue"`
}

type ProductValue struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Stock int       `json:"stock"`
	Price int64     `json:"price"`
	Value int64     `json:"value"`
}

type MarginTotals struct {
	TotalCost   int64
	TotalMargin int64
}

type SalesStats struct {
	UserID          uuid.UUID
	Name            string
	Email           string
	OrderCount      int64
	CompletedOrders int64
	TotalRevenue    int64
}

// DashboardRepository runs the read-only rollups. Every window is [start, end).
type DashboardRepository interface {
	CompletedSales(ctx context.Context, start, end time.Time) (revenue, count int64, err error)
	CountOrdersByStatus(ctx context.Context, start, end time.Time) (map[model.OrderStatus]int64, error)
	CountUsersCreated(ctx context.Context, start, end time.Time) (int64, error)
	ShopRevenue(ctx context.Context, start, end time.Time) ([]ShopRevenue, error)
	// MarginTotals sums the cost data of PROCESSING and COMPLETED orders.
	MarginTotals(ctx context.Context, start, end time.Time) (MarginTotals, error)
	ProductValues(ctx context.Context) ([]ProductValue, error)
	// SalesLeaderboard aggregates orders per active sales user; a nil start means all time.
	SalesLeaderboard(ctx context.Context, start *time.Time, end time.Time) ([]SalesStats, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) CompletedSales(ctx context.Context, start, end time.Time) (int64, int64, error) {
	var row struct {
		Revenue    int64
		OrderCount int64
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS order_count").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.OrderCompleted, start, end).
		Scan(&row).Error
	return row.Revenue, row.OrderCount, translate(err, "completed sales")
}

func (r *dashboardRepo) CountOrdersByStatus(ctx context.Context, start, end time.Time) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "orders by status")
	}

	counts := make(map[model.OrderStatus]int64, len(model.OrderStatuses))
	for _, st := range model.OrderStatuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *dashboardRepo) CountUsersCreated(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, translate(err, "count users")
}

func (r *dashboardRepo) ShopRevenue(ctx context.Context, start, end time.Time) ([]ShopRevenue, error) {
	var rows []ShopRevenue
	err := r.db.WithContext(ctx).Table("shops").
		Select("shops.id, shops.name, shops.created_at, "+
			"COUNT(orders.id) AS order_count, "+
			"COALESCE(SUM(CASE WHEN orders.status = ? THEN orders.total_amount ELSE 0 END), 0) AS total_revenue",
			model.OrderCompleted).
		Joins("LEFT JOIN orders ON orders.shop_id = shops.id AND orders.created_at >= ? AND orders.created_at < ?", start, end).
		Group("shops.id").
		Order("total_revenue DESC, order_count DESC").
		Scan(&rows).Error
	return rows, translate(err, "shop revenue")
}

func (r *dashboardRepo) MarginTotals(ctx context.Context, start, end time.Time) (MarginTotals, error) {
	var totals MarginTotals
	err := r.db.WithContext(ctx).Table("order_items").
		Select("COALESCE(SUM(order_items.total_cost), 0) AS total_cost, "+
			"COALESCE(SUM(order_items.total_margin), 0) AS total_margin").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ? AND orders.created_at >= ? AND orders.created_at < ?",
			[]model.OrderStatus{model.OrderProcessing, model.OrderCompleted}, start, end).
		Scan(&totals).Error
	return totals, translate(err, "margin totals")
}

func (r *dashboardRepo) ProductValues(ctx context.Context) ([]ProductValue, error) {
	var rows []ProductValue
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("id, name, stock, price, stock * price AS value").
		Order("value DESC").
		Scan(&rows).Error
	return rows, translate(err, "product values")
}

func (r *dashboardRepo) SalesLeaderboard(ctx context.Context, start *time.Time, end time.Time) ([]SalesStats, error) {
	join := "JOIN orders ON orders.created_by = users.id AND orders.created_at < ?"
	args := []interface{}{end}
	if start != nil {
		join += " AND orders.created_at >= ?"
		args = append(args, *start)
	}

	var rows []SalesStats
	err := r.db.WithContext(ctx).Table("users").
		Select("users.id AS user_id, users.name, users.email, "+
			"COUNT(orders.id) AS order_count, "+
			"COUNT(orders.id) FILTER (WHERE orders.status = ?) AS completed_orders, "+
			"COALESCE(SUM(orders.total_amount), 0) AS total_revenue", model.OrderCompleted).
		Joins(join, args...).
		Where("users.role = ? AND users.banned = ?", model.RoleSales, false).
		Group("users.id").
		Order("total_revenue DESC").
		Scan(&rows).Error
	return rows, translate(err, "sales leaderboard")
}
