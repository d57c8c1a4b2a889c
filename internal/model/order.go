package model

import (
	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Deletable reports whether an order in this status may be deleted
func (s OrderStatus) Deletable() bool {
	return s == OrderPending || s == OrderCancelled
}

type Order struct {
	BaseModel
	ShopID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"shopId"`
	Shop        *Shop       `gorm:"constraint:OnDelete:RESTRICT" json:"shop,omitempty"`
	CreatedBy   *uuid.UUID  `gorm:"type:uuid;index" json:"createdBy"`
	Creator     *User       `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TotalAmount int64       `gorm:"not null;default:0" json:"totalAmount"`
	OrderItems  []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"orderItems"`

	CanDelete *bool `gorm:"-" json:"canDelete,omitempty"`
}

// DeletableBy reports whether the actor may delete the order right now
func (o *Order) DeletableBy(actorID uuid.UUID, actorRole string) bool {
	if !o.Status.Deletable() {
		return false
	}
	return actorRole == RoleAdmin || o.IsCreatedBy(actorID)
}

func (o *Order) IsCreatedBy(userID uuid.UUID) bool {
	return o.CreatedBy != nil && *o.CreatedBy == userID
}

// OrderItem holds the price snapshot. The cost fields stay nil until the order
// is accepted and its quantity is allocated to stock entries.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID             `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID     uuid.UUID             `gorm:"type:uuid;not null;index" json:"productId"`
	Product       *Product              `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity      int                   `gorm:"not null" json:"quantity"`
	Price         int64                 `gorm:"not null" json:"price"`
	TotalCost     *int64                `json:"totalCost"`
	TotalMargin   *int64                `json:"totalMargin"`
	AvgMarginRate *float64              `json:"avgMarginRate"`
	Allocations   []OrderItemStockEntry `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"allocations,omitempty"`
}

func (i *OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// OrderItemStockEntry records how much of one lot served an order item, and at what margin.
type OrderItemStockEntry struct {
	BaseModel
	OrderItemID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"orderItemId"`
	StockEntryID uuid.UUID   `gorm:"type:uuid;not null;index" json:"stockEntryId"`
	StockEntry   *StockEntry `gorm:"constraint:OnDelete:RESTRICT" json:"stockEntry,omitempty"`
	Quantity     int         `gorm:"not null" json:"quantity"`
	UnitCost     int64       `gorm:"not null" json:"unitCost"`
	UnitPrice    int64       `gorm:"not null" json:"unitPrice"`
	MarginAmount int64       `gorm:"not null" json:"marginAmount"`
	MarginRate   float64     `gorm:"not null" json:"marginRate"`
}

func (OrderItemStockEntry) TableName() string {
	return "order_item_stock_entries"
}
