package model

import "github.com/google/uuid"

// Product is a sellable item. Stock is on hand, ReservedStock is the part of it
// committed to PENDING orders.
type Product struct {
	BaseModel
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	Slug          string           `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Price         int64            `gorm:"not null;default:0" json:"price"`
	Stock         int              `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	ReservedStock int              `gorm:"not null;default:0;check:chk_products_reserved_stock,reserved_stock >= 0" json:"reservedStock"`
	CategoryID    *uuid.UUID       `gorm:"type:uuid;index" json:"categoryId"`
	Category      *ProductCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// Available is the stock not yet committed to pending orders
func (p *Product) Available() int {
	return p.Stock - p.ReservedStock
}
