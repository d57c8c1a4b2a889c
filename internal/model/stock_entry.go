package model

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry is one purchased lot. Quantity never changes after creation;
// RemainingQty moves between 0 and Quantity as the lot is allocated and restored.
type StockEntry struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Product      *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	SupplierID   uuid.UUID `gorm:"type:uuid;not null;index" json:"supplierId"`
	Supplier     *Supplier `gorm:"constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	Quantity     int       `gorm:"not null" json:"quantity"`
	UnitCost     int64     `gorm:"not null" json:"unitCost"`
	TotalCost    int64     `gorm:"not null" json:"totalCost"`
	RemainingQty int       `gorm:"not null;check:chk_stock_entries_remaining,remaining_qty >= 0 AND remaining_qty <= quantity" json:"remainingQty"`
	PurchaseDate time.Time `gorm:"not null;index" json:"purchaseDate"`
	Notes        *string   `gorm:"type:varchar(500)" json:"notes"`
}

// Untouched reports whether nothing has been taken from the lot
func (s *StockEntry) Untouched() bool {
	return s.RemainingQty == s.Quantity
}
