package model

type Supplier struct {
	BaseModel
	Name         string       `gorm:"type:varchar(255);not null;index" json:"name"`
	Email        *string      `gorm:"type:varchar(255)" json:"email"`
	Phone        *string      `gorm:"type:varchar(50)" json:"phone"`
	Address      *string      `gorm:"type:varchar(500)" json:"address"`
	StockEntries []StockEntry `gorm:"constraint:OnDelete:RESTRICT" json:"stockEntries,omitempty"`

	StockEntryCount *int64 `gorm:"->;-:migration" json:"stockEntryCount,omitempty"`
}
