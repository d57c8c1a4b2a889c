package model

type Shop struct {
	BaseModel
	Name   string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Orders []Order `gorm:"constraint:OnDelete:RESTRICT" json:"orders,omitempty"`

	OrderCount *int64 `gorm:"->;-:migration" json:"orderCount,omitempty"`
}
