package model

// ProductCategory groups products. Deleting one leaves its products uncategorised.
type ProductCategory struct {
	BaseModel
	Name     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"products,omitempty"`

	ProductCount *int64 `gorm:"->;-:migration" json:"productCount,omitempty"`
}
