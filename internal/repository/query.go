package repository

import (
	"strings"

	"naratani-inventory/internal/model"
	"naratani-inventory/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type ProductFilter struct {
	ListParams
	CategoryID *uuid.UUID
	Search     string
	MinPrice   *int64
	MaxPrice   *int64
	InStock    *bool
}

// NamedFilter serves the category, shop and supplier lists.
type NamedFilter struct {
	ListParams
	Search       string
	IncludeCount bool
}

type StockEntryFilter struct {
	Page       int
	Limit      int
	ProductID  *uuid.UUID
	SupplierID *uuid.UUID
	HasStock   *bool
}

type OrderFilter struct {
	ListParams
	Status    *model.OrderStatus
	ShopID    *uuid.UUID
	CreatedBy *uuid.UUID
}

type UserFilter struct {
	ListParams
	Search string
	Role   string
}

// Sortable columns per list, keyed by their API names.
var (
	ProductSortColumns = map[string]string{
		"id": "id", "name": "name", "price": "price", "stock": "stock",
		"createdAt": "created_at", "updatedAt": "updated_at",
	}
	NamedSortColumns = map[string]string{
		"id": "id", "name": "name", "createdAt": "created_at", "updatedAt": "updated_at",
	}
	OrderSortColumns = map[string]string{
		"id": "id", "status": "status", "totalAmount": "total_amount",
		"createdAt": "created_at", "updatedAt": "updated_at",
	}
	UserSortColumns = map[string]string{
		"name": "name", "email": "email", "createdAt": "created_at",
	}
)

// paginate applies a whitelisted ORDER BY plus offset/limit. Unknown sort keys fall
// back to created_at desc.
func paginate(db *gorm.DB, table string, p ListParams, columns map[string]string) *gorm.DB {
	col, ok := columns[p.SortBy]
	if !ok {
		col = "created_at"
	}
	desc := !strings.EqualFold(p.SortOrder, "asc")
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: col}, Desc: desc}).
		Offset(pagination.Offset(p.Page, p.Limit)).
		Limit(p.Limit)
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
