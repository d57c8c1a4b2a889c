package repository

import (
	"context"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, f NamedFilter) ([]model.Supplier, int64, error)
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

const stockEntryCountSelect = "suppliers.*, " +
	"(SELECT COUNT(*) FROM stock_entries WHERE stock_entries.supplier_id = suppliers.id) AS stock_entry_count"

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(supplier).Error, "create supplier")
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).Select(stockEntryCountSelect).First(&supplier, "suppliers.id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find supplier")
	}
	return &supplier, nil
}

func (r *supplierRepo) List(ctx context.Context, f NamedFilter) ([]model.Supplier, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Supplier{})
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("(suppliers.name ILIKE ? OR suppliers.email ILIKE ?)", pattern, pattern)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count suppliers")
	}

	if f.IncludeCount {
		q = q.Select(stockEntryCountSelect)
	}
	var suppliers []model.Supplier
	err := paginate(q, "suppliers", f.ListParams, NamedSortColumns).Find(&suppliers).Error
	return suppliers, total, translate(err, "list suppliers")
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	res := r.db.WithContext(ctx).Model(supplier).
		Select("name", "email", "phone", "address", "updated_at").
		Updates(supplier)
	return expectRows(res, ErrNotFound, "update supplier")
}

// Delete fails with ErrReferenced while stock entries point at the supplier.
func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Supplier{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete supplier")
}
