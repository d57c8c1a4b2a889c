package repository

import (
	"context"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockEntryRepository interface {
	Create(ctx context.Context, entry *model.StockEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.StockEntry, error)
	List(ctx context.Context, f StockEntryFilter) ([]model.StockEntry, int64, error)
	// ListAvailable returns the product's lots that still have stock, oldest purchase first.
	ListAvailable(ctx context.Context, productID uuid.UUID) ([]model.StockEntry, error)
	CountAllocations(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Allocate takes qty from the lot, failing with ErrInsufficientLot when remainingQty < qty.
	Allocate(ctx context.Context, id uuid.UUID, qty int) error
	// Restore gives qty back to the lot.
	Restore(ctx context.Context, id uuid.UUID, qty int) error
}

type stockEntryRepo struct {
	db *gorm.DB
}

func NewStockEntryRepo(db *gorm.DB) StockEntryRepository {
	return &stockEntryRepo{db}
}

func withLotRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "slug") }).
		Preload("Supplier", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") })
}

func (r *stockEntryRepo) Create(ctx context.Context, entry *model.StockEntry) error {
	return translate(r.db.WithContext(ctx).Omit("Product", "Supplier").Create(entry).Error, "create stock entry")
}

func (r *stockEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	var entry model.StockEntry
	err := withLotRelations(r.db.WithContext(ctx)).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find stock entry")
	}
	return &entry, nil
}

func (r *stockEntryRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	if len(ids) == 0 {
		return entries, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&entries).Error
	return entries, translate(err, "find stock entries")
}

func (r *stockEntryRepo) List(ctx context.Context, f StockEntryFilter) ([]model.StockEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockEntry{})
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.HasStock != nil {
		if *f.HasStock {
			q = q.Where("remaining_qty > 0")
		} else {
			q = q.Where("remaining_qty <= 0")
		}
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count stock entries")
	}

	var entries []model.StockEntry
	err := withLotRelations(q).
		Order("purchase_date DESC").
		Offset(f.Page * f.Limit).
		Limit(f.Limit).
		Find(&entries).Error
	return entries, total, translate(err, "list stock entries")
}

func (r *stockEntryRepo) ListAvailable(ctx context.Context, productID uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.WithContext(ctx).
		Preload("Supplier", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("product_id = ? AND remaining_qty > 0", productID).
		Order("purchase_date ASC").
		Order("created_at ASC").
		Find(&entries).Error
	return entries, translate(err, "list available stock entries")
}

func (r *stockEntryRepo) CountAllocations(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItemStockEntry{}).
		Where("stock_entry_id = ?", id).
		Count(&count).Error
	return count, translate(err, "count allocations")
}

func (r *stockEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.StockEntry{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete stock entry")
}

func (r *stockEntryRepo) Allocate(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.StockEntry{}).
		Where("id = ? AND remaining_qty >= ?", id, qty).
		Update("remaining_qty", gorm.Expr("remaining_qty - ?", qty))
	return expectRows(res, ErrInsufficientLot, "allocate stock entry")
}

func (r *stockEntryRepo) Restore(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.StockEntry{}).
		Where("id = ?", id).
		Update("remaining_qty", gorm.Expr("LEAST(remaining_qty + ?, quantity)", qty))
	return expectRows(res, ErrNotFound, "restore stock entry")
}
