package repository

import (
	"context"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Reserve moves qty from sellable stock into the reservation, failing with
	// ErrInsufficientStock when stock < qty.
	Reserve(ctx context.Context, id uuid.UUID, qty int) error
	// ReleaseReservation lowers reservedStock by qty, never below zero.
	ReleaseReservation(ctx context.Context, id uuid.UUID, qty int) error
	// Restock puts qty back on hand; with release it also drops the reservation.
	Restock(ctx context.Context, id uuid.UUID, qty int, release bool) error
	AddStock(ctx context.Context, id uuid.UUID, qty int) error
	// RemoveStock fails with ErrInsufficientStock when stock < qty.
	RemoveStock(ctx context.Context, id uuid.UUID, qty int) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find product")
	}
	return &product, nil
}

func (r *productRepo) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "slug = ?", slug).Error
	if err != nil {
		return nil, translate(err, "find product by slug")
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, translate(err, "find products")
}

func (r *productRepo) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, translate(err, "check product slug")
}

func (r *productRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("(name ILIKE ? OR slug ILIKE ?)", pattern, pattern)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("stock > 0")
		} else {
			q = q.Where("stock <= 0")
		}
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count products")
	}

	var products []model.Product
	err := paginate(q.Preload("Category"), "products", f.ListParams, ProductSortColumns).Find(&products).Error
	return products, total, translate(err, "list products")
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "slug", "price", "stock", "category_id", "updated_at").
		Updates(product)
	return expectRows(res, ErrNotFound, "update product")
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete product")
}

func (r *productRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":          gorm.Expr("stock - ?", qty),
			"reserved_stock": gorm.Expr("reserved_stock + ?", qty),
		})
	return expectRows(res, ErrInsufficientStock, "reserve stock")
}

func (r *productRepo) ReleaseReservation(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("reserved_stock", gorm.Expr("GREATEST(reserved_stock - ?, 0)", qty))
	return expectRows(res, ErrNotFound, "release reservation")
}

func (r *productRepo) Restock(ctx context.Context, id uuid.UUID, qty int, release bool) error {
	updates := map[string]interface{}{
		"stock": gorm.Expr("stock + ?", qty),
	}
	if release {
		updates["reserved_stock"] = gorm.Expr("GREATEST(reserved_stock - ?, 0)", qty)
	}
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	return expectRows(res, ErrNotFound, "restock product")
}

func (r *productRepo) AddStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	return expectRows(res, ErrNotFound, "add stock")
}

func (r *productRepo) RemoveStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return expectRows(res, ErrInsufficientStock, "remove stock")
}
