package repository

import (
	"context"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.ProductCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductCategory, error)
	List(ctx context.Context, f NamedFilter) ([]model.ProductCategory, int64, error)
	Update(ctx context.Context, category *model.ProductCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

const productCountSelect = "product_categories.*, " +
	"(SELECT COUNT(*) FROM products WHERE products.category_id = product_categories.id) AS product_count"

func (r *categoryRepo) Create(ctx context.Context, category *model.ProductCategory) error {
	return translate(r.db.WithContext(ctx).Create(category).Error, "create category")
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductCategory, error) {
	var category model.ProductCategory
	err := r.db.WithContext(ctx).Select(productCountSelect).First(&category, "product_categories.id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find category")
	}
	return &category, nil
}

func (r *categoryRepo) List(ctx context.Context, f NamedFilter) ([]model.ProductCategory, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ProductCategory{})
	if f.Search != "" {
		q = q.Where("product_categories.name ILIKE ?", likePattern(f.Search))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count categories")
	}

	if f.IncludeCount {
		q = q.Select(productCountSelect)
	}
	var categories []model.ProductCategory
	err := paginate(q, "product_categories", f.ListParams, NamedSortColumns).Find(&categories).Error
	return categories, total, translate(err, "list categories")
}

func (r *categoryRepo) Update(ctx context.Context, category *model.ProductCategory) error {
	res := r.db.WithContext(ctx).Model(category).Select("name", "updated_at").Updates(category)
	return expectRows(res, ErrNotFound, "update category")
}

// Delete removes the category; products keep existing with a NULL category.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductCategory{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete category")
}
