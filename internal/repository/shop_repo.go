package repository

import (
	"context"

	"naratani-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	List(ctx context.Context, f NamedFilter) ([]model.Shop, int64, error)
	Update(ctx context.Context, shop *model.Shop) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type shopRepo struct {
	db *gorm.DB
}

func NewShopRepo(db *gorm.DB) ShopRepository {
	return &shopRepo{db}
}

const orderCountSelect = "shops.*, " +
	"(SELECT COUNT(*) FROM orders WHERE orders.shop_id = shops.id) AS order_count"

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return translate(r.db.WithContext(ctx).Create(shop).Error, "create shop")
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	err := r.db.WithContext(ctx).Select(orderCountSelect).First(&shop, "shops.id = ?", id).Error
	if err != nil {
		return nil, translate(err, "find shop")
	}
	return &shop, nil
}

func (r *shopRepo) List(ctx context.Context, f NamedFilter) ([]model.Shop, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Shop{})
	if f.Search != "" {
		q = q.Where("shops.name ILIKE ?", likePattern(f.Search))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count shops")
	}

	if f.IncludeCount {
		q = q.Select(orderCountSelect)
	}
	var shops []model.Shop
	err := paginate(q, "shops", f.ListParams, NamedSortColumns).Find(&shops).Error
	return shops, total, translate(err, "list shops")
}

func (r *shopRepo) Update(ctx context.Context, shop *model.Shop) error {
	res := r.db.WithContext(ctx).Model(shop).Select("name", "updated_at").Updates(shop)
	return expectRows(res, ErrNotFound, "update shop")
}

// Delete fails with ErrReferenced while orders point at the shop.
func (r *shopRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Shop{}, "id = ?", id)
	return expectRows(res, ErrNotFound, "delete shop")
}
