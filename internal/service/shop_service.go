package service

import (
	"context"
	"errors"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ShopRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateShopRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type ShopService interface {
	Create(ctx context.Context, req *ShopRequest) (*model.Shop, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.Shop], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateShopRequest) (*model.Shop, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type shopService struct {
	store repository.Store
	invalidator
}

func NewShopService(store repository.Store, c cache.Cache, log logrus.FieldLogger) ShopService {
	return &shopService{store: store, invalidator: invalidator{cache: c, log: log, module: "shopService"}}
}

func (s *shopService) Create(ctx context.Context, req *ShopRequest) (*model.Shop, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	shop := &model.Shop{Name: req.Name}
	if err := s.store.Repositories().Shops.Create(ctx, shop); err != nil {
		return nil, nameConflict(err, "Shop")
	}
	s.invalidate(ctx, "Create", cache.TagShops)
	return shop, nil
}

func (s *shopService) Get(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	shop, err := s.store.Repositories().Shops.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Shop not found")
	}
	return shop, nil
}

func (s *shopService) List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.Shop], error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	shops, total, err := s.store.Repositories().Shops.List(ctx, f)
	if err != nil {
		return nil, repoError(err, "Shop not found")
	}
	return pagination.NewResult(shops, f.Page, f.Limit, total), nil
}

func (s *shopService) Update(ctx context.Context, id uuid.UUID, req *UpdateShopRequest) (*model.Shop, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()
	shop, err := repos.Shops.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Shop not found")
	}
	if req.Name == nil {
		return shop, nil
	}

	shop.Name = *req.Name
	if err := repos.Shops.Update(ctx, shop); err != nil {
		return nil, nameConflict(err, "Shop")
	}
	s.invalidate(ctx, "Update", cache.TagShops)
	return shop, nil
}

func (s *shopService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Repositories().Shops.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperr.BadRequest("Shop has orders and cannot be deleted")
		}
		return repoError(err, "Shop not found")
	}
	s.invalidate(ctx, "Delete", cache.TagShops)
	return nil
}
