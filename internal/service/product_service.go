package service

import (
	"context"
	"errors"
	"fmt"

	"naratani-inventory/internal/cache"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/ws"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/slug"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductService interface {
	Create(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error)
	Get(ctx context.Context, idOrSlug string) (*model.Product, error)
	List(ctx context.Context, q *ProductListQuery) (*pagination.Result[model.Product], error)
	Update(ctx context.Context, actor Actor, idOrSlug string, req *UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, actor Actor, idOrSlug string) error
}

type CreateProductRequest struct {
	Name       string     `json:"name" validate:"required,max=255"`
	Price      int64      `json:"price" validate:"gte=0"`
	Stock      int        `json:"stock" validate:"gte=0"`
	CategoryID *uuid.UUID `json:"categoryId"`
}

// UpdateProductRequest is a partial update; a null categoryId uncategorises the product.
type UpdateProductRequest struct {
	Name       *string      `json:"name" validate:"omitempty,min=1,max=255"`
	Price      *int64       `json:"price" validate:"omitempty,gte=0"`
	Stock      *int         `json:"stock" validate:"omitempty,gte=0"`
	CategoryID NullableUUID `json:"categoryId"`
}

type ProductListQuery struct {
	ListQuery
	Category string `query:"category"`
	Search   string `query:"search"`
	MinPrice *int64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice *int64 `query:"maxPrice" validate:"omitempty,gte=0"`
	InStock  string `query:"inStock" validate:"omitempty,oneof=true false"`
}

type productService struct {
	store  repository.Store
	events EventPublisher
	invalidator
}

func NewProductService(store repository.Store, events EventPublisher, c cache.Cache, log logrus.FieldLogger) ProductService {
	return &productService{
		store:       store,
		events:      events,
		invalidator: invalidator{cache: c, log: log, module: "productService"},
	}
}

func (s *productService) Create(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error) {
	// 1. Validate request
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()

	// 2. Category, when given, must exist
	if err := s.checkCategory(ctx, repos, req.CategoryID); err != nil {
		return nil, err
	}

	// 3. Derive slug
	productSlug, err := makeSlug(req.Name)
	if err != nil {
		return nil, err
	}

	// 4. Save
	product := &model.Product{
		Name:       req.Name,
		Slug:       productSlug,
		Price:      req.Price,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
	}
	if err := repos.Products.Create(ctx, product); err != nil {
		return nil, slugConflict(err)
	}

	created, err := repos.Products.FindByID(ctx, product.ID)
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	s.afterChange(ctx, "Create", actor, "product_created", created, fmt.Sprintf("%s created product '%s'", actor.Name, created.Name))
	return created, nil
}

func (s *productService) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	return s.find(ctx, s.store.Repositories(), idOrSlug)
}

func (s *productService) List(ctx context.Context, q *ProductListQuery) (*pagination.Result[model.Product], error) {
	if err := validator.Struct(q); err != nil {
		return nil, err
	}
	params, err := q.params(repository.ProductSortColumns)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalUUID(q.Category, "category")
	if err != nil {
		return nil, err
	}

	products, total, err := s.store.Repositories().Products.List(ctx, repository.ProductFilter{
		ListParams: params,
		CategoryID: categoryID,
		Search:     q.Search,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		InStock:    parseOptionalBool(q.InStock),
	})
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	return pagination.NewResult(products, params.Page, params.Limit, total), nil
}

func (s *productService) Update(ctx context.Context, actor Actor, idOrSlug string, req *UpdateProductRequest) (*model.Product, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()

	existing, err := s.find(ctx, repos, idOrSlug)
	if err != nil {
		return nil, err
	}
	oldStock := existing.Stock

	if req.Name != nil {
		productSlug, err := makeSlug(*req.Name)
		if err != nil {
			return nil, err
		}
		existing.Name = *req.Name
		existing.Slug = productSlug
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Stock != nil {
		existing.Stock = *req.Stock
	}
	if req.CategoryID.Set {
		if err := s.checkCategory(ctx, repos, req.CategoryID.Ptr()); err != nil {
			return nil, err
		}
		existing.CategoryID = req.CategoryID.Ptr()
	}
	existing.Category = nil

	if err := repos.Products.Update(ctx, existing); err != nil {
		return nil, slugConflict(err)
	}

	updated, err := repos.Products.FindByID(ctx, existing.ID)
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	s.afterChange(ctx, "Update", actor, "product_updated", map[string]interface{}{
		"id":        updated.ID,
		"name":      updated.Name,
		"old_stock": oldStock,
		"new_stock": updated.Stock,
		"price":     updated.Price,
	}, fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name))
	return updated, nil
}

func (s *productService) Delete(ctx context.Context, actor Actor, idOrSlug string) error {
	repos := s.store.Repositories()
	existing, err := s.find(ctx, repos, idOrSlug)
	if err != nil {
		return err
	}

	if err := repos.Products.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperr.BadRequest("Product is used by orders or stock entries and cannot be deleted")
		}
		return repoError(err, "Product not found")
	}
	s.afterChange(ctx, "Delete", actor, "product_deleted", map[string]interface{}{"id": existing.ID, "name": existing.Name},
		fmt.Sprintf("%s deleted product '%s'", actor.Name, existing.Name))
	return nil
}

// find resolves a path key that is either a product id or its slug.
func (s *productService) find(ctx context.Context, repos repository.Repositories, idOrSlug string) (*model.Product, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		product, err := repos.Products.FindByID(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, repoError(err, "Product not found")
		}
	}
	product, err := repos.Products.FindBySlug(ctx, idOrSlug)
	if err != nil {
		return nil, repoError(err, "Product not found")
	}
	return product, nil
}

func (s *productService) checkCategory(ctx context.Context, repos repository.Repositories, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := repos.Categories.FindByID(ctx, *id); err != nil {
		return repoError(err, "Category not found")
	}
	return nil
}

func (s *productService) afterChange(ctx context.Context, funcName string, actor Actor, action string, data interface{}, message string) {
	s.invalidate(ctx, funcName, cache.TagProductValue)
	s.events.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  action,
		Data:    data,
		User:    actor.wsActor(),
		Message: message,
	})
}

func makeSlug(name string) (string, error) {
	s := slug.Make(name)
	if s == "" {
		return "", apperr.BadRequest("Product name must contain letters or digits")
	}
	return s, nil
}

func slugConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict("Product with this slug already exists")
	}
	return repoError(err, "Product not found")
}
