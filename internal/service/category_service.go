package service

import (
	"context"
	"errors"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/repository"
	"naratani-inventory/pkg/apperr"
	"naratani-inventory/pkg/pagination"
	"naratani-inventory/pkg/validator"

	"github.com/google/uuid"
)

// NamedListQuery is the list query of categories, shops and suppliers.
type NamedListQuery struct {
	ListQuery
	Search       string `query:"search"`
	IncludeCount string `query:"includeCount" validate:"omitempty,oneof=true false"`
}

func (q *NamedListQuery) filter() (repository.NamedFilter, error) {
	if err := validator.Struct(q); err != nil {
		return repository.NamedFilter{}, err
	}
	params, err := q.params(repository.NamedSortColumns)
	if err != nil {
		return repository.NamedFilter{}, err
	}
	return repository.NamedFilter{ListParams: params, Search: q.Search, IncludeCount: q.IncludeCount == "true"}, nil
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest) (*model.ProductCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ProductCategory, error)
	List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.ProductCategory], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*model.ProductCategory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	store repository.Store
}

func NewCategoryService(store repository.Store) CategoryService {
	return &categoryService{store: store}
}

func (s *categoryService) Create(ctx context.Context, req *CategoryRequest) (*model.ProductCategory, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	category := &model.ProductCategory{Name: req.Name}
	if err := s.store.Repositories().Categories.Create(ctx, category); err != nil {
		return nil, nameConflict(err, "Category")
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*model.ProductCategory, error) {
	category, err := s.store.Repositories().Categories.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Category not found")
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.ProductCategory], error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	categories, total, err := s.store.Repositories().Categories.List(ctx, f)
	if err != nil {
		return nil, repoError(err, "Category not found")
	}
	return pagination.NewResult(categories, f.Page, f.Limit, total), nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *UpdateCategoryRequest) (*model.ProductCategory, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	repos := s.store.Repositories()
	category, err := repos.Categories.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Category not found")
	}
	if req.Name == nil {
		return category, nil
	}

	category.Name = *req.Name
	if err := repos.Categories.Update(ctx, category); err != nil {
		return nil, nameConflict(err, "Category")
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return repoError(s.store.Repositories().Categories.Delete(ctx, id), "Category not found")
}

// nameConflict reports a unique name violation for entity.
func nameConflict(err error, entity string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Conflict(entity + " with this name already exists")
	}
	return repoError(err, entity+" not found")
}
