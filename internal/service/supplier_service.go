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

type SupplierRequest struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// UpdateSupplierRequest is partial; explicit nulls clear the contact fields.
type UpdateSupplierRequest struct {
	Name    *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Email   NullableString `json:"email"`
	Phone   NullableString `json:"phone"`
	Address NullableString `json:"address"`
}

// contactRules validates the present nullable fields.
type contactRules struct {
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type SupplierService interface {
	Create(ctx context.Context, req *SupplierRequest) (*model.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.Supplier], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateSupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	store repository.Store
}

func NewSupplierService(store repository.Store) SupplierService {
	return &supplierService{store: store}
}

func (s *supplierService) Create(ctx context.Context, req *SupplierRequest) (*model.Supplier, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	supplier := &model.Supplier{Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address}
	if err := s.store.Repositories().Suppliers.Create(ctx, supplier); err != nil {
		return nil, nameConflict(err, "Supplier")
	}
	return supplier, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.store.Repositories().Suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Supplier not found")
	}
	return supplier, nil
}

func (s *supplierService) List(ctx context.Context, q *NamedListQuery) (*pagination.Result[model.Supplier], error) {
	f, err := q.filter()
	if err != nil {
		return nil, err
	}
	suppliers, total, err := s.store.Repositories().Suppliers.List(ctx, f)
	if err != nil {
		return nil, repoError(err, "Supplier not found")
	}
	return pagination.NewResult(suppliers, f.Page, f.Limit, total), nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req *UpdateSupplierRequest) (*model.Supplier, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if err := validator.Struct(&contactRules{Email: req.Email.Ptr(), Phone: req.Phone.Ptr(), Address: req.Address.Ptr()}); err != nil {
		return nil, err
	}

	repos := s.store.Repositories()
	supplier, err := repos.Suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Supplier not found")
	}
	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Email.Set {
		supplier.Email = req.Email.Ptr()
	}
	if req.Phone.Set {
		supplier.Phone = req.Phone.Ptr()
	}
	if req.Address.Set {
		supplier.Address = req.Address.Ptr()
	}

	if err := repos.Suppliers.Update(ctx, supplier); err != nil {
		return nil, repoError(err, "Supplier not found")
	}
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Repositories().Suppliers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return apperr.BadRequest("Supplier has stock entries and cannot be deleted")
		}
		return repoError(err, "Supplier not found")
	}
	return nil
}
