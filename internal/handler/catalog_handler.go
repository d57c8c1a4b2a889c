package handler

import (
	"context"

	"naratani-inventory/internal/model"
	"naratani-inventory/internal/service"
	"naratani-inventory/pkg/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// namedService is the CRUD surface shared by categories, shops and suppliers.
type namedService[T, C, U any] interface {
	Create(ctx context.Context, req *C) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, q *service.NamedListQuery) (*pagination.Result[T], error)
	Update(ctx context.Context, id uuid.UUID, req *U) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogHandler serves one named catalogue resource.
type CatalogHandler[T, C, U any] struct {
	service namedService[T, C, U]
	label   string
}

type (
	CategoryHandler = CatalogHandler[model.ProductCategory, service.CategoryRequest, service.UpdateCategoryRequest]
	ShopHandler     = CatalogHandler[model.Shop, service.ShopRequest, service.UpdateShopRequest]
	SupplierHandler = CatalogHandler[model.Supplier, service.SupplierRequest, service.UpdateSupplierRequest]
)

func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s, label: "Category"}
}

func NewShopHandler(s service.ShopService) *ShopHandler {
	return &ShopHandler{service: s, label: "Shop"}
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s, label: "Supplier"}
}

func (h *CatalogHandler[T, C, U]) List(c *fiber.Ctx) error {
	var q service.NamedListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

func (h *CatalogHandler[T, C, U]) Create(c *fiber.Ctx) error {
	var req C
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return created(c, out, h.label+" created successfully")
}

func (h *CatalogHandler[T, C, U]) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, out, "")
}

func (h *CatalogHandler[T, C, U]) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req U
	if err := parseBody(c, &req); err != nil {
		return err
	}
	out, err := h.service.Update(c.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return success(c, out, h.label+" updated successfully")
}

func (h *CatalogHandler[T, C, U]) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return success(c, nil, h.label+" deleted successfully")
}
