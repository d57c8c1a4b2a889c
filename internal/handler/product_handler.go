package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	var q service.ProductListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return err
	}
	return created(c, product, "Product created successfully")
}

// Get accepts either the product id or its slug.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("idOrSlug"))
	if err != nil {
		return err
	}
	return success(c, product, "")
}

// Update serves both PUT and PATCH; absent fields are left unchanged.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), actor(c), c.Params("idOrSlug"), &req)
	if err != nil {
		return err
	}
	return success(c, product, "Product updated successfully")
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), actor(c), c.Params("idOrSlug")); err != nil {
		return err
	}
	return success(c, nil, "Product deleted successfully")
}
