package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	var q service.OrderListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

// Create reserves stock for every item
// POST /orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return err
	}
	return created(c, order, "Order created successfully")
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return success(c, order, "")
}

// Accept allocates stock lots to every item
// PUT /orders/:id/accept
func (h *OrderHandler) Accept(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	var req service.AcceptOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	order, err := h.service.Accept(c.UserContext(), actor(c), id, &req)
	if err != nil {
		return err
	}
	return success(c, order, "Order accepted successfully")
}

// PUT /orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.Cancel(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return success(c, order, "Order cancelled successfully")
}

// PUT /orders/:id/complete
func (h *OrderHandler) Complete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.Complete(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return success(c, order, "Order completed successfully")
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return success(c, nil, "Order deleted successfully")
}
