package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StockEntryHandler struct {
	service service.StockEntryService
}

func NewStockEntryHandler(s service.StockEntryService) *StockEntryHandler {
	return &StockEntryHandler{service: s}
}

func (h *StockEntryHandler) List(c *fiber.Ctx) error {
	var q service.StockEntryListQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

func (h *StockEntryHandler) Create(c *fiber.Ctx) error {
	var req service.CreateStockEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.service.Create(c.UserContext(), actor(c), &req)
	if err != nil {
		return err
	}
	return created(c, entry, "Stock entry created successfully")
}

func (h *StockEntryHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, entry, "")
}

// ByProduct lists lots with remaining stock, oldest purchase first
// GET /stock-entries/product/:productId
func (h *StockEntryHandler) ByProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "productId")
	if err != nil {
		return err
	}
	entries, err := h.service.ListAvailable(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, entries, "")
}

func (h *StockEntryHandler) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return success(c, nil, "Stock entry deleted successfully")
}
