package handler

import (
	"context"

	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// period parses the period query and runs load with it.
func period[T any](c *fiber.Ctx, load func(context.Context, *service.PeriodQuery) (T, error)) error {
	var q service.PeriodQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	data, err := load(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return success(c, data, "")
}

// Sales returns completed revenue and order count
// GET /dashboard/sales?period=daily|monthly|yearly
func (h *DashboardHandler) Sales(c *fiber.Ctx) error {
	return period(c, h.service.Sales)
}

// Orders returns order counts per status
func (h *DashboardHandler) Orders(c *fiber.Ctx) error {
	return period(c, h.service.Orders)
}

func (h *DashboardHandler) Users(c *fiber.Ctx) error {
	return period(c, h.service.Users)
}

func (h *DashboardHandler) Shops(c *fiber.Ctx) error {
	return period(c, h.service.Shops)
}

func (h *DashboardHandler) GrossProfit(c *fiber.Ctx) error {
	return period(c, h.service.GrossProfit)
}

func (h *DashboardHandler) AvgMargin(c *fiber.Ctx) error {
	return period(c, h.service.AvgMargin)
}

// ProductValue returns the value of stock left on hand
// GET /dashboard/product-left-value
func (h *DashboardHandler) ProductValue(c *fiber.Ctx) error {
	value, err := h.service.ProductValue(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, value, "")
}

// POST /dashboard/revalidate
func (h *DashboardHandler) Revalidate(c *fiber.Ctx) error {
	if err := h.service.Revalidate(c.UserContext()); err != nil {
		return err
	}
	return success(c, nil, "Dashboard cache revalidated")
}
