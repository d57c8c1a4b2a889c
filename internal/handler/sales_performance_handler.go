package handler

import (
	"naratani-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SalesPerformanceHandler struct {
	service service.SalesPerformanceService
}

func NewSalesPerformanceHandler(s service.SalesPerformanceService) *SalesPerformanceHandler {
	return &SalesPerformanceHandler{service: s}
}

// Me returns the caller's own performance, all-time or for ?month=&year=
// GET /sales-performance/me
func (h *SalesPerformanceHandler) Me(c *fiber.Ctx) error {
	var q service.MonthQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.Me(c.UserContext(), actor(c), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}

// GET /sales-performance/leaderboard
func (h *SalesPerformanceHandler) Leaderboard(c *fiber.Ctx) error {
	var q service.MonthQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}
	res, err := h.service.Leaderboard(c.UserContext(), actor(c), &q)
	if err != nil {
		return err
	}
	return success(c, res, "")
}
