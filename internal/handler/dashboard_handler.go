package handler

import (
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	movement service.MovementService
	store    *repository.Store
	log      *zap.Logger
}

func NewDashboardHandler(movement service.MovementService, store *repository.Store, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{movement: movement, store: store, log: log.Named("http")}
}

// GetStockMovement returns per-day sums of each transaction kind.
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)

	data, err := h.movement.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// Health handles GET /health
func (h *DashboardHandler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
