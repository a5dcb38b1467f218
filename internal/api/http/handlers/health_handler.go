package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db      *persistence.Postgres
	version string
}

// NewHealthHandler builds the handler.
func NewHealthHandler(db *persistence.Postgres, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Live handles GET /healthz.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Ready handles GET /readyz.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.db.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
