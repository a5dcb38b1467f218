package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// DashboardHandler serves the aggregate counts the dashboard polls.
type DashboardHandler struct {
	stats *service.StatsService
}

// NewDashboardHandler builds the handler.
func NewDashboardHandler(stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Snapshot handles GET /tickets/stats/dashboard. Clients poll this on a
// fixed cadence and discard out-of-order responses by taken_at.
func (h *DashboardHandler) Snapshot(c *fiber.Ctx) error {
	view, err := h.stats.Dashboard(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.DashboardResponse{
		Snapshot:      view.Snapshot,
		RecentTickets: dto.FromTickets(view.RecentTickets, time.Now()),
		MyOpenTickets: view.MyOpenTickets,
	})
}
