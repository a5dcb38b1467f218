package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle over HTTP.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler builds the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor := auth.Principal(c)
	input := service.ListTicketsInput{
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	for _, raw := range splitQuery(c.Query("status")) {
		status := domain.TicketStatus(raw)
		if !domain.ValidStatus(status) {
			return errorutil.NewValidationError("unknown ticket status", map[string]any{"status": raw})
		}
		input.Statuses = append(input.Statuses, status)
	}
	for _, raw := range splitQuery(c.Query("priority")) {
		priority := domain.TicketPriority(raw)
		if !domain.ValidPriority(priority) {
			return errorutil.NewValidationError("unknown priority", map[string]any{"priority": raw})
		}
		input.Priorities = append(input.Priorities, priority)
	}

	tickets, err := h.tickets.List(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.FromTickets(tickets, time.Now())})
}

// ApprovalQueue handles GET /tickets/approvals.
func (h *TicketsHandler) ApprovalQueue(c *fiber.Ctx) error {
	tickets, err := h.tickets.ApprovalQueue(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"tickets": dto.FromTickets(tickets, time.Now())})
}

// Get handles GET /tickets/:number.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetByNumber(c.UserContext(), auth.Principal(c), number)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket, time.Now()))
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), auth.Principal(c), service.CreateTicketInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     domain.TicketPriority(req.Priority),
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket, time.Now()))
}

// Update handles PATCH /tickets/:number.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}

	input := service.UpdateTicketInput{
		Reason:       req.Reason,
		AssigneeID:   req.AssigneeID,
		DepartmentID: req.DepartmentID,
		DueDate:      req.DueDate,
		Solution:     req.Solution,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		input.Priority = &priority
	}

	ticket, err := h.tickets.Update(c.UserContext(), auth.Principal(c), number, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket, time.Now()))
}

// Approve handles POST /tickets/:number/approve.
func (h *TicketsHandler) Approve(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Approve(c.UserContext(), auth.Principal(c), number)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket, time.Now()))
}

// Reject handles POST /tickets/:number/reject.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	var req dto.RejectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.Reject(c.UserContext(), auth.Principal(c), number, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket, time.Now()))
}

// Comments handles GET /tickets/:number/comments.
func (h *TicketsHandler) Comments(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	thread, err := h.tickets.CommentThread(c.UserContext(), auth.Principal(c), number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": dto.FromCommentViews(thread)})
}

// AddComment handles POST /tickets/:number/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	number, err := ticketNumber(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	view, err := h.tickets.AddComment(c.UserContext(), auth.Principal(c), number, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCommentView(view))
}

func ticketNumber(c *fiber.Ctx) (int64, error) {
	number, err := strconv.ParseInt(c.Params("number"), 10, 64)
	if err != nil {
		return 0, errorutil.NewValidationError("ticket number must be numeric", map[string]any{"number": c.Params("number")})
	}
	return number, nil
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
