package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SLAHandler manages response/resolution policies.
type SLAHandler struct {
	policies *service.SLAService
}

// NewSLAHandler builds the handler.
func NewSLAHandler(policies *service.SLAService) *SLAHandler {
	return &SLAHandler{policies: policies}
}

// List handles GET /sla-policies.
func (h *SLAHandler) List(c *fiber.Ctx) error {
	policies, err := h.policies.ListPolicies(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"policies": dto.FromPolicies(policies)})
}

// Create handles POST /sla-policies.
func (h *SLAHandler) Create(c *fiber.Ctx) error {
	input, err := parsePolicyRequest(c)
	if err != nil {
		return err
	}
	policy, err := h.policies.CreatePolicy(c.UserContext(), auth.Principal(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPolicy(policy))
}

// Update handles PUT /sla-policies/:id.
func (h *SLAHandler) Update(c *fiber.Ctx) error {
	input, err := parsePolicyRequest(c)
	if err != nil {
		return err
	}
	policy, err := h.policies.UpdatePolicy(c.UserContext(), auth.Principal(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromPolicy(policy))
}

// Delete handles DELETE /sla-policies/:id.
func (h *SLAHandler) Delete(c *fiber.Ctx) error {
	if err := h.policies.DeletePolicy(c.UserContext(), auth.Principal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parsePolicyRequest(c *fiber.Ctx) (service.PolicyInput, error) {
	var req dto.SLAPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return service.PolicyInput{}, errorutil.NewValidationError("invalid request body", nil)
	}
	return service.PolicyInput{
		Name:              req.Name,
		OrganizationID:    req.OrganizationID,
		Priority:          domain.TicketPriority(req.Priority),
		ResponseHours:     req.ResponseHours,
		ResponseMinutes:   req.ResponseMinutes,
		ResolutionHours:   req.ResolutionHours,
		ResolutionMinutes: req.ResolutionMinutes,
		Description:       req.Description,
		IsActive:          req.IsActive,
	}, nil
}
