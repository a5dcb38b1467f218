package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// OrgsHandler administers the organization/department/category
// hierarchy.
type OrgsHandler struct {
	orgs *service.OrgService
}

// NewOrgsHandler builds the handler.
func NewOrgsHandler(orgs *service.OrgService) *OrgsHandler {
	return &OrgsHandler{orgs: orgs}
}

// ListOrganizations handles GET /organizations.
func (h *OrgsHandler) ListOrganizations(c *fiber.Ctx) error {
	orgs, err := h.orgs.ListOrganizations(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"organizations": dto.FromOrganizations(orgs)})
}

// CreateOrganization handles POST /organizations.
func (h *OrgsHandler) CreateOrganization(c *fiber.Ctx) error {
	req, err := parseNameDescription(c)
	if err != nil {
		return err
	}
	org, err := h.orgs.CreateOrganization(c.UserContext(), auth.Principal(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrganization(org))
}

// ListDepartments handles GET /departments.
func (h *OrgsHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.orgs.ListDepartments(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"departments": dto.FromDepartments(depts)})
}

// CreateDepartment handles POST /departments.
func (h *OrgsHandler) CreateDepartment(c *fiber.Ctx) error {
	req, err := parseNameDescription(c)
	if err != nil {
		return err
	}
	dept, err := h.orgs.CreateDepartment(c.UserContext(), auth.Principal(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromDepartment(dept))
}

// ListCategories handles GET /categories.
func (h *OrgsHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.orgs.ListCategories(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"categories": dto.FromCategories(categories)})
}

// CreateCategory handles POST /categories.
func (h *OrgsHandler) CreateCategory(c *fiber.Ctx) error {
	req, err := parseNameDescription(c)
	if err != nil {
		return err
	}
	category, err := h.orgs.CreateCategory(c.UserContext(), auth.Principal(c), req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCategory(category))
}

func parseNameDescription(c *fiber.Ctx) (dto.NameDescriptionRequest, error) {
	var req dto.NameDescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return req, errorutil.NewValidationError("invalid request body", nil)
	}
	return req, nil
}
