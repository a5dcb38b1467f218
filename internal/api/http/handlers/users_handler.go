package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler covers authentication and the mention directory.
type UsersHandler struct {
	authSvc *service.AuthService
	tickets *service.TicketService
}

// NewUsersHandler builds the handler.
func NewUsersHandler(authSvc *service.AuthService, tickets *service.TicketService) *UsersHandler {
	return &UsersHandler{authSvc: authSvc, tickets: tickets}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid request body", nil)
	}
	token, user, err := h.authSvc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: token, User: dto.FromUser(user)})
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user := auth.Principal(c)
	if user == nil {
		return errorutil.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.FromUser(user))
}

// Refresh handles POST /auth/refresh, reissuing the bearer token for
// the authenticated principal.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	user := auth.Principal(c)
	token, err := h.authSvc.Refresh(user)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: token, User: dto.FromUser(user)})
}

// MentionDirectory handles GET /users/mentions: the directory the
// comment editor filters as the user types after '@'.
func (h *UsersHandler) MentionDirectory(c *fiber.Ctx) error {
	users, err := h.tickets.Directory(c.UserContext(), auth.Principal(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": dto.FromUsers(users)})
}
