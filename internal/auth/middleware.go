package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Locals key holding the authenticated user.
const principalKey = "auth.principal"

// Principal returns the authenticated user stored by Middleware, or
// nil when the route is unauthenticated.
func Principal(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(principalKey).(*domain.User)
	return user
}

// Middleware authenticates requests with a bearer token and loads the
// user into the request locals.
func Middleware(tokens *TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errorutil.NewUnauthorized("missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorutil.NewUnauthorized("malformed authorization header")
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			return err
		}

		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			return errorutil.NewAuthExpired("account no longer available")
		}
		if !user.IsActive {
			return errorutil.NewForbidden("account is deactivated")
		}

		c.Locals(principalKey, user)
		return c.Next()
	}
}

// RequireRole restricts a route to the given roles.
func RequireRole(roles ...domain.UserRole) fiber.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		user := Principal(c)
		if user == nil {
			return errorutil.NewUnauthorized("authentication required")
		}
		if _, ok := allowed[user.Role]; !ok {
			return errorutil.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
