// Package http assembles the Fiber application: routes, auth guards and
// the shared error envelope.
package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Users   repository.UserRepository
	Tokens  *auth.TokenManager
	Tickets *service.TicketService
	Stats   *service.StatsService
	SLA     *service.SLAService
	Auth    *service.AuthService
	Orgs    *service.OrgService

	Health *handlers.HealthHandler
}

// NewApp builds the Fiber application with all routes registered.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.Config.App.Name,
		ReadTimeout:  deps.Config.App.RequestTimeout(),
		WriteTimeout: deps.Config.App.RequestTimeout(),
		ErrorHandler: ErrorHandler(deps.Logger, deps.Metrics),
	})

	app.Use(recover.New())
	app.Use(observability.RequestLogger(deps.Logger, deps.Metrics))

	app.Get("/healthz", deps.Health.Live)
	app.Get("/readyz", deps.Health.Ready)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.JSON(deps.Metrics.Snapshot())
	})

	ticketsHandler := handlers.NewTicketsHandler(deps.Tickets)
	dashboardHandler := handlers.NewDashboardHandler(deps.Stats)
	slaHandler := handlers.NewSLAHandler(deps.SLA)
	usersHandler := handlers.NewUsersHandler(deps.Auth, deps.Tickets)
	orgsHandler := handlers.NewOrgsHandler(deps.Orgs)

	api := app.Group("/api/v1")
	api.Post("/auth/login", usersHandler.Login)

	authed := api.Group("", auth.Middleware(deps.Tokens, deps.Users))
	authed.Get("/auth/me", usersHandler.Me)
	authed.Post("/auth/refresh", usersHandler.Refresh)
	authed.Get("/users/mentions", usersHandler.MentionDirectory)

	authed.Get("/organizations", auth.RequireRole(domain.RoleAdmin), orgsHandler.ListOrganizations)
	authed.Post("/organizations", auth.RequireRole(domain.RoleAdmin), orgsHandler.CreateOrganization)
	authed.Get("/departments", orgsHandler.ListDepartments)
	authed.Post("/departments", auth.RequireRole(domain.RoleAdmin), orgsHandler.CreateDepartment)
	authed.Get("/categories", orgsHandler.ListCategories)
	authed.Post("/categories", auth.RequireRole(domain.RoleAdmin), orgsHandler.CreateCategory)

	tickets := authed.Group("/tickets")
	tickets.Get("/stats/dashboard", dashboardHandler.Snapshot)
	tickets.Get("/approvals", auth.RequireRole(domain.RoleDepartmentHead, domain.RoleAdmin), ticketsHandler.ApprovalQueue)
	tickets.Get("/", ticketsHandler.List)
	tickets.Post("/", ticketsHandler.Create)
	tickets.Get("/:number", ticketsHandler.Get)
	tickets.Patch("/:number", ticketsHandler.Update)
	tickets.Post("/:number/approve", auth.RequireRole(domain.RoleDepartmentHead), ticketsHandler.Approve)
	tickets.Post("/:number/reject", auth.RequireRole(domain.RoleDepartmentHead), ticketsHandler.Reject)
	tickets.Get("/:number/comments", ticketsHandler.Comments)
	tickets.Post("/:number/comments", ticketsHandler.AddComment)

	policies := authed.Group("/sla-policies")
	policies.Get("/", slaHandler.List)
	policies.Post("/", auth.RequireRole(domain.RoleAdmin), slaHandler.Create)
	policies.Put("/:id", auth.RequireRole(domain.RoleAdmin), slaHandler.Update)
	policies.Delete("/:id", auth.RequireRole(domain.RoleAdmin), slaHandler.Delete)

	return app
}
