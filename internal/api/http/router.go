package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Companies      *handlers.CompaniesHandler
	AuthMiddleware *auth.AuthMiddleware
	AuthRateLimit  *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	supportOnly := auth.RequireRole(domain.RoleSupport)

	if cfg.Health != nil {
		app.Get("/health", cfg.Health.Health)
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
		app.Get("/health/metrics", cfg.Health.Metrics)
	}

	authGroup := app.Group("/auth", cfg.AuthRateLimit.Handle)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", auth.RequireRole(domain.Roles...), cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	// Registered before /:id so the literal segment wins.
	tickets.Get("/my-tickets", supportOnly, cfg.Tickets.MyTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Patch("/:id/status", supportOnly, cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assign", supportOnly, cfg.Tickets.AssignTicket)
	tickets.Patch("/:id/unassign", supportOnly, cfg.Tickets.UnassignTicket)

	tickets.Post("/:ticketId/comments", cfg.Comments.AddComment)
	tickets.Get("/:ticketId/comments", cfg.Comments.ListComments)
	tickets.Put("/:ticketId/comments/:commentId", cfg.Comments.UpdateComment)
	tickets.Delete("/:ticketId/comments/:commentId", cfg.Comments.DeleteComment)

	companies := app.Group("/companies", cfg.AuthMiddleware.Handle)
	companies.Post("/", supportOnly, cfg.Companies.CreateCompany)
	companies.Get("/", supportOnly, cfg.Companies.ListCompanies)
	companies.Get("/:id", cfg.Companies.GetCompany)
	companies.Put("/:id", supportOnly, cfg.Companies.UpdateCompany)
	companies.Delete("/:id", supportOnly, cfg.Companies.DeleteCompany)
	companies.Post("/:id/assign-user", supportOnly, cfg.Companies.AssignUser)
}
