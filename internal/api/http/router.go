package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/Behnamfe76/contacts-directory/internal/api/http/handlers"
	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Token          *handlers.TokenHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Anonymous routes are registered before
// the protected group, whose middleware covers the rest of /api.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Post("/token", cfg.Token.Issue)
	api.Post("/users", cfg.AuthMiddleware.Optional, cfg.Users.Create)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	protected.Get("/users", cfg.Users.List)
	protected.Get("/users/:id", cfg.Users.Get)
	protected.Put("/users/:id", cfg.Users.Update)
	protected.Delete("/users/:id", auth.RequireRole(domain.RoleAdministrator), cfg.Users.Deactivate)

	protected.Get("/contacts", cfg.Contacts.List)
	protected.Get("/contacts/:id", cfg.Contacts.Get)
	protected.Post("/contacts", cfg.Contacts.Create)
	protected.Put("/contacts/:id", cfg.Contacts.Update)
	protected.Delete("/contacts/:id", cfg.Contacts.Delete)
}
