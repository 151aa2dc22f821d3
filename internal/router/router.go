package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/uniact/activity-api/internal/config"
	"github.com/uniact/activity-api/internal/handler"
	"github.com/uniact/activity-api/internal/middleware"
	"github.com/uniact/activity-api/internal/observability"
	"github.com/uniact/activity-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler     *handler.ActivityHandler
	RegistrationHandler *handler.RegistrationHandler
	PointHandler        *handler.PointHandler
	ConflictHandler     *handler.ConflictHandler
	ImportHandler       *handler.ImportHandler
	AuditHandler        *handler.AuditHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities", jwtMiddleware)
		deps.ActivityHandler.Register(activities)

		// Attendance import shares the activities prefix but is restricted
		// to activity managers.
		if deps.ImportHandler != nil {
			imports := api.Group("/activities", jwtMiddleware, middleware.RequireRole(service.RoleAdvisor, service.RoleAdmin))
			deps.ImportHandler.Register(imports)
		}
	}

	if deps.RegistrationHandler != nil {
		registrations := api.Group("/registrations", jwtMiddleware)
		deps.RegistrationHandler.Register(registrations)
	}

	if deps.PointHandler != nil {
		points := api.Group("/points", jwtMiddleware)
		deps.PointHandler.Register(points)
	}

	if deps.ConflictHandler != nil {
		conflicts := api.Group("/conflicts", jwtMiddleware)
		deps.ConflictHandler.Register(conflicts)
	}

	if deps.AuditHandler != nil {
		audit := api.Group("/audit", jwtMiddleware, middleware.RequireRole(service.RoleAdmin))
		deps.AuditHandler.Register(audit)
	}
}
