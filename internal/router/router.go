package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fellowship-hq/fellowship-api/internal/config"
	"github.com/fellowship-hq/fellowship-api/internal/handler"
	"github.com/fellowship-hq/fellowship-api/internal/middleware"
	"github.com/fellowship-hq/fellowship-api/internal/models"
	"github.com/fellowship-hq/fellowship-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CheckinHandler     *handler.CheckinHandler
	MemberHandler      *handler.MemberHandler
	EditRequestHandler *handler.EditRequestHandler
	LeadershipHandler  *handler.LeadershipHandler
	TagHandler         *handler.TagHandler
	JWTMiddleware      fiber.Handler
	CheckinRateLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Attendance check-in
	if deps.CheckinHandler != nil {
		checkin := api.Group("/checkin", jwtMiddleware)
		if deps.CheckinRateLimiter != nil {
			checkin.Use(deps.CheckinRateLimiter)
		}
		deps.CheckinHandler.Register(checkin)
	}

	// Member profiles & edit workflow
	if deps.MemberHandler != nil || deps.EditRequestHandler != nil {
		members := api.Group("/members", jwtMiddleware)
		if deps.MemberHandler != nil {
			deps.MemberHandler.Register(members)
			managed := members.Group("", middleware.RequireRole(models.RoleFellowshipManager))
			deps.MemberHandler.RegisterManaged(managed)
		}
		if deps.EditRequestHandler != nil {
			deps.EditRequestHandler.Register(members)
		}
	}

	// Manager-driven tag management
	if deps.TagHandler != nil {
		tags := api.Group("/tags", jwtMiddleware, middleware.RequireRole(models.RoleFellowshipManager))
		deps.TagHandler.RegisterManaged(tags)
	}

	// Regional leadership & org structure
	if deps.LeadershipHandler != nil {
		leadership := api.Group("/leadership", jwtMiddleware)
		scoped := leadership.Group("", middleware.RequireRole(models.RoleFellowshipManager, models.RoleRegionalHead))
		deps.LeadershipHandler.Register(scoped)

		managed := leadership.Group("", middleware.RequireRole(models.RoleFellowshipManager))
		deps.LeadershipHandler.RegisterManaged(managed)
	}
}
