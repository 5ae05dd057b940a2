package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/resumebot/api/http/handlers"
	"github.com/artem13815/resumebot/api/http/presenter"
)

// NewApp builds the Fiber app with the shared error envelope and middleware.
func NewApp(logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resumebot",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("http request failed", "method", c.Method(), "path", c.Path(), "err", err)
				return presenter.Error(c, code, "internal error")
			}
			return presenter.Error(c, code, err.Error())
		},
	})
	app.Use(recover.New())
	// The profile front end is served from another origin.
	app.Use(cors.New(cors.Config{AllowMethods: "GET,HEAD,OPTIONS"}))
	return app
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, health *handlers.HealthHandler, profiles *handlers.ProfileHandler) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	api.Get("/member/:memberId", profiles.Get)
	// Unprefixed alias for front ends that call /member directly.
	app.Get("/member/:memberId", profiles.Get)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)
}
