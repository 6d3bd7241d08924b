package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/observability"
)

// NewServer builds the fiber app with middlewares and routes attached.
func NewServer(cfg config.Config, logger *zap.Logger, metrics *observability.Metrics, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
		BodyLimit:             1 << 20,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.HTTP, cfg.App.RequestTimeout())
	routes.HTTP = cfg.HTTP
	RegisterRoutes(app, routes)
	return app
}
