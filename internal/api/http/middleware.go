package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/observability"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, cfg config.HTTPConfig, timeout time.Duration) {
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

// ErrorHandler renders errors that escape the middleware chain.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, logger, apperrors.ToDomainError(err))
	}
}

// authRateLimiter throttles the public credential endpoints per client IP.
func authRateLimiter(cfg config.HTTPConfig) fiber.Handler {
	limit := cfg.AuthRateLimit
	if limit <= 0 {
		limit = 20
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: cfg.AuthRateWindow(),
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests, please try again later",
			})
		},
	})
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), string(domainErr.Kind))
				}
				if domainErr.HTTPStatus < fiber.StatusInternalServerError && domainErr.Err != nil {
					logger.Debug("request rejected",
						zap.String("path", c.Path()),
						zap.String("message", domainErr.Message),
						zap.Error(domainErr.Err))
				}
				err = writeError(c, logger, domainErr)
			}
		}()
		return c.Next()
	}
}

// writeError renders the failure envelope. Internal errors never leak their
// cause to the client.
func writeError(c *fiber.Ctx, logger *zap.Logger, domainErr *apperrors.DomainError) error {
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(domainErr))
	}
	response := fiber.Map{
		"success": false,
		"message": domainErr.Message,
	}
	if len(domainErr.Errors) > 0 {
		response["errors"] = domainErr.Errors
	}
	return c.Status(domainErr.HTTPStatus).JSON(response)
}
