package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/authz"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// Require gates a route on the target-independent part of the permission
// matrix for action. Record-level checks stay in the services.
func Require(engine *authz.Engine, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Not authorized, no token")
		}
		if err := engine.Gate(actor, action).Err(); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a caller has been resolved by AuthMiddleware.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("Not authorized, no token")
		}
		return c.Next()
	}
}
