package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const actorKey = "auth_actor"

// AuthMiddleware validates bearer tokens and reloads the actor on every
// request, so a deleted account loses its sessions at next use.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("Not authorized, no token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("Not authorized, no token")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			m.logger.Debug("session token expired", zap.String("path", c.Path()))
			return apperrors.NewUnauthorizedCause("Session expired, please log in again", err)
		}
		m.logger.Debug("session token invalid", zap.String("path", c.Path()))
		return apperrors.NewUnauthorizedCause("Not authorized, token failed", err)
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewUnauthorized("Not authorized, user not found")
		}
		return apperrors.MapError(err)
	}

	// Handlers never compare passwords against the actor.
	user.PasswordHash = ""
	c.Locals(actorKey, user)
	return c.Next()
}

// ActorFromContext retrieves the authenticated user.
func ActorFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return nil, false
	}
	actor, ok := val.(*domain.User)
	return actor, ok && actor != nil
}
