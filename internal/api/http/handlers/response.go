package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// respond writes the success envelope.
func respond(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func currentActor(c *fiber.Ctx) (*domain.User, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Not authorized, no token")
	}
	return actor, nil
}

// bind parses the body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	return dto.Validate(req)
}

// page reads limit and offset query parameters; bad values fall back to zero.
func page(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
