package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/service"
)

// UsersHandler serves the authenticated user's own account.
type UsersHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{users: users, auth: authService}
}

// Profile handles GET /api/users/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetProfile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile fetched", dto.NewUserResponse(user))
}

// UpdateProfile handles PATCH /api/users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), actor, service.ProfilePatch{
		Name:         req.Name,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated", dto.NewUserResponse(user))
}

// Logout handles POST /api/users/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), actor); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// All handles GET /api/users/all.
func (h *UsersHandler) All(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset := page(c)
	users, err := h.users.ListUsers(c.UserContext(), actor, repository.UserFilter{
		Role:      domain.Role(c.Query("role")),
		ManagerID: c.Query("managerId"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Users fetched", dto.NewUserList(users))
}
