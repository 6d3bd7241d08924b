package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/service"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// AuthHandler exposes the public authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		MobileNumber: req.MobileNumber,
		Role:         req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered. Please check your email to verify your account.", dto.NewUserResponse(user))
}

// VerifyEmail handles POST /api/auth/verify-email. The token arrives in the
// query string of the mailed link; a JSON body is accepted as well.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var body struct {
			Token string `json:"token"`
		}
		_ = c.BodyParser(&body)
		token = body.Token
	}
	user, err := h.auth.VerifyEmail(c.UserContext(), token)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Email verified successfully", dto.NewUserResponse(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(user),
	})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password reset link sent to your email", nil)
}

// VerifyResetToken handles GET /api/auth/verify-reset-token?token=...
func (h *AuthHandler) VerifyResetToken(c *fiber.Ctx) error {
	token := c.Query("token")
	if len(token) < 10 {
		return apperrors.NewValidationError("Validation Error", []string{"Valid token is required"})
	}
	if err := h.auth.VerifyResetToken(c.UserContext(), token); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Reset token is valid", nil)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password reset successful", nil)
}
