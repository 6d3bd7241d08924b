package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository/memory"
)

func TestHandleLoadsActorWithoutPasswordHash(t *testing.T) {
	users := memory.New().Stores().Users
	stored := &domain.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$04$hash", Role: domain.RoleEmployee}
	if err := users.Create(context.Background(), stored); err != nil {
		t.Fatalf("create: %v", err)
	}
	tm := NewTokenManager("secret", time.Hour)
	session, err := tm.GenerateToken(stored)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(tm, users, nil).Handle, func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		if actor.PasswordHash != "" {
			return c.SendStatus(http.StatusConflict)
		}
		return c.SendString(actor.ID)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+session.Token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	reloaded, err := users.GetByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.PasswordHash != "$2a$04$hash" {
		t.Fatalf("stored hash was altered: %q", reloaded.PasswordHash)
	}
}

func TestHandleRejectsMissingBearer(t *testing.T) {
	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(NewTokenManager("secret", time.Hour), memory.New().Stores().Users, nil).Handle,
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatal("request without token was let through")
	}
}
