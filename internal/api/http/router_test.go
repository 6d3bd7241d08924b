package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/mailer"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/repository/memory"
	"github.com/spec-kit/workforce-service/internal/service"
)

const password = "s3cret-pass"

type outbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (o *outbox) Notify(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) token(t *testing.T, to string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].To == to {
			link, err := url.Parse(o.msgs[i].Params["link"])
			if err != nil {
				t.Fatalf("parse link: %v", err)
			}
			return link.Query().Get("token")
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return ""
}

type testServer struct {
	app    *fiber.App
	stores repository.Stores
	outbox *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{Name: "workforce-test"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4},
		Mail: config.MailConfig{FrontendURL: "http://app.test"},
		HTTP: config.HTTPConfig{AuthRateLimit: 1000},
	}
	logger := zap.NewNop()
	stores := memory.New().Stores()
	engine := authz.NewEngine()
	dispatcher := events.NewInMemoryDispatcher()
	box := &outbox{}
	service.NewNotificationService(dispatcher, box, logger, cfg).RegisterHandlers()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})
	userService := service.NewUserService(stores.Users, engine)
	teamService := service.NewTeamService(cfg, service.TeamDependencies{
		UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo: stores.Tasks, UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: stores.Tickets, UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger,
	})

	metrics := observability.NewMetrics()
	app := NewServer(cfg, logger, metrics, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, "test", nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService, authService),
		Team:           handlers.NewTeamHandler(teamService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), stores.Users, logger),
		Engine:         engine,
	})
	return &testServer{app: app, stores: stores, outbox: box}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode, env
}

func (s *testServer) seed(t *testing.T, name string, role domain.Role, manager *domain.User) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: hash, Role: role, IsVerified: true}
	if manager != nil {
		id := manager.ID
		u.ManagerID = &id
	}
	if err := s.stores.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, env := s.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if status != fiber.StatusOK {
		t.Fatalf("login %s: %d %s", email, status, env.Message)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login response without token: %s", env.Data)
	}
	return data.Token
}

func TestSignupVerifyLoginOverHTTP(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, fiber.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": password,
	})
	if status != fiber.StatusCreated || !env.Success {
		t.Fatalf("signup: %d %s", status, env.Message)
	}

	token := s.login(t, "ada@example.com")
	status, env = s.do(t, fiber.MethodGet, "/api/users/profile", token, nil)
	if status != fiber.StatusForbidden || env.Success {
		t.Fatalf("unverified profile: %d %s", status, env.Message)
	}
	if env.Message != "Please verify your email to access this resource" {
		t.Fatalf("unexpected message %q", env.Message)
	}

	status, env = s.do(t, fiber.MethodPost, "/api/users/logout", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("unverified logout: %d %s", status, env.Message)
	}

	verify := s.outbox.token(t, "ada@example.com")
	status, env = s.do(t, fiber.MethodPost, "/api/auth/verify-email?token="+verify, "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("verify: %d %s", status, env.Message)
	}
	status, _ = s.do(t, fiber.MethodPost, "/api/auth/verify-email?token="+verify, "", nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("second verify: %d", status)
	}

	status, env = s.do(t, fiber.MethodGet, "/api/users/profile", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("verified profile: %d %s", status, env.Message)
	}
	var profile struct {
		Email      string `json:"email"`
		IsVerified bool   `json:"isVerified"`
	}
	if err := json.Unmarshal(env.Data, &profile); err != nil || !profile.IsVerified || profile.Email != "ada@example.com" {
		t.Fatalf("unexpected profile %s", env.Data)
	}
}

func TestValidationErrorsAreAggregated(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, fiber.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "A", "email": "not-an-email", "password": "123",
	})
	if status != fiber.StatusBadRequest || env.Success {
		t.Fatalf("status = %d", status)
	}
	if len(env.Errors) != 3 {
		t.Fatalf("expected 3 messages, got %v", env.Errors)
	}
}

func TestAuthenticationFailures(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, fiber.MethodGet, "/api/tasks", "", nil)
	if status != fiber.StatusUnauthorized || env.Message != "Not authorized, no token" {
		t.Fatalf("missing token: %d %q", status, env.Message)
	}

	status, env = s.do(t, fiber.MethodGet, "/api/tasks", "garbage", nil)
	if status != fiber.StatusUnauthorized || env.Message != "Not authorized, token failed" {
		t.Fatalf("bad token: %d %q", status, env.Message)
	}

	status, _ = s.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]string{"email": "x@example.com", "password": "wrong-pass"})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("bad credentials: %d", status)
	}

	status, env = s.do(t, fiber.MethodGet, "/api/nowhere", "", nil)
	if status != fiber.StatusNotFound || env.Success {
		t.Fatalf("unknown route: %d", status)
	}
}

func TestEmployeeTaskPatchOverHTTP(t *testing.T) {
	s := newTestServer(t)
	lead := s.seed(t, "lead", domain.RoleManager, nil)
	dev := s.seed(t, "dev", domain.RoleDeveloper, lead)
	leadToken := s.login(t, "lead@example.com")
	devToken := s.login(t, "dev@example.com")

	status, env := s.do(t, fiber.MethodPost, "/api/tasks", leadToken, map[string]any{
		"title": "Write docs", "assignedTo": []string{dev.ID}, "dueDate": "2026-05-01",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create task: %d %s %v", status, env.Message, env.Errors)
	}
	var task struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}

	status, _ = s.do(t, fiber.MethodPost, "/api/tasks", devToken, map[string]any{"title": "x", "assignedTo": []string{dev.ID}})
	if status != fiber.StatusForbidden {
		t.Fatalf("employee create: %d", status)
	}

	status, env = s.do(t, fiber.MethodPatch, "/api/tasks/"+task.ID, devToken, map[string]any{"status": "in-progress", "title": "mine now"})
	if status != fiber.StatusForbidden || env.Message != "Employees can only update status or remarks" {
		t.Fatalf("mixed patch: %d %q", status, env.Message)
	}

	status, env = s.do(t, fiber.MethodPatch, "/api/tasks/"+task.ID, devToken, map[string]any{"status": "completed", "remarks": "done"})
	if status != fiber.StatusOK {
		t.Fatalf("status patch: %d %s", status, env.Message)
	}
	var updated struct {
		Status      string  `json:"status"`
		CompletedAt *string `json:"completedAt"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil || updated.Status != "completed" || updated.CompletedAt == nil {
		t.Fatalf("unexpected task %s", env.Data)
	}

	status, env = s.do(t, fiber.MethodGet, "/api/tasks?mine=true", leadToken, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: %d", status)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 {
		t.Fatalf("unexpected list %s", env.Data)
	}
}

func TestManagerRoutesRequireRole(t *testing.T) {
	s := newTestServer(t)
	lead := s.seed(t, "lead", domain.RoleManager, nil)
	s.seed(t, "dev", domain.RoleDeveloper, lead)
	devToken := s.login(t, "dev@example.com")
	leadToken := s.login(t, "lead@example.com")

	status, _ := s.do(t, fiber.MethodGet, "/api/manager/team", devToken, nil)
	if status != fiber.StatusForbidden {
		t.Fatalf("employee team view: %d", status)
	}
	status, _ = s.do(t, fiber.MethodGet, "/api/users/all", leadToken, nil)
	if status != fiber.StatusForbidden {
		t.Fatalf("manager user list: %d", status)
	}

	status, env := s.do(t, fiber.MethodPost, "/api/manager/create-employee", leadToken, map[string]string{
		"name": "Newbie", "email": "newbie@example.com", "contactNumber": "555-0100",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create employee: %d %s %v", status, env.Message, env.Errors)
	}
	var created struct {
		ManagerID    string `json:"managerId"`
		MobileNumber string `json:"mobileNumber"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ManagerID != lead.ID || created.MobileNumber != "555-0100" {
		t.Fatalf("unexpected employee %s", env.Data)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, fiber.MethodGet, "/health/live", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("live: %d", status)
	}
	status, _ = s.do(t, fiber.MethodGet, "/health/ready", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("ready without dependencies: %d", status)
	}
}
