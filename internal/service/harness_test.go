package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/mailer"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/repository/memory"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const testPassword = "s3cret-pass"

type recordingNotifier struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// last returns the newest message of kind addressed to email.
func (r *recordingNotifier) last(t *testing.T, kind mailer.Kind, email string) mailer.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].Kind == kind && r.sent[i].To == email {
			return r.sent[i]
		}
	}
	t.Fatalf("no %s message sent to %s", kind, email)
	return mailer.Message{}
}

func (r *recordingNotifier) token(t *testing.T, kind mailer.Kind, email string) string {
	t.Helper()
	link, err := url.Parse(r.last(t, kind, email).Params["link"])
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return link.Query().Get("token")
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type harness struct {
	cfg      config.Config
	stores   repository.Stores
	notifier *recordingNotifier
	clock    *clock

	auth    *AuthService
	users   *UserService
	team    *TeamService
	tasks   *TaskService
	tickets *TicketService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			SessionTTLMinutes:       60,
			VerificationTTLMinutes:  60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
		Mail: config.MailConfig{FrontendURL: "http://app.test"},
	}
	stores := memory.New().Stores()
	engine := authz.NewEngine()
	dispatcher := events.NewInMemoryDispatcher()
	notifier := &recordingNotifier{}
	logger := zap.NewNop()
	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	NewNotificationService(dispatcher, notifier, logger, cfg).RegisterHandlers()

	return &harness{
		cfg:      cfg,
		stores:   stores,
		notifier: notifier,
		clock:    clk,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger, Now: clk.Now,
		}),
		users: NewUserService(stores.Users, engine),
		team: NewTeamService(cfg, TeamDependencies{
			UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger, Now: clk.Now,
		}),
		tasks: NewTaskService(TaskDependencies{
			TaskRepo: stores.Tasks, UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger, Now: clk.Now,
		}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: stores.Tickets, UserRepo: stores.Users, Engine: engine, Dispatcher: dispatcher, Logger: logger, Now: clk.Now,
		}),
	}
}

// seed stores a verified user directly.
func (h *harness) seed(t *testing.T, name string, role domain.Role, manager *domain.User) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &domain.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
	}
	if manager != nil {
		id := manager.ID
		u.ManagerID = &id
	}
	if err := h.stores.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return u
}

func expectKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError %s, got %T: %v", kind, err, err)
	}
	if de.Kind != kind {
		t.Fatalf("expected %s, got %s (%s)", kind, de.Kind, de.Message)
	}
}

func strPtr(s string) *string { return &s }
