package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidVerifyLink  = "Invalid or expired verification link"
	msgInvalidResetToken  = "Invalid or expired reset token"
)

// AuthService coordinates signup, login, verification and password reset.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	engine     *authz.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Engine     *authz.Engine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		cfg:        cfg.Auth,
		now:        deps.Now,
	}
	if s.engine == nil {
		s.engine = authz.NewEngine()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// TokenManager exposes the session token manager for the auth middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// SignupInput is the self-registration payload.
type SignupInput struct {
	Name         string
	Email        string
	Password     string
	MobileNumber string
	Role         string
}

// Signup creates an unverified account and mails a verification link. A mail
// failure is logged and does not undo the account.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("Validation Error", []string{err.Error()})
	}
	if role.IsAdmin() && !s.cfg.AllowPrivilegedSignupRoles {
		return nil, apperrors.NewForbidden("Admin accounts cannot be created through signup")
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("User already exists")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	token, err := auth.NewActionToken(s.now(), s.cfg.VerificationTTL())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		MobileNumber: strings.TrimSpace(in.MobileNumber),
	}
	user.SetVerificationToken(token.Hash, token.ExpiresAt)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflict("User already exists")
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, user.ID, events.UserRegisteredPayload{
		Name:              user.Name,
		Email:             user.Email,
		VerificationToken: token.Raw,
	}))
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", role.String()))
	return user, nil
}

// VerifyEmail spends a verification token and activates the account.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) (*domain.User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.NewBadRequest(msgInvalidVerifyLink)
	}
	user, err := s.users.ConsumeVerificationToken(ctx, auth.HashActionToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewBadRequest(msgInvalidVerifyLink)
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("email verified", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and issues a session token. Unverified accounts may
// log in; verified-only routes deny them later.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			auth.CompareDecoy(password)
			return nil, domain.Session{}, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, domain.Session{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unusable", zap.String("user_id", user.ID), zap.Error(err))
		}
		return nil, domain.Session{}, apperrors.NewUnauthorized(msgInvalidCredentials)
	}

	session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("last login not recorded", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}
	return user, session, nil
}

// Logout is a no-op for stateless sessions; the client discards the token.
func (s *AuthService) Logout(_ context.Context, actor *domain.User) error {
	return s.engine.Authorize(actor, authz.ActionLogout, authz.Target{})
}

// ForgotPassword issues a fresh reset token, replacing any earlier one.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFound("User")
		}
		return apperrors.MapError(err)
	}

	token, err := auth.NewActionToken(s.now(), s.cfg.PasswordResetTTL())
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.New(events.EventPasswordResetRequested, user.ID, user.ID, events.PasswordResetRequestedPayload{
		Name:       user.Name,
		Email:      user.Email,
		ResetToken: token.Raw,
	}))
	return nil
}

// VerifyResetToken reports whether a reset token is still usable without
// spending it.
func (s *AuthService) VerifyResetToken(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return apperrors.NewBadRequest(msgInvalidResetToken)
	}
	if _, err := s.users.FindByResetToken(ctx, auth.HashActionToken(rawToken), s.now()); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewBadRequest(msgInvalidResetToken)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ResetPassword spends a reset token and stores the new password hash in the
// same update.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) error {
	if strings.TrimSpace(rawToken) == "" {
		return apperrors.NewBadRequest(msgInvalidResetToken)
	}
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user, err := s.users.ConsumeResetToken(ctx, auth.HashActionToken(rawToken), s.now(), hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewBadRequest(msgInvalidResetToken)
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// CreateAdmin provisions a verified admin account. It is reachable only from
// the operator CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        domain.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflict("User already exists")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}
