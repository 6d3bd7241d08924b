package service

import (
	"context"
	"strings"
	"testing"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/mailer"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

func TestSignupVerifyLoginRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, err := h.auth.Signup(ctx, SignupInput{
		Name:     "Ada",
		Email:    "  Ada@Example.com ",
		Password: testPassword,
		Role:     "developer",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.IsVerified {
		t.Fatal("new account must start unverified")
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}

	msg := h.notifier.last(t, mailer.KindVerifyEmail, "ada@example.com")
	if !strings.HasPrefix(msg.Params["link"], "http://app.test/verify-email?token=") {
		t.Fatalf("unexpected link %q", msg.Params["link"])
	}
	token := h.notifier.token(t, mailer.KindVerifyEmail, "ada@example.com")

	verified, err := h.auth.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.IsVerified || verified.EmailVerificationToken != nil {
		t.Fatalf("verification not applied: %+v", verified)
	}

	_, err = h.auth.VerifyEmail(ctx, token)
	expectKind(t, err, apperrors.KindBadRequest)

	logged, session, err := h.auth.Login(ctx, "ada@example.com", testPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || logged.LastLoginAt == nil {
		t.Fatalf("session not issued or last login not stamped")
	}

	claims, err := h.auth.TokenManager().ParseToken(session.Token)
	if err != nil {
		t.Fatalf("parse session: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("session subject = %q, want %q", claims.Subject, user.ID)
	}
}

func TestLoginBeforeVerificationThenVerifiedRouteForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.auth.Signup(ctx, SignupInput{Name: "Bo", Email: "bo@example.com", Password: testPassword}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	user, _, err := h.auth.Login(ctx, "bo@example.com", testPassword)
	if err != nil {
		t.Fatalf("login before verification should succeed: %v", err)
	}

	_, err = h.users.GetProfile(ctx, user)
	expectKind(t, err, apperrors.KindForbidden)
	if !strings.Contains(err.Error(), "verify your email") {
		t.Fatalf("unexpected message: %v", err)
	}

	if err := h.auth.Logout(ctx, user); err != nil {
		t.Fatalf("logout must not require verification: %v", err)
	}
}

func TestSignupRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.auth.Signup(ctx, SignupInput{Name: "Root", Email: "root@example.com", Password: testPassword, Role: "admin"})
	expectKind(t, err, apperrors.KindForbidden)

	_, err = h.auth.Signup(ctx, SignupInput{Name: "X", Email: "x@example.com", Password: testPassword, Role: "ceo"})
	expectKind(t, err, apperrors.KindBadRequest)

	if _, err := h.auth.Signup(ctx, SignupInput{Name: "Cy", Email: "cy@example.com", Password: testPassword}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, err = h.auth.Signup(ctx, SignupInput{Name: "Cy", Email: "CY@example.com", Password: testPassword})
	expectKind(t, err, apperrors.KindConflict)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "dee", domain.RoleEmployee, nil)

	_, _, err := h.auth.Login(ctx, "dee@example.com", "wrong")
	expectKind(t, err, apperrors.KindUnauthorized)

	_, _, err = h.auth.Login(ctx, "nobody@example.com", testPassword)
	expectKind(t, err, apperrors.KindUnauthorized)
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "eve", domain.RoleEmployee, nil)

	err := h.auth.ForgotPassword(ctx, "ghost@example.com")
	expectKind(t, err, apperrors.KindNotFound)

	if err := h.auth.ForgotPassword(ctx, "eve@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := h.notifier.token(t, mailer.KindPasswordReset, "eve@example.com")

	if err := h.auth.VerifyResetToken(ctx, token); err != nil {
		t.Fatalf("verify reset token: %v", err)
	}
	if err := h.auth.ResetPassword(ctx, token, "brand-new-pass"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	err = h.auth.ResetPassword(ctx, token, "another-pass")
	expectKind(t, err, apperrors.KindBadRequest)
	err = h.auth.VerifyResetToken(ctx, token)
	expectKind(t, err, apperrors.KindBadRequest)

	if _, _, err := h.auth.Login(ctx, "eve@example.com", "brand-new-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	_, _, err = h.auth.Login(ctx, "eve@example.com", testPassword)
	expectKind(t, err, apperrors.KindUnauthorized)
}

func TestResetTokenDeadAtExactExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "fay", domain.RoleEmployee, nil)

	start := h.clock.Now()
	if err := h.auth.ForgotPassword(ctx, "fay@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	token := h.notifier.token(t, mailer.KindPasswordReset, "fay@example.com")

	h.clock.Set(start.Add(h.cfg.Auth.PasswordResetTTL()))
	err := h.auth.ResetPassword(ctx, token, "late-pass")
	expectKind(t, err, apperrors.KindBadRequest)
}

func TestForgotPasswordReplacesEarlierToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "gus", domain.RoleEmployee, nil)

	if err := h.auth.ForgotPassword(ctx, "gus@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	first := h.notifier.token(t, mailer.KindPasswordReset, "gus@example.com")
	if err := h.auth.ForgotPassword(ctx, "gus@example.com"); err != nil {
		t.Fatalf("forgot again: %v", err)
	}

	err := h.auth.VerifyResetToken(ctx, first)
	expectKind(t, err, apperrors.KindBadRequest)
}

func TestCreateAdminIsVerified(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin, err := h.auth.CreateAdmin(ctx, "Root", "root@example.com", testPassword)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if !admin.IsVerified || admin.Role != domain.RoleAdmin {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if _, err := h.users.ListUsers(ctx, admin, repository.UserFilter{}); err != nil {
		t.Fatalf("admin list users: %v", err)
	}
}
