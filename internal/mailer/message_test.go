package mailer

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
)

func TestRenderEveryKind(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	params := map[string]string{
		"name":     "Ana",
		"email":    "ana@example.com",
		"role":     "developer",
		"password": "p4ss",
		"link":     "https://app.example.com/verify-email?token=abc",
		"expires":  "1 hour",
	}
	for kind := range subjects {
		subject, body, err := r.Render(Message{To: "ana@example.com", Kind: kind, Params: params})
		if err != nil {
			t.Fatalf("render %s: %v", kind, err)
		}
		if subject == "" || !strings.Contains(body, "Ana") {
			t.Fatalf("render %s produced subject=%q body=%q", kind, subject, body)
		}
	}
}

func TestRenderEscapesParams(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	_, body, err := r.Render(Message{Kind: KindVerifyEmail, Params: map[string]string{"name": "<script>"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("params must be html-escaped: %s", body)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	r, _ := NewRenderer()
	if _, _, err := r.Render(Message{Kind: "nope"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	r, _ := NewRenderer()
	sender := NewSender(config.MailConfig{}, r, zap.NewNop())
	if _, ok := sender.(*LogSender); !ok {
		t.Fatalf("expected LogSender without MAIL_HOST, got %T", sender)
	}
	if err := sender.Send(context.Background(), Message{To: "x@example.com", Kind: KindPasswordReset}); err != nil {
		t.Fatalf("log send: %v", err)
	}
}
