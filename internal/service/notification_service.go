package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/mailer"
)

// NotificationService turns domain events into outbound mail. Delivery is
// fire-and-forget: a failure is logged and never reaches the request.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   mailer.Notifier
	logger     *zap.Logger
	mail       config.MailConfig
	auth       config.AuthConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier mailer.Notifier, logger *zap.Logger, cfg config.Config) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
		mail:       cfg.Mail,
		auth:       cfg.Auth,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventEmployeeCreated, n.handleEmployeeCreated)
	n.dispatcher.Subscribe(events.EventTaskAssigned, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.logEvent)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.send(ctx, event, mailer.Message{
		To:   p.Email,
		Kind: mailer.KindVerifyEmail,
		Params: map[string]string{
			"name":    p.Name,
			"link":    n.link("/verify-email", p.VerificationToken),
			"expires": humanize(n.auth.VerificationTTL()),
		},
	})
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.send(ctx, event, mailer.Message{
		To:   p.Email,
		Kind: mailer.KindPasswordReset,
		Params: map[string]string{
			"name":    p.Name,
			"link":    n.link("/reset-password", p.ResetToken),
			"expires": humanize(n.auth.PasswordResetTTL()),
		},
	})
}

func (n *NotificationService) handleEmployeeCreated(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.EmployeeCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.send(ctx, event, mailer.Message{
		To:   p.Email,
		Kind: mailer.KindEmployeeCredentials,
		Params: map[string]string{
			"name":     p.Name,
			"email":    p.Email,
			"role":     p.Role,
			"password": p.Password,
			"link":     n.link("/verify-email", p.VerificationToken),
		},
	})
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) send(ctx context.Context, event events.Event, msg mailer.Message) error {
	if n.notifier == nil {
		return nil
	}
	if err := n.notifier.Notify(ctx, msg); err != nil {
		n.logger.Warn("mail notification failed",
			zap.String("event", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) link(path, token string) string {
	return n.mail.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

func humanize(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
