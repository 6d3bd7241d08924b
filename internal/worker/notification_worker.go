package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/mailer"
	"github.com/spec-kit/workforce-service/internal/service"
)

const (
	maxAttempts  = 3
	popTimeout   = 5 * time.Second
	sendTimeout  = 30 * time.Second
	errorBackoff = time.Second
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// MailWorker drains the Redis mail queue and hands messages to the sender.
type MailWorker struct {
	client *redis.Client
	key    string
	sender mailer.Sender
	logger *zap.Logger
}

// NewMailWorker builds a worker on key.
func NewMailWorker(client *redis.Client, key string, sender mailer.Sender, logger *zap.Logger) *MailWorker {
	return &MailWorker{client: client, key: key, sender: sender, logger: logger}
}

// Run blocks until ctx is cancelled.
func (w *MailWorker) Run(ctx context.Context) {
	w.logger.Info("mail worker started", zap.String("queue", w.key))
	for {
		if ctx.Err() != nil {
			w.logger.Info("mail worker stopped")
			return
		}
		res, err := w.client.BLPop(ctx, popTimeout, w.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("mail queue pop failed", zap.Error(err))
			sleep(ctx, errorBackoff)
			continue
		}
		// BLPOP replies with [key, value].
		if len(res) != 2 {
			continue
		}
		w.handle(ctx, []byte(res[1]))
	}
}

func (w *MailWorker) handle(ctx context.Context, raw []byte) {
	var msg mailer.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		w.logger.Error("dropping malformed mail payload", zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err := w.sender.Send(sendCtx, msg)
	cancel()
	if err == nil {
		w.logger.Debug("mail sent", zap.String("kind", string(msg.Kind)))
		return
	}

	msg.Attempts++
	if msg.Attempts >= maxAttempts {
		w.logger.Error("mail delivery abandoned",
			zap.String("kind", string(msg.Kind)),
			zap.Int("attempts", msg.Attempts),
			zap.Error(err))
		return
	}
	w.logger.Warn("mail delivery failed; requeueing",
		zap.String("kind", string(msg.Kind)),
		zap.Int("attempts", msg.Attempts),
		zap.Error(err))
	payload, _ := json.Marshal(msg)
	if err := w.client.RPush(context.Background(), w.key, payload).Err(); err != nil {
		w.logger.Error("mail requeue failed", zap.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
