package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// QueueNotifier pushes messages onto a Redis list consumed by the mail worker.
type QueueNotifier struct {
	client *redis.Client
	key    string
}

// NewQueueNotifier builds a notifier on key.
func NewQueueNotifier(client *redis.Client, key string) *QueueNotifier {
	return &QueueNotifier{client: client, key: key}
}

// Notify enqueues msg.
func (q *QueueNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// DirectNotifier sends in a background goroutine. It serves deployments
// without Redis.
type DirectNotifier struct {
	sender Sender
	onErr  func(Message, error)
}

// NewDirectNotifier wraps sender. onErr may be nil.
func NewDirectNotifier(sender Sender, onErr func(Message, error)) *DirectNotifier {
	return &DirectNotifier{sender: sender, onErr: onErr}
}

func (d *DirectNotifier) Notify(_ context.Context, msg Message) error {
	go func() {
		if err := d.sender.Send(context.Background(), msg); err != nil && d.onErr != nil {
			d.onErr(msg, err)
		}
	}()
	return nil
}
