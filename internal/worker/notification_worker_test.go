package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/mailer"
)

type stubSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *stubSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func TestHandleDeliversDecodedMessage(t *testing.T) {
	sender := &stubSender{}
	w := NewMailWorker(nil, "q", sender, zap.NewNop())

	raw, _ := json.Marshal(mailer.Message{To: "a@example.com", Kind: mailer.KindVerifyEmail, Params: map[string]string{"name": "A"}})
	w.handle(context.Background(), raw)

	if len(sender.sent) != 1 || sender.sent[0].To != "a@example.com" || sender.sent[0].Params["name"] != "A" {
		t.Fatalf("unexpected deliveries: %+v", sender.sent)
	}
}

func TestHandleDropsMalformedPayload(t *testing.T) {
	sender := &stubSender{}
	w := NewMailWorker(nil, "q", sender, zap.NewNop())
	w.handle(context.Background(), []byte("{not json"))
	if len(sender.sent) != 0 {
		t.Fatalf("malformed payload must not be sent")
	}
}

func TestHandleAbandonsAfterMaxAttempts(t *testing.T) {
	sender := &stubSender{err: errors.New("smtp down")}
	w := NewMailWorker(nil, "q", sender, zap.NewNop())

	raw, _ := json.Marshal(mailer.Message{To: "a@example.com", Kind: mailer.KindPasswordReset, Attempts: maxAttempts - 1})
	// The last attempt fails and is dropped without touching the queue.
	w.handle(context.Background(), raw)
	if len(sender.sent) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(sender.sent))
	}
}
