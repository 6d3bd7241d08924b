package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// publish emits an event; handler failures are logged, never returned.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

// notFound names the missing resource; other errors are normalized.
func notFound(err error, resource string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFound(resource)
	}
	return apperrors.MapError(err)
}

// optionalUser loads id, treating a missing record as nil. An empty id is nil.
func optionalUser(ctx context.Context, users repository.UserRepository, id string) (*domain.User, error) {
	if id == "" {
		return nil, nil
	}
	u, err := users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return u, nil
}

// loadAll fetches every id and fails if any is unknown.
func loadAll(ctx context.Context, users repository.UserRepository, ids []string, resource string) ([]domain.User, error) {
	found, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(found) != len(ids) {
		return nil, apperrors.NewNotFound(resource)
	}
	return found, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func userIDs(users []domain.User) []string {
	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	return ids
}
