package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role      domain.Role
	ManagerID string
	Limit     int
	Offset    int
}

// UserRepository is the credential store. Token consumption methods match and
// clear the pair in one conditional update so a token can be spent only once.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	ListByManager(ctx context.Context, managerID string) ([]domain.User, error)

	SetVerificationToken(ctx context.Context, id, hash string, expires time.Time) error
	ConsumeVerificationToken(ctx context.Context, hash string, now time.Time) (*domain.User, error)
	SetResetToken(ctx context.Context, id, hash string, expires time.Time) error
	FindByResetToken(ctx context.Context, hash string, now time.Time) (*domain.User, error)
	ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// TaskVisibility keeps tasks created by AssignedBy or shared with any of
// Assignees. It is OR-ed internally and AND-ed with the other filter fields.
type TaskVisibility struct {
	AssignedBy string
	Assignees  []string
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	AssignedBy string
	Assignee   string
	Status     domain.TaskStatus
	Priority   domain.Priority
	Visible    *TaskVisibility
	Limit      int
	Offset     int
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
}

// TicketFilter narrows ticket listings. Parties keeps tickets created by or
// assigned to any listed user.
type TicketFilter struct {
	Status   domain.TicketStatus
	Priority domain.Priority
	Parties  []string
	Limit    int
	Offset   int
}

// TicketRepository persists tickets and their comment threads.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Assign(ctx context.Context, id, assigneeID string, at time.Time) (*domain.Ticket, error)
	AppendComment(ctx context.Context, comment *domain.TicketComment) (*domain.Ticket, error)
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Users   UserRepository
	Tasks   TaskRepository
	Tickets TicketRepository
	Close   func(ctx context.Context) error
}

// NewPostgresStores wires the pgx-backed repositories.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Users:   NewUserRepository(pool),
		Tasks:   NewTaskRepository(pool),
		Tickets: NewTicketRepository(pool),
		Close:   func(context.Context) error { return nil },
	}
}

// Postgres SQLSTATE codes translated to storage sentinels.
const (
	pgUniqueViolation     = "23505"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

// mapPgError hides driver errors behind the sentinels in pkg/util.
func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.ErrDuplicate
		case pgNotNullViolation, pgForeignKeyViolation, pgCheckViolation, pgInvalidText:
			return apperrors.ErrInvalid
		}
	}
	return err
}

func limitOrDefault(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
