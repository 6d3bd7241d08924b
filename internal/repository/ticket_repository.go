package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

const ticketColumns = `id, created_by, assigned_to, title, description, status, priority, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (created_by, assigned_to, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapPgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	if err := r.loadComments(ctx, []*domain.Ticket{ticket}); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Parties != nil {
		args = append(args, filter.Parties)
		clauses = append(clauses, fmt.Sprintf("(created_by = ANY($%d::uuid[]) OR assigned_to = ANY($%d::uuid[]))", len(args), len(args)))
	}

	args = append(args, limitOrDefault(filter.Limit), filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		ticketColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}

	ptrs := make([]*domain.Ticket, len(tickets))
	for i := range tickets {
		ptrs[i] = &tickets[i]
	}
	if err := r.loadComments(ctx, ptrs); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) Assign(ctx context.Context, id, assigneeID string, at time.Time) (*domain.Ticket, error) {
	query := `UPDATE tickets SET assigned_to=$1, updated_at=$2 WHERE id=$3 RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, assigneeID, at, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	if err := r.loadComments(ctx, []*domain.Ticket{ticket}); err != nil {
		return nil, err
	}
	return ticket, nil
}

// AppendComment inserts the comment and bumps the ticket in one transaction.
func (r *ticketRepository) AppendComment(ctx context.Context, comment *domain.TicketComment) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO ticket_comments (ticket_id, author_id, text, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if err := tx.QueryRow(ctx, insert,
		comment.TicketID,
		comment.AuthorID,
		comment.Text,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		return nil, mapPgError(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE tickets SET updated_at=$1 WHERE id=$2`, comment.CreatedAt, comment.TicketID); err != nil {
		return nil, mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapPgError(err)
	}
	return r.GetByID(ctx, comment.TicketID)
}

func (r *ticketRepository) loadComments(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	byID := make(map[string]*domain.Ticket, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	const query = `
        SELECT id, ticket_id, author_id, text, created_at
        FROM ticket_comments WHERE ticket_id = ANY($1::uuid[])
        ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return mapPgError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.TicketComment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return mapPgError(err)
		}
		if t, ok := byID[c.TicketID]; ok {
			t.Comments = append(t.Comments, c)
		}
	}
	return mapPgError(rows.Err())
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
