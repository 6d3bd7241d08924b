package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

const taskColumns = `id, title, description, assigned_by, assigned_to, status, priority, start_date,
        due_date, completed_at, reviewed_by, remarks, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (title, description, assigned_by, assigned_to, status, priority, start_date,
            due_date, remarks)
        VALUES ($1,$2,$3,$4::uuid[],$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.AssignedBy,
		task.AssignedTo,
		task.Status,
		task.Priority,
		task.StartDate,
		task.DueDate,
		task.Remarks,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return mapPgError(err)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, assigned_to=$3::uuid[], status=$4, priority=$5,
            start_date=$6, due_date=$7, completed_at=$8, reviewed_by=$9, remarks=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.AssignedTo,
		task.Status,
		task.Priority,
		task.StartDate,
		task.DueDate,
		task.CompletedAt,
		task.ReviewedBy,
		task.Remarks,
		task.ID,
	).Scan(&task.UpdatedAt)
	return mapPgError(err)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedBy != "" {
		args = append(args, filter.AssignedBy)
		clauses = append(clauses, fmt.Sprintf("assigned_by=$%d", len(args)))
	}
	if filter.Assignee != "" {
		args = append(args, filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("$%d::uuid = ANY(assigned_to)", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if v := filter.Visible; v != nil {
		or := []string{"FALSE"}
		if v.AssignedBy != "" {
			args = append(args, v.AssignedBy)
			or = append(or, fmt.Sprintf("assigned_by=$%d", len(args)))
		}
		if len(v.Assignees) > 0 {
			args = append(args, v.Assignees)
			or = append(or, fmt.Sprintf("assigned_to && $%d::uuid[]", len(args)))
		}
		clauses = append(clauses, "("+strings.Join(or, " OR ")+")")
	}

	args = append(args, limitOrDefault(filter.Limit), filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, mapPgError(rows.Err())
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.AssignedBy,
		&task.AssignedTo,
		&task.Status,
		&task.Priority,
		&task.StartDate,
		&task.DueDate,
		&task.CompletedAt,
		&task.ReviewedBy,
		&task.Remarks,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}
