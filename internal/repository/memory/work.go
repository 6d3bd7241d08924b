package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// Tasks implements repository.TaskRepository.
type Tasks struct{ s *Store }

func (r Tasks) Create(_ context.Context, task *domain.Task) error {
	if len(task.AssignedTo) == 0 || task.AssignedBy == "" {
		return apperrors.ErrInvalid
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := r.s.stamp()
	task.CreatedAt, task.UpdatedAt = now, now
	r.s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r Tasks) Update(_ context.Context, task *domain.Task) error {
	if len(task.AssignedTo) == 0 {
		return apperrors.ErrInvalid
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tasks[task.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	next := cloneTask(*task)
	next.AssignedBy = stored.AssignedBy
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.s.stamp()
	task.UpdatedAt = next.UpdatedAt
	r.s.tasks[task.ID] = next
	return nil
}

func (r Tasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneTask(t)
	return &out, nil
}

func (r Tasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Task
	for _, t := range r.s.tasks {
		if taskMatches(&t, filter) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func taskMatches(t *domain.Task, f repository.TaskFilter) bool {
	if f.AssignedBy != "" && t.AssignedBy != f.AssignedBy {
		return false
	}
	if f.Assignee != "" && !t.HasAssignee(f.Assignee) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if v := f.Visible; v != nil {
		if v.AssignedBy != "" && t.AssignedBy == v.AssignedBy {
			return true
		}
		for _, id := range v.Assignees {
			if t.HasAssignee(id) {
				return true
			}
		}
		return false
	}
	return true
}

func cloneTask(t domain.Task) domain.Task {
	t.AssignedTo = append([]string(nil), t.AssignedTo...)
	t.StartDate = copyTime(t.StartDate)
	t.DueDate = copyTime(t.DueDate)
	t.CompletedAt = copyTime(t.CompletedAt)
	t.ReviewedBy = copyString(t.ReviewedBy)
	return t
}

// Tickets implements repository.TicketRepository.
type Tickets struct{ s *Store }

func (r Tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.CreatedBy == "" || ticket.Title == "" {
		return apperrors.ErrInvalid
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := r.s.stamp()
	ticket.CreatedAt, ticket.UpdatedAt = now, now
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := cloneTicket(t)
	return &out, nil
}

func (r Tickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Parties != nil && !involves(&t, filter.Parties) {
			continue
		}
		out = append(out, cloneTicket(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func involves(t *domain.Ticket, parties []string) bool {
	for _, id := range parties {
		if t.CreatedBy == id || t.Assignee() == id {
			return true
		}
	}
	return false
}

func (r Tickets) Assign(_ context.Context, id, assigneeID string, at time.Time) (*domain.Ticket, error) {
	return r.mutate(id, func(t *domain.Ticket) {
		assignee := assigneeID
		t.AssignedTo = &assignee
		t.UpdatedAt = at
	})
}

func (r Tickets) AppendComment(_ context.Context, comment *domain.TicketComment) (*domain.Ticket, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	return r.mutate(comment.TicketID, func(t *domain.Ticket) {
		t.Comments = append(t.Comments, *comment)
		t.UpdatedAt = comment.CreatedAt
	})
}

func (r Tickets) mutate(id string, change func(*domain.Ticket)) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t = cloneTicket(t)
	change(&t)
	r.s.tickets[id] = t
	out := cloneTicket(t)
	return &out, nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AssignedTo = copyString(t.AssignedTo)
	t.Comments = append([]domain.TicketComment(nil), t.Comments...)
	return t
}
