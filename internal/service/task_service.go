package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/authz"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// TaskService coordinates task workflows.
type TaskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	engine     *authz.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TaskDependencies bundles collaborators of the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	UserRepo   repository.UserRepository
	Engine     *authz.Engine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	s := &TaskService{
		tasks:      deps.TaskRepo,
		users:      deps.UserRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.engine == nil {
		s.engine = authz.NewEngine()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// TaskCreateInput describes a new task. Empty status and priority take the
// defaults pending and medium.
type TaskCreateInput struct {
	Title       string
	Description string
	AssignedTo  []string
	Status      string
	Priority    string
	StartDate   *time.Time
	DueDate     *time.Time
	Remarks     string
}

// TaskQuery describes a task listing request. Status, Priority and AssignedTo
// only apply to actors whose scope is filterable.
type TaskQuery struct {
	Mine       bool
	Status     string
	Priority   string
	AssignedTo string
	Limit      int
	Offset     int
}

// CreateTask validates every proposed assignee before persisting.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.User, in TaskCreateInput) (*domain.Task, error) {
	if err := s.engine.Gate(actor, authz.ActionCreateTask).Err(); err != nil {
		return nil, err
	}

	ids := uniqueIDs(in.AssignedTo)
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if len(ids) == 0 {
		problems = append(problems, "assignedTo must name at least one user")
	}
	status := domain.TaskStatusPending
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !status.Valid() {
			problems = append(problems, fmt.Sprintf("invalid status %q", in.Status))
		}
	}
	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !priority.Valid() {
			problems = append(problems, fmt.Sprintf("invalid priority %q", in.Priority))
		}
	}
	if datesInverted(in.StartDate, in.DueDate) {
		problems = append(problems, "dueDate cannot be before startDate")
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("Validation Error", problems)
	}

	assignees, err := loadAll(ctx, s.users, ids, "Assignee")
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(actor, authz.ActionCreateTask, authz.Target{ProposedAssignees: assignees}); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		AssignedBy:  actor.ID,
		AssignedTo:  ids,
		Status:      status,
		Priority:    priority,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
		Remarks:     in.Remarks,
	}
	if status == domain.TaskStatusCompleted {
		stamp := s.now()
		task.CompletedAt = &stamp
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.announce(ctx, actor, task, ids)
	return task, nil
}

// ListTasks returns the tasks visible to the actor.
func (s *TaskService) ListTasks(ctx context.Context, actor *domain.User, q TaskQuery) ([]domain.Task, error) {
	if err := s.engine.Authorize(actor, authz.ActionListTasks, authz.Target{}); err != nil {
		return nil, err
	}

	scope := s.engine.TaskScope(actor, q.Mine)
	filter := repository.TaskFilter{Limit: q.Limit, Offset: q.Offset}
	switch scope.Kind {
	case authz.ScopeNone:
		return []domain.Task{}, nil
	case authz.ScopeAssignedBy:
		filter.AssignedBy = scope.ActorID
	case authz.ScopeOwn:
		filter.Assignee = scope.ActorID
	case authz.ScopeTeam:
		team, err := s.users.ListByManager(ctx, scope.ActorID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		filter.Visible = &repository.TaskVisibility{AssignedBy: scope.ActorID, Assignees: userIDs(team)}
	}

	if scope.Filterable {
		var problems []string
		if q.Status != "" {
			filter.Status = domain.TaskStatus(q.Status)
			if !filter.Status.Valid() {
				problems = append(problems, fmt.Sprintf("invalid status %q", q.Status))
			}
		}
		if q.Priority != "" {
			filter.Priority = domain.Priority(q.Priority)
			if !filter.Priority.Valid() {
				problems = append(problems, fmt.Sprintf("invalid priority %q", q.Priority))
			}
		}
		if len(problems) > 0 {
			return nil, apperrors.NewValidationError("Validation Error", problems)
		}
		filter.Assignee = q.AssignedTo
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// GetTask returns one task if the actor can see it.
func (s *TaskService) GetTask(ctx context.Context, actor *domain.User, id string) (*domain.Task, error) {
	if err := s.engine.Gate(actor, authz.ActionViewTask).Err(); err != nil {
		return nil, err
	}
	task, assignees, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Authorize(actor, authz.ActionViewTask, authz.Target{Task: task, TaskAssignees: assignees}); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies a partial update. Policy sees the full set of keys in the
// patch, so one disallowed key rejects the whole request.
func (s *TaskService) UpdateTask(ctx context.Context, actor *domain.User, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := s.engine.Gate(actor, authz.ActionUpdateTask).Err(); err != nil {
		return nil, err
	}
	task, assignees, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var proposed []domain.User
	if patch.Has(domain.TaskFieldAssignedTo) {
		patch.AssignedTo = uniqueIDs(patch.AssignedTo)
		if len(patch.AssignedTo) > 0 {
			if proposed, err = s.users.GetByIDs(ctx, patch.AssignedTo); err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}

	target := authz.Target{
		Task:              task,
		TaskAssignees:     assignees,
		TaskPatch:         &patch,
		ProposedAssignees: proposed,
	}
	if err := s.engine.Authorize(actor, authz.ActionUpdateTask, target); err != nil {
		return nil, err
	}
	if problems := validateTaskPatch(task, patch); len(problems) > 0 {
		return nil, apperrors.NewValidationError("Validation Error", problems)
	}
	if patch.Has(domain.TaskFieldAssignedTo) && len(proposed) != len(patch.AssignedTo) {
		return nil, apperrors.NewNotFound("Assignee")
	}

	previous := append([]string(nil), task.AssignedTo...)
	patch.Apply(task, actor, s.now())
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, notFound(err, "Task")
	}

	if added := newIDs(previous, task.AssignedTo); len(added) > 0 {
		s.announce(ctx, actor, task, added)
	}
	s.logger.Debug("task updated", zap.String("task_id", task.ID), zap.String("actor_id", actor.ID))
	return task, nil
}

func (s *TaskService) load(ctx context.Context, id string) (*domain.Task, []domain.User, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "Task")
	}
	assignees, err := s.users.GetByIDs(ctx, task.AssignedTo)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return task, assignees, nil
}

func (s *TaskService) announce(ctx context.Context, actor *domain.User, task *domain.Task, assignees []string) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTaskAssigned, task.ID, actor.ID, events.TaskAssignedPayload{
		Title:     task.Title,
		Assignees: assignees,
	}))
}

// validateTaskPatch checks values after policy has accepted the keys.
func validateTaskPatch(task *domain.Task, p domain.TaskPatch) []string {
	var problems []string
	for _, f := range p.Fields {
		if !f.Editable() {
			problems = append(problems, fmt.Sprintf("field %q cannot be updated", f))
		}
	}
	if p.Has(domain.TaskFieldTitle) && (p.Title == nil || strings.TrimSpace(*p.Title) == "") {
		problems = append(problems, "title cannot be empty")
	}
	if p.Has(domain.TaskFieldAssignedTo) && len(p.AssignedTo) == 0 {
		problems = append(problems, "assignedTo must name at least one user")
	}
	if p.Has(domain.TaskFieldStatus) && (p.Status == nil || !p.Status.Valid()) {
		problems = append(problems, "invalid status")
	}
	if p.Has(domain.TaskFieldPriority) && (p.Priority == nil || !p.Priority.Valid()) {
		problems = append(problems, "invalid priority")
	}
	start, due := task.StartDate, task.DueDate
	if p.StartDate != nil {
		start = p.StartDate
	}
	if p.DueDate != nil {
		due = p.DueDate
	}
	if datesInverted(start, due) {
		problems = append(problems, "dueDate cannot be before startDate")
	}
	return problems
}

func datesInverted(start, due *time.Time) bool {
	return start != nil && due != nil && due.Before(*start)
}

// newIDs returns the ids in next that are absent from prev.
func newIDs(prev, next []string) []string {
	seen := make(map[string]bool, len(prev))
	for _, id := range prev {
		seen[id] = true
	}
	var out []string
	for _, id := range next {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
