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

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	engine     *authz.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Engine     *authz.Engine
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewTicketService constructs a TicketService.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
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

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    string
	AssignedTo  string
}

// TicketQuery describes listing filters.
type TicketQuery struct {
	Status   string
	Priority string
	Limit    int
	Offset   int
}

// CreateTicket opens a ticket. An optional assignee must satisfy the
// assignment rule for the actor.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, in TicketCreateInput) (*domain.Ticket, error) {
	if err := s.engine.Gate(actor, authz.ActionCreateTicket).Err(); err != nil {
		return nil, err
	}

	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	priority := domain.PriorityMedium
	if in.Priority != "" {
		priority = domain.Priority(in.Priority)
		if !priority.Valid() {
			problems = append(problems, fmt.Sprintf("invalid priority %q", in.Priority))
		}
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationError("Validation Error", problems)
	}

	var assignee *domain.User
	if in.AssignedTo != "" {
		u, err := s.users.GetByID(ctx, in.AssignedTo)
		if err != nil {
			return nil, notFound(err, "Assignee")
		}
		assignee = u
	}
	if err := s.engine.Authorize(actor, authz.ActionCreateTicket, authz.Target{Subject: assignee}); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		CreatedBy:   actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
	}
	if assignee != nil {
		ticket.AssignedTo = &assignee.ID
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if assignee != nil {
		s.announce(ctx, actor, ticket)
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the actor, newest first.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, q TicketQuery) ([]domain.Ticket, error) {
	if err := s.engine.Authorize(actor, authz.ActionListTickets, authz.Target{}); err != nil {
		return nil, err
	}

	scope := s.engine.TicketScope(actor)
	filter := repository.TicketFilter{Limit: q.Limit, Offset: q.Offset}
	switch scope.Kind {
	case authz.ScopeNone:
		return []domain.Ticket{}, nil
	case authz.ScopeOwn:
		filter.Parties = []string{scope.ActorID}
	case authz.ScopeTeam:
		team, err := s.users.ListByManager(ctx, scope.ActorID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		filter.Parties = append([]string{scope.ActorID}, userIDs(team)...)
	}

	if scope.Filterable {
		var problems []string
		if q.Status != "" {
			filter.Status = domain.TicketStatus(q.Status)
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
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket returns one ticket with its comment thread.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, id string) (*domain.Ticket, error) {
	ticket, _, err := s.authorizeTicket(ctx, actor, authz.ActionViewTicket, id, nil)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// AddComment appends to the thread of a ticket the actor can see.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, id, text string) (*domain.Ticket, error) {
	text = strings.TrimSpace(text)
	if _, _, err := s.authorizeTicket(ctx, actor, authz.ActionCommentTicket, id, nil); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperrors.NewValidationError("Validation Error", []string{"text is required"})
	}

	ticket, err := s.tickets.AppendComment(ctx, &domain.TicketComment{
		TicketID:  id,
		AuthorID:  actor.ID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, notFound(err, "Ticket")
	}
	return ticket, nil
}

// AssignTicket sets the assignee of a visible ticket.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, id, assigneeID string) (*domain.Ticket, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.NewValidationError("Validation Error", []string{"assignedTo is required"})
	}
	if err := s.engine.Gate(actor, authz.ActionAssignTicket).Err(); err != nil {
		return nil, err
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, notFound(err, "Assignee")
	}
	if _, _, err := s.authorizeTicket(ctx, actor, authz.ActionAssignTicket, id, assignee); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Assign(ctx, id, assignee.ID, s.now().UTC())
	if err != nil {
		return nil, notFound(err, "Ticket")
	}
	s.announce(ctx, actor, ticket)
	s.logger.Info("ticket assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("assignee_id", assignee.ID),
		zap.String("actor_id", actor.ID))
	return ticket, nil
}

// authorizeTicket loads the ticket and both parties, then asks the engine.
func (s *TicketService) authorizeTicket(ctx context.Context, actor *domain.User, action authz.Action, id string, subject *domain.User) (*domain.Ticket, authz.Target, error) {
	if err := s.engine.Gate(actor, action).Err(); err != nil {
		return nil, authz.Target{}, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, authz.Target{}, notFound(err, "Ticket")
	}
	creator, err := optionalUser(ctx, s.users, ticket.CreatedBy)
	if err != nil {
		return nil, authz.Target{}, err
	}
	assignee, err := optionalUser(ctx, s.users, ticket.Assignee())
	if err != nil {
		return nil, authz.Target{}, err
	}
	target := authz.Target{
		Subject:        subject,
		Ticket:         ticket,
		TicketCreator:  creator,
		TicketAssignee: assignee,
	}
	if err := s.engine.Authorize(actor, action, target); err != nil {
		return nil, authz.Target{}, err
	}
	return ticket, target, nil
}

func (s *TicketService) announce(ctx context.Context, actor *domain.User, ticket *domain.Ticket) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketAssigned, ticket.ID, actor.ID, events.TicketAssignedPayload{
		Title:      ticket.Title,
		AssigneeID: ticket.Assignee(),
	}))
}
