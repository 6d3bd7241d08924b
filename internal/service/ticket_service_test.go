package service

import (
	"context"
	"testing"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

func TestTicketAssignmentRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m1 := h.seed(t, "m1", domain.RoleManager, nil)
	m2 := h.seed(t, "m2", domain.RoleManager, nil)
	a := h.seed(t, "a", domain.RoleEmployee, m1)
	b := h.seed(t, "b", domain.RoleDesigner, m1)
	c := h.seed(t, "c", domain.RoleEmployee, m2)
	loner := h.seed(t, "loner", domain.RoleEmployee, nil)
	drifter := h.seed(t, "drifter", domain.RoleEmployee, nil)

	ticket, err := h.tickets.CreateTicket(ctx, a, TicketCreateInput{Title: "VPN down", Description: "Cannot connect", AssignedTo: b.ID})
	if err != nil {
		t.Fatalf("peer assignment: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.PriorityMedium || ticket.Assignee() != b.ID {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	_, err = h.tickets.CreateTicket(ctx, a, TicketCreateInput{Title: "x", Description: "y", AssignedTo: c.ID})
	expectKind(t, err, apperrors.KindForbidden)

	_, err = h.tickets.CreateTicket(ctx, loner, TicketCreateInput{Title: "x", Description: "y", AssignedTo: drifter.ID})
	expectKind(t, err, apperrors.KindForbidden)

	_, err = h.tickets.CreateTicket(ctx, a, TicketCreateInput{Title: "x", Description: "y", AssignedTo: "missing"})
	expectKind(t, err, apperrors.KindNotFound)

	_, err = h.tickets.CreateTicket(ctx, a, TicketCreateInput{Priority: "meh"})
	expectKind(t, err, apperrors.KindBadRequest)

	self, err := h.tickets.AssignTicket(ctx, m1, ticket.ID, m1.ID)
	if err != nil {
		t.Fatalf("manager self assignment: %v", err)
	}
	if self.Assignee() != m1.ID {
		t.Fatalf("assignee = %q", self.Assignee())
	}

	_, err = h.tickets.AssignTicket(ctx, m2, ticket.ID, m2.ID)
	expectKind(t, err, apperrors.KindForbidden)

	_, err = h.tickets.AssignTicket(ctx, m1, ticket.ID, c.ID)
	expectKind(t, err, apperrors.KindForbidden)
}

func TestTicketVisibilityAndComments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m1 := h.seed(t, "m1", domain.RoleManager, nil)
	m2 := h.seed(t, "m2", domain.RoleManager, nil)
	a := h.seed(t, "a", domain.RoleEmployee, m1)
	c := h.seed(t, "c", domain.RoleEmployee, m2)
	qa := h.seed(t, "qa", domain.RoleQualityAssurance, m2)

	ticket, err := h.tickets.CreateTicket(ctx, a, TicketCreateInput{Title: "Laptop", Description: "Broken screen", Priority: "high"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.tickets.CreateTicket(ctx, c, TicketCreateInput{Title: "Chair", Description: "Squeaks"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, viewer := range []*domain.User{a, m1, qa} {
		if _, err := h.tickets.GetTicket(ctx, viewer, ticket.ID); err != nil {
			t.Fatalf("%s should see the ticket: %v", viewer.Name, err)
		}
	}
	for _, outsider := range []*domain.User{c, m2} {
		_, err := h.tickets.GetTicket(ctx, outsider, ticket.ID)
		expectKind(t, err, apperrors.KindForbidden)
	}

	_, err = h.tickets.AddComment(ctx, c, ticket.ID, "me too")
	expectKind(t, err, apperrors.KindForbidden)
	_, err = h.tickets.AddComment(ctx, a, ticket.ID, "   ")
	expectKind(t, err, apperrors.KindBadRequest)

	if _, err := h.tickets.AddComment(ctx, a, ticket.ID, "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	thread, err := h.tickets.AddComment(ctx, m1, ticket.ID, "second")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if len(thread.Comments) != 2 || thread.Comments[0].Text != "first" || thread.Comments[1].AuthorID != m1.ID {
		t.Fatalf("unexpected thread: %+v", thread.Comments)
	}

	cases := []struct {
		name  string
		actor *domain.User
		query TicketQuery
		want  int
	}{
		{"creator", a, TicketQuery{}, 1},
		{"manager of creator", m1, TicketQuery{}, 1},
		{"other manager", m2, TicketQuery{}, 1},
		{"qa sees all", qa, TicketQuery{}, 2},
		{"qa filters priority", qa, TicketQuery{Priority: "high"}, 1},
		{"status filter", a, TicketQuery{Status: "closed"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.tickets.ListTickets(ctx, tc.actor, tc.query)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d tickets, want %d", len(got), tc.want)
			}
		})
	}

	_, err = h.tickets.ListTickets(ctx, a, TicketQuery{Status: "lost"})
	expectKind(t, err, apperrors.KindBadRequest)
}

func TestUnverifiedActorCannotUseTickets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m1 := h.seed(t, "m1", domain.RoleManager, nil)
	fresh := h.seed(t, "fresh", domain.RoleEmployee, m1)
	fresh.IsVerified = false

	_, err := h.tickets.CreateTicket(ctx, fresh, TicketCreateInput{Title: "x", Description: "y"})
	expectKind(t, err, apperrors.KindForbidden)
	_, err = h.tickets.ListTickets(ctx, fresh, TicketQuery{})
	expectKind(t, err, apperrors.KindForbidden)
	_, err = h.tasks.ListTasks(ctx, fresh, TaskQuery{})
	expectKind(t, err, apperrors.KindForbidden)
}

func TestTeammateActsOnPeerTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.seed(t, "m", domain.RoleManager, nil)
	e1 := h.seed(t, "e1", domain.RoleEmployee, m)
	e2 := h.seed(t, "e2", domain.RoleDeveloper, m)

	ticket, err := h.tickets.CreateTicket(ctx, e2, TicketCreateInput{Title: "Printer", Description: "Jammed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = h.tickets.GetTicket(ctx, e1, ticket.ID)
	expectKind(t, err, apperrors.KindForbidden)

	thread, err := h.tickets.AddComment(ctx, e1, ticket.ID, "hi")
	if err != nil {
		t.Fatalf("peer comment: %v", err)
	}
	if len(thread.Comments) != 1 || thread.Comments[0].AuthorID != e1.ID {
		t.Fatalf("unexpected thread: %+v", thread.Comments)
	}

	assigned, err := h.tickets.AssignTicket(ctx, e1, ticket.ID, e2.ID)
	if err != nil {
		t.Fatalf("peer assign: %v", err)
	}
	if assigned.Assignee() != e2.ID {
		t.Fatalf("assignee = %q", assigned.Assignee())
	}
}

func TestUnmanagedEmployeesAreNotPeers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	loner := h.seed(t, "loner", domain.RoleEmployee, nil)
	drifter := h.seed(t, "drifter", domain.RoleEmployee, nil)

	ticket, err := h.tickets.CreateTicket(ctx, drifter, TicketCreateInput{Title: "Desk", Description: "Wobbly"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = h.tickets.AddComment(ctx, loner, ticket.ID, "hi")
	expectKind(t, err, apperrors.KindForbidden)
	_, err = h.tickets.AssignTicket(ctx, loner, ticket.ID, drifter.ID)
	expectKind(t, err, apperrors.KindForbidden)
}
