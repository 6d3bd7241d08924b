package authz

import "github.com/spec-kit/workforce-service/internal/domain"

// ScopeKind selects which records a listing may return.
type ScopeKind int

const (
	// ScopeNone returns nothing.
	ScopeNone ScopeKind = iota
	// ScopeAll returns every record.
	ScopeAll
	// ScopeTeam returns records touching the actor or the actor's reports.
	ScopeTeam
	// ScopeAssignedBy returns tasks the actor created.
	ScopeAssignedBy
	// ScopeOwn returns records the actor is a party to.
	ScopeOwn
)

// Scope restricts a list query to what the actor may see.
type Scope struct {
	Kind    ScopeKind
	ActorID string
	// Filterable reports whether caller-supplied filters are honoured.
	Filterable bool
}

// TaskScope returns the task listing scope. mine narrows a manager to tasks
// they created.
func (e *Engine) TaskScope(actor *domain.User, mine bool) Scope {
	if actor == nil {
		return Scope{Kind: ScopeNone}
	}
	switch {
	case actor.Role.IsAdmin():
		return Scope{Kind: ScopeAll, ActorID: actor.ID, Filterable: true}
	case !actor.IsVerified:
		return Scope{Kind: ScopeNone}
	case actor.Role.IsQA():
		return Scope{Kind: ScopeAll, ActorID: actor.ID, Filterable: true}
	case actor.Role.IsManager():
		if mine {
			return Scope{Kind: ScopeAssignedBy, ActorID: actor.ID}
		}
		return Scope{Kind: ScopeTeam, ActorID: actor.ID}
	case actor.Role.IsEmployeeFamily():
		return Scope{Kind: ScopeOwn, ActorID: actor.ID}
	}
	return Scope{Kind: ScopeNone}
}

// TicketScope returns the ticket listing scope.
func (e *Engine) TicketScope(actor *domain.User) Scope {
	if actor == nil {
		return Scope{Kind: ScopeNone}
	}
	switch {
	case actor.Role.IsAdmin():
		return Scope{Kind: ScopeAll, ActorID: actor.ID, Filterable: true}
	case !actor.IsVerified:
		return Scope{Kind: ScopeNone}
	case actor.Role.IsQA():
		return Scope{Kind: ScopeAll, ActorID: actor.ID, Filterable: true}
	case actor.Role.IsManager():
		return Scope{Kind: ScopeTeam, ActorID: actor.ID, Filterable: true}
	case actor.Role.IsEmployeeFamily():
		return Scope{Kind: ScopeOwn, ActorID: actor.ID, Filterable: true}
	}
	return Scope{Kind: ScopeNone}
}
