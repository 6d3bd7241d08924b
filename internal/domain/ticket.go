package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for internal support requests.
type Ticket struct {
	ID          string
	CreatedBy   string
	AssignedTo  *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    Priority
	Comments    []TicketComment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Assignee returns the assignee id or "".
func (t *Ticket) Assignee() string {
	if t == nil || t.AssignedTo == nil {
		return ""
	}
	return *t.AssignedTo
}

// TicketComment is an append-only entry in a ticket thread.
type TicketComment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
