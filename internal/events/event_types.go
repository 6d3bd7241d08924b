package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventEmployeeCreated        EventType = "employee_created"
	EventTaskAssigned           EventType = "task_assigned"
	EventTicketAssigned         EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload carries the raw verification token; it only lives in
// memory until the mail is queued.
type UserRegisteredPayload struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	VerificationToken string `json:"-"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ResetToken string `json:"-"`
}

// EmployeeCreatedPayload payload.
type EmployeeCreatedPayload struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Role              string `json:"role"`
	Password          string `json:"-"`
	VerificationToken string `json:"-"`
	CreatedBy         string `json:"created_by"`
}

// TaskAssignedPayload payload.
type TaskAssignedPayload struct {
	Title     string   `json:"title"`
	Assignees []string `json:"assignees"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Title      string `json:"title"`
	AssigneeID string `json:"assignee_id"`
}
