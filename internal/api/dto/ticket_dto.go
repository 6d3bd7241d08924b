package dto

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  string `json:"assignedTo"`
}

// CommentRequest payload.
type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required"`
}

// CommentResponse is one entry of a ticket thread.
type CommentResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketResponse is the wire form of a ticket with its thread.
type TicketResponse struct {
	ID          string            `json:"id"`
	CreatedBy   string            `json:"createdBy"`
	AssignedTo  *string           `json:"assignedTo"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	comments := make([]CommentResponse, 0, len(t.Comments))
	for _, c := range t.Comments {
		comments = append(comments, CommentResponse{ID: c.ID, Author: c.AuthorID, Text: c.Text, CreatedAt: c.CreatedAt})
	}
	return TicketResponse{
		ID:          t.ID,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Comments:    comments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
