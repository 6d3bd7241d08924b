package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/service"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Ticket created", dto.NewTicketResponse(ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset := page(c)
	tickets, err := h.service.ListTickets(c.UserContext(), actor, service.TicketQuery{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tickets fetched", dto.NewTicketList(tickets))
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Ticket fetched", dto.NewTicketResponse(ticket))
}

// AddComment POST /api/tickets/:id/comment.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.AddComment(c.UserContext(), actor, c.Params("id"), req.Text)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Comment added", dto.NewTicketResponse(ticket))
}

// AssignTicket PATCH /api/tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Ticket assigned", dto.NewTicketResponse(ticket))
}
