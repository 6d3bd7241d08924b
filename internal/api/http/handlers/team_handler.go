package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/service"
)

// TeamHandler exposes the manager endpoints.
type TeamHandler struct {
	team *service.TeamService
}

// NewTeamHandler constructs handler.
func NewTeamHandler(team *service.TeamService) *TeamHandler {
	return &TeamHandler{team: team}
}

// CreateEmployee handles POST /api/manager/create-employee.
func (h *TeamHandler) CreateEmployee(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateEmployeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.team.CreateEmployee(c.UserContext(), actor, service.CreateEmployeeInput{
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		MobileNumber:   req.Mobile(),
		CompanyEmail:   req.CompanyEmail,
		PersonalEmail:  req.PersonalEmail,
		Department:     req.Department,
		JobDescription: req.JobDescription,
		ManagerID:      req.ManagerID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Employee created. Credentials were sent by email.", dto.NewUserResponse(user))
}

// Team handles GET /api/manager/team.
func (h *TeamHandler) Team(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	team, err := h.team.ListTeam(c.UserContext(), actor, c.Query("managerId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team fetched", dto.NewUserList(team))
}

// GetEmployee handles GET /api/manager/employee/:id.
func (h *TeamHandler) GetEmployee(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	user, err := h.team.GetEmployee(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Employee fetched", dto.NewUserResponse(user))
}

// UpdateEmployee handles PATCH /api/manager/employee/:id.
func (h *TeamHandler) UpdateEmployee(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.team.UpdateEmployee(c.UserContext(), actor, c.Params("id"), service.EmployeePatch{
		Name:           req.Name,
		MobileNumber:   req.MobileNumber,
		CompanyEmail:   req.CompanyEmail,
		PersonalEmail:  req.PersonalEmail,
		Department:     req.Department,
		JobDescription: req.JobDescription,
		Role:           req.Role,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Employee updated", dto.NewUserResponse(user))
}

// DeleteEmployee handles DELETE /api/manager/employee/:id.
func (h *TeamHandler) DeleteEmployee(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.team.DeleteEmployee(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Employee deleted", nil)
}
