package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/service"
)

// TasksHandler exposes task endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	start, due, err := req.Dates()
	if err != nil {
		return err
	}
	task, err := h.tasks.CreateTask(c.UserContext(), actor, service.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   start,
		DueDate:     due,
		Remarks:     req.Remarks,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Task created", dto.NewTaskResponse(task))
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit, offset := page(c)
	tasks, err := h.tasks.ListTasks(c.UserContext(), actor, service.TaskQuery{
		Mine:       c.QueryBool("mine", false),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		AssignedTo: c.Query("assignedTo"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Tasks fetched", dto.NewTaskList(tasks))
}

// Get handles GET /api/tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.GetTask(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task fetched", dto.NewTaskResponse(task))
}

// Update handles PATCH /api/tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	patch, err := dto.ParseTaskPatch(c.Body())
	if err != nil {
		return err
	}
	task, err := h.tasks.UpdateTask(c.UserContext(), actor, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task updated", dto.NewTaskResponse(task))
}
