package dto

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", raw)
}

// CreateTaskRequest is the payload of POST /tasks.
type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	AssignedTo  []string `json:"assignedTo" validate:"required,min=1,dive,required"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	StartDate   string   `json:"startDate"`
	DueDate     string   `json:"dueDate"`
	Remarks     string   `json:"remarks"`
}

// Dates parses the optional start and due dates.
func (r CreateTaskRequest) Dates() (start, due *time.Time, err error) {
	var msgs []string
	if start, err = parseDate(r.StartDate); err != nil {
		msgs = append(msgs, "startDate: "+err.Error())
	}
	if due, err = parseDate(r.DueDate); err != nil {
		msgs = append(msgs, "dueDate: "+err.Error())
	}
	if len(msgs) > 0 {
		return nil, nil, apperrors.NewValidationError("Validation Error", msgs)
	}
	return start, due, nil
}

// ParseTaskPatch decodes a PATCH /tasks/:id body. Every key present is
// recorded in Fields, known or not, so that policy sees the whole request.
func ParseTaskPatch(body []byte) (domain.TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.TaskPatch{}, apperrors.NewBadRequest("invalid payload")
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		patch domain.TaskPatch
		msgs  []string
	)
	decode := func(key string, dst any) bool {
		if err := json.Unmarshal(raw[key], dst); err != nil {
			msgs = append(msgs, fmt.Sprintf("%s has the wrong type", key))
			return false
		}
		return true
	}
	date := func(key string) *time.Time {
		var s string
		if !decode(key, &s) {
			return nil
		}
		t, err := parseDate(s)
		if err != nil {
			msgs = append(msgs, key+": "+err.Error())
		}
		return t
	}

	for _, key := range keys {
		field := domain.TaskField(key)
		patch.Fields = append(patch.Fields, field)
		switch field {
		case domain.TaskFieldTitle:
			var s string
			if decode(key, &s) {
				patch.Title = &s
			}
		case domain.TaskFieldDescription:
			var s string
			if decode(key, &s) {
				patch.Description = &s
			}
		case domain.TaskFieldRemarks:
			var s string
			if decode(key, &s) {
				patch.Remarks = &s
			}
		case domain.TaskFieldAssignedTo:
			var ids []string
			if decode(key, &ids) {
				patch.AssignedTo = ids
			}
		case domain.TaskFieldStatus:
			var s domain.TaskStatus
			if decode(key, &s) {
				patch.Status = &s
			}
		case domain.TaskFieldPriority:
			var p domain.Priority
			if decode(key, &p) {
				patch.Priority = &p
			}
		case domain.TaskFieldStartDate:
			patch.StartDate = date(key)
		case domain.TaskFieldDueDate:
			patch.DueDate = date(key)
		}
	}
	if len(msgs) > 0 {
		return domain.TaskPatch{}, apperrors.NewValidationError("Validation Error", msgs)
	}
	return patch, nil
}

// TaskResponse is the wire form of a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedBy  string     `json:"assignedBy"`
	AssignedTo  []string   `json:"assignedTo"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ReviewedBy  *string    `json:"reviewedBy,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTaskResponse maps a domain task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		AssignedBy:  t.AssignedBy,
		AssignedTo:  append([]string{}, t.AssignedTo...),
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		StartDate:   t.StartDate,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		ReviewedBy:  t.ReviewedBy,
		Remarks:     t.Remarks,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskList maps a slice of tasks.
func NewTaskList(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
