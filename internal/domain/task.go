package domain

import "time"

// TaskStatus enumerates lifecycle states for tasks.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusInReview   TaskStatus = "in-review"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusQAApproved TaskStatus = "qa-approved"
	TaskStatusQARejected TaskStatus = "qa-rejected"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusInReview,
		TaskStatusCompleted, TaskStatusQAApproved, TaskStatusQARejected:
		return true
	}
	return false
}

// IsQAVerdict reports whether s is one of the statuses reserved to QA.
func (s TaskStatus) IsQAVerdict() bool {
	return s == TaskStatusQAApproved || s == TaskStatusQARejected
}

// Priority is shared by tasks and tickets.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a unit of work assigned by a manager or admin.
type Task struct {
	ID          string
	Title       string
	Description string
	AssignedBy  string
	AssignedTo  []string
	Status      TaskStatus
	Priority    Priority
	StartDate   *time.Time
	DueDate     *time.Time
	CompletedAt *time.Time
	ReviewedBy  *string
	Remarks     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAssignee reports whether userID is in the assignee set.
func (t *Task) HasAssignee(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskField names a patchable task attribute as it appears on the wire.
type TaskField string

const (
	TaskFieldTitle       TaskField = "title"
	TaskFieldDescription TaskField = "description"
	TaskFieldAssignedTo  TaskField = "assignedTo"
	TaskFieldStatus      TaskField = "status"
	TaskFieldPriority    TaskField = "priority"
	TaskFieldStartDate   TaskField = "startDate"
	TaskFieldDueDate     TaskField = "dueDate"
	TaskFieldRemarks     TaskField = "remarks"
)

// Editable reports whether f may be written by any role. Server-managed
// attributes (assignedBy, completedAt, reviewedBy) are never editable.
func (f TaskField) Editable() bool {
	switch f {
	case TaskFieldTitle, TaskFieldDescription, TaskFieldAssignedTo, TaskFieldStatus,
		TaskFieldPriority, TaskFieldStartDate, TaskFieldDueDate, TaskFieldRemarks:
		return true
	}
	return false
}

// TaskPatch is a partial task update. Fields lists every key present in the
// request, including unknown ones, so that policy can reject the whole patch.
type TaskPatch struct {
	Fields      []TaskField
	Title       *string
	Description *string
	AssignedTo  []string
	Status      *TaskStatus
	Priority    *Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Remarks     *string
}

// Has reports whether field was present in the request.
func (p TaskPatch) Has(field TaskField) bool {
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Apply writes the patch onto t and performs the status side effects: entering
// completed stamps CompletedAt, a QA verdict stamps ReviewedBy.
func (p TaskPatch) Apply(t *Task, actor *User, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Has(TaskFieldAssignedTo) {
		t.AssignedTo = append([]string(nil), p.AssignedTo...)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StartDate != nil {
		t.StartDate = p.StartDate
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Remarks != nil {
		t.Remarks = *p.Remarks
	}
	if p.Status != nil {
		next := *p.Status
		if next == TaskStatusCompleted && t.Status != TaskStatusCompleted {
			stamp := now
			t.CompletedAt = &stamp
		}
		if actor != nil && actor.Role.IsQA() {
			reviewer := actor.ID
			t.ReviewedBy = &reviewer
		}
		t.Status = next
	}
}
