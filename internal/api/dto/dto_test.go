package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Kind != apperrors.KindBadRequest {
		t.Fatalf("kind = %s", de.Kind)
	}
	return de.Errors
}

func TestValidateAggregatesMessages(t *testing.T) {
	err := Validate(&SignupRequest{Name: "A", Email: "nope", Password: "123"})
	msgs := validationMessages(t, err)

	want := map[string]bool{
		"Name must be between 2 and 50 characters":    false,
		"Please provide a valid email address":        false,
		"Password must be at least 6 characters long": false,
	}
	for _, m := range msgs {
		if _, ok := want[m]; !ok {
			t.Fatalf("unexpected message %q", m)
		}
		want[m] = true
	}
	for m, seen := range want {
		if !seen {
			t.Fatalf("missing message %q", m)
		}
	}
}

func TestValidateAcceptsGoodPayloads(t *testing.T) {
	cases := []any{
		&SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"},
		&LoginRequest{Email: "ada@example.com", Password: "secret1"},
		&ResetPasswordRequest{Token: "0123456789abcdef", Password: "secret1"},
		&CreateTaskRequest{Title: "t", AssignedTo: []string{"u1"}},
		&CreateTicketRequest{Title: "t", Description: "d"},
	}
	for _, req := range cases {
		if err := Validate(req); err != nil {
			t.Fatalf("%T: %v", req, err)
		}
	}
}

func TestValidateRejectsEmptyAssignees(t *testing.T) {
	msgs := validationMessages(t, Validate(&CreateTaskRequest{Title: "t"}))
	if len(msgs) != 1 || msgs[0] != "assignedTo is required" {
		t.Fatalf("unexpected messages %v", msgs)
	}
	msgs = validationMessages(t, Validate(&CreateTaskRequest{Title: "t", AssignedTo: []string{""}}))
	if len(msgs) != 1 {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestValidateRole(t *testing.T) {
	msgs := validationMessages(t, Validate(&SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: "boss"}))
	if len(msgs) != 1 || msgs[0] != "role must be one of: employee, developer, designer, qualityAssurance, manager, admin" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestParseTaskPatchRecordsEveryKey(t *testing.T) {
	patch, err := ParseTaskPatch([]byte(`{"status":"in-progress","remarks":"on it","color":"red"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []domain.TaskField{"color", domain.TaskFieldRemarks, domain.TaskFieldStatus}
	if len(patch.Fields) != len(want) {
		t.Fatalf("fields = %v", patch.Fields)
	}
	for i, f := range want {
		if patch.Fields[i] != f {
			t.Fatalf("fields = %v", patch.Fields)
		}
	}
	if patch.Status == nil || *patch.Status != domain.TaskStatusInProgress {
		t.Fatalf("status = %v", patch.Status)
	}
	if patch.Remarks == nil || *patch.Remarks != "on it" {
		t.Fatalf("remarks = %v", patch.Remarks)
	}
	if patch.Title != nil {
		t.Fatalf("title should be absent")
	}
}

func TestParseTaskPatchDates(t *testing.T) {
	patch, err := ParseTaskPatch([]byte(`{"startDate":"2026-03-01","dueDate":"2026-03-05T17:00:00Z"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !patch.StartDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", patch.StartDate)
	}
	if !patch.DueDate.Equal(time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("due = %v", patch.DueDate)
	}
}

func TestParseTaskPatchRejectsBadInput(t *testing.T) {
	if _, err := ParseTaskPatch([]byte(`not json`)); !apperrors.IsKind(err, apperrors.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	msgs := validationMessages(t, func() error {
		_, err := ParseTaskPatch([]byte(`{"assignedTo":"u1","dueDate":"tomorrow","title":7}`))
		return err
	}())
	if len(msgs) != 3 {
		t.Fatalf("expected three messages, got %v", msgs)
	}
}

func TestCreateTaskDates(t *testing.T) {
	start, due, err := CreateTaskRequest{StartDate: "2026-01-02", DueDate: ""}.Dates()
	if err != nil {
		t.Fatalf("dates: %v", err)
	}
	if start == nil || due != nil {
		t.Fatalf("start=%v due=%v", start, due)
	}
	if _, _, err := (CreateTaskRequest{StartDate: "01/02/2026", DueDate: "x"}).Dates(); len(validationMessages(t, err)) != 2 {
		t.Fatalf("expected two messages")
	}
}

func TestCreateEmployeeMobileAlias(t *testing.T) {
	if got := (CreateEmployeeRequest{ContactNumber: "555"}).Mobile(); got != "555" {
		t.Fatalf("mobile = %q", got)
	}
	if got := (CreateEmployeeRequest{MobileNumber: "1", ContactNumber: "2"}).Mobile(); got != "1" {
		t.Fatalf("mobile = %q", got)
	}
}
