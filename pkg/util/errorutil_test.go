package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"domain error passes through", NewForbidden("nope"), KindForbidden, http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewConflict("taken")), KindConflict, http.StatusConflict},
		{"not found sentinel", fmt.Errorf("users: %w", ErrNotFound), KindNotFound, http.StatusNotFound},
		{"duplicate sentinel", ErrDuplicate, KindConflict, http.StatusConflict},
		{"invalid sentinel", ErrInvalid, KindBadRequest, http.StatusBadRequest},
		{"fiber not found", fiber.ErrNotFound, KindNotFound, http.StatusNotFound},
		{"fiber teapot keeps status", fiber.ErrTeapot, KindBadRequest, http.StatusTeapot},
		{"fiber 5xx is internal", fiber.ErrBadGateway, KindInternal, http.StatusInternalServerError},
		{"unknown error is internal", errors.New("boom"), KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			if de.Kind != tc.kind || de.HTTPStatus != tc.status {
				t.Fatalf("got %s/%d, want %s/%d", de.Kind, de.HTTPStatus, tc.kind, tc.status)
			}
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	de := ToDomainError(errors.New("pq: password authentication failed"))
	if de.Message != "internal server error" {
		t.Fatalf("message leaked: %q", de.Message)
	}
	if de.Err == nil {
		t.Fatalf("cause should be kept for logging")
	}
}

func TestNotFoundNamesResource(t *testing.T) {
	err := NewNotFound("Task")
	if err.Error() != "Task not found" {
		t.Fatalf("message = %q", err.Error())
	}
	if !IsKind(err, KindNotFound) {
		t.Fatalf("kind mismatch")
	}
}

func TestMapErrorKeepsNil(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if !IsKind(MapError(ErrNotFound), KindNotFound) {
		t.Fatalf("sentinel not mapped")
	}
}

func TestValidationErrorCarriesMessages(t *testing.T) {
	err := NewValidationError("Validation Error", []string{"a", "b"})
	var de *DomainError
	if !errors.As(err, &de) || len(de.Errors) != 2 || de.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected %+v", de)
	}
}
