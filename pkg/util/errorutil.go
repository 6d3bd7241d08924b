package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies application errors; each kind maps to one HTTP status.
type Kind string

const (
	KindBadRequest   Kind = "BAD_REQUEST"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindInternal     Kind = "INTERNAL_ERROR"
)

var kindStatus = map[Kind]int{
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// Storage sentinels. Repository backends translate driver errors into these so
// that services never see raw driver errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalid   = errors.New("record failed validation")
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Errors     []string
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError of the given kind.
func NewDomainError(kind Kind, message string, errs []string) *DomainError {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &DomainError{Kind: kind, Message: message, HTTPStatus: status, Errors: errs}
}

func NewValidationError(message string, errs []string) error {
	return NewDomainError(KindBadRequest, message, errs)
}

func NewBadRequest(message string) error {
	return NewDomainError(KindBadRequest, message, nil)
}

func NewNotFound(resource string) error {
	return NewDomainError(KindNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindUnauthorized, message, nil)
}

// NewUnauthorizedCause keeps the underlying cause for logs while the caller
// only sees message.
func NewUnauthorizedCause(message string, cause error) error {
	de := NewDomainError(KindUnauthorized, message, nil)
	de.Err = cause
	return de
}

func NewForbidden(message string) error {
	return NewDomainError(KindForbidden, message, nil)
}

func NewConflict(message string) error {
	return NewDomainError(KindConflict, message, nil)
}

func NewInternalError(err error) error {
	de := NewDomainError(KindInternal, "internal server error", nil)
	de.Err = err
	return de
}

// IsKind reports whether err normalizes to the given kind.
func IsKind(err error, kind Kind) bool {
	de := ToDomainError(err)
	return de != nil && de.Kind == kind
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromStatus(fiberErr.Code, fiberErr.Message)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NewDomainError(KindNotFound, "resource not found", nil)
	case errors.Is(err, ErrDuplicate):
		return NewDomainError(KindConflict, "Duplicate field value entered", nil)
	case errors.Is(err, ErrInvalid):
		return NewDomainError(KindBadRequest, "Validation Error", []string{err.Error()})
	}
	de := NewDomainError(KindInternal, "internal server error", nil)
	de.Err = err
	return de
}

func fromStatus(status int, message string) *DomainError {
	if status >= http.StatusInternalServerError {
		return NewDomainError(KindInternal, "internal server error", nil)
	}
	for kind, code := range kindStatus {
		if code == status {
			return NewDomainError(kind, message, nil)
		}
	}
	de := NewDomainError(KindBadRequest, message, nil)
	de.HTTPStatus = status
	return de
}

// MapError normalizes err for returning to a handler. A nil err stays nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
