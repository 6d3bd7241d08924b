// Package mailer delivers transactional email. Services hand a Message to a
// Notifier; the queue notifier parks it in Redis and the mail worker renders
// and sends it over SMTP.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

// Kind selects the template of a message.
type Kind string

const (
	KindVerifyEmail         Kind = "verify_email"
	KindPasswordReset       Kind = "password_reset"
	KindEmployeeCredentials Kind = "employee_credentials"
)

// Message is an address, a template kind and its parameters.
type Message struct {
	To       string            `json:"to"`
	Kind     Kind              `json:"kind"`
	Params   map[string]string `json:"params"`
	Attempts int               `json:"attempts,omitempty"`
}

// Notifier accepts messages for delivery. Implementations must not block on
// the SMTP round trip.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Sender performs the actual delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Kind]string{
	KindVerifyEmail:         "Verify your email address",
	KindPasswordReset:       "Reset your password",
	KindEmployeeCredentials: "Your workforce account",
}

// Renderer turns messages into subject and HTML body.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Render executes the template for msg.Kind.
func (r *Renderer) Render(msg Message) (subject, body string, err error) {
	subject, ok := subjects[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", msg.Kind)
	}
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, string(msg.Kind)+".html", msg.Params); err != nil {
		return "", "", fmt.Errorf("render %s: %w", msg.Kind, err)
	}
	return subject, buf.String(), nil
}
