package events

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPublishRunsHandlersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls = append(calls, "first")
		return nil
	})
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTaskAssigned, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	if err := d.Publish(context.Background(), New(EventUserRegistered, "u1", "u1", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if strings.Join(calls, ",") != "first,second" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestPublishIsolatesFailures(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("smtp down")
	reached := false
	d.Subscribe(EventEmployeeCreated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventEmployeeCreated, func(context.Context, Event) error { panic("bad handler") })
	d.Subscribe(EventEmployeeCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventEmployeeCreated, "u2", "m1", nil))
	if !reached {
		t.Fatalf("later handler skipped")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if !strings.Contains(err.Error(), "panic: bad handler") {
		t.Fatalf("panic not reported: %v", err)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	if err := NewInMemoryDispatcher().Publish(context.Background(), New(EventTicketAssigned, "t1", "u1", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
