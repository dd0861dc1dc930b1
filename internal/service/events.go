package service

import (
	"context"
	"errors"
	"fmt"
)

// Event names a UI event the board reacts to.
type Event string

const (
	// EventReady fires once when the page is ready; payload is ignored.
	EventReady Event = "ready"
	// EventSubmit is a signup form submission; payload is SignupForm.
	EventSubmit Event = "submit"
	// EventDelete is a click on a participant's delete control; payload is
	// DeleteTarget.
	EventDelete Event = "delete"
)

var (
	// ErrUnknownEvent is reported for events with no registered handler.
	ErrUnknownEvent = errors.New("unknown board event")
	// ErrInvalidPayload is reported when a payload has the wrong type.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Handler runs one UI event to completion.
type Handler func(ctx context.Context, payload any) error

// On registers h for ev, replacing any previous handler.
func (b *Board) On(ev Event, h Handler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers[ev] = h
}

// Dispatch runs the handler for ev on its own goroutine and returns a
// channel that receives the handler's result once and is then closed.
//
// Handlers run detached from ctx cancellation: a flow that has started is
// never aborted by a newer one or by the caller going away. Dispatch does
// not serialize actions; concurrent flows apply their effects in the order
// they finish.
func (b *Board) Dispatch(ctx context.Context, ev Event, payload any) <-chan error {
	done := make(chan error, 1)

	b.handlersMu.RLock()
	h, ok := b.handlers[ev]
	b.handlersMu.RUnlock()
	if !ok {
		done <- fmt.Errorf("%w: %q", ErrUnknownEvent, ev)
		close(done)
		return done
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		done <- h(ctx, payload)
	}()
	return done
}

func (b *Board) registerDefaults() {
	b.On(EventReady, func(ctx context.Context, _ any) error {
		b.Refresh(ctx)
		return nil
	})

	b.On(EventSubmit, func(ctx context.Context, payload any) error {
		form, ok := payload.(SignupForm)
		if !ok {
			return fmt.Errorf("%w: %s wants SignupForm, got %T", ErrInvalidPayload, EventSubmit, payload)
		}
		b.Submit(ctx, form.Email, form.Activity)
		return nil
	})

	b.On(EventDelete, func(ctx context.Context, payload any) error {
		target, ok := payload.(DeleteTarget)
		if !ok {
			return fmt.Errorf("%w: %s wants DeleteTarget, got %T", ErrInvalidPayload, EventDelete, payload)
		}
		b.Unregister(ctx, target)
		return nil
	})
}
