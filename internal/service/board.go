// Package service implements the activity board: the component that loads
// the catalog into a view and runs the signup and unregister flows against
// the upstream API.
//
// Every successful mutation is followed by a full refresh. The board never
// patches the rendered list in place; it re-fetches the catalog and replaces
// the list and the select wholesale.
package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/activity-board/internal/logger"
	"github.com/Shivanand-hulikatti/activity-board/internal/model"
)

// DefaultMessageTimeout is how long a flow message stays visible.
const DefaultMessageTimeout = 5 * time.Second

// ActivityAPI is the upstream the board reads and mutates.
// *repository.ActivityRepository satisfies it.
type ActivityAPI interface {
	List(ctx context.Context) (*model.Catalog, error)
	Signup(ctx context.Context, activity, email string) (*model.SignupResponse, error)
	Unregister(ctx context.Context, activity, email string) (*model.ErrorResponse, error)
}

// View is the board's document root. Implementations must be safe for
// concurrent use: flows dispatched in parallel write to it independently.
type View interface {
	// ReplaceList swaps the whole contents of the activities list.
	ReplaceList(markup string)
	// ReplaceOptions swaps the whole contents of the activity select.
	ReplaceOptions(markup string)
	// ShowMessage makes text visible. autoHide reports whether a HideMessage
	// will follow after the message timeout.
	ShowMessage(text string, kind model.MessageKind, autoHide bool)
	HideMessage()
	ResetForm()
	// Confirm asks the user a yes/no question.
	Confirm(prompt string) bool
	// Alert shows a blocking notice.
	Alert(text string)
}

// Recorder receives flow and refresh outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	FlowCompleted(flow, outcome string)
	RefreshObserved(outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FlowCompleted(string, string)          {}
func (nopRecorder) RefreshObserved(string, time.Duration) {}

// Board is one activity board instance bound to one view.
type Board struct {
	api            ActivityAPI
	view           View
	log            logger.Logger
	recorder       Recorder
	tracer         trace.Tracer
	messageTimeout time.Duration

	handlersMu sync.RWMutex
	handlers   map[Event]Handler

	msgMu     sync.Mutex
	msgGen    uint64
	hideTimer *time.Timer
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the board's logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithRecorder sets where flow outcomes are reported.
func WithRecorder(r Recorder) Option {
	return func(b *Board) { b.recorder = r }
}

// WithMessageTimeout overrides DefaultMessageTimeout.
func WithMessageTimeout(d time.Duration) Option {
	return func(b *Board) { b.messageTimeout = d }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(b *Board) { b.tracer = t }
}

// NewBoard constructs a board and registers its default event handlers.
func NewBoard(api ActivityAPI, view View, opts ...Option) *Board {
	b := &Board{
		api:            api,
		view:           view,
		log:            logger.NewNoOpLogger(),
		recorder:       nopRecorder{},
		messageTimeout: DefaultMessageTimeout,
		handlers:       make(map[Event]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer == nil {
		b.tracer = otel.Tracer("github.com/Shivanand-hulikatti/activity-board/internal/service")
	}
	b.registerDefaults()
	return b
}

// MessageTimeout reports how long flow messages stay visible.
func (b *Board) MessageTimeout() time.Duration {
	return b.messageTimeout
}

// Close cancels any pending message hide.
func (b *Board) Close() {
	b.msgMu.Lock()
	defer b.msgMu.Unlock()
	if b.hideTimer != nil {
		b.hideTimer.Stop()
		b.hideTimer = nil
	}
	b.msgGen++
}

// showMessage makes text visible and invalidates any pending hide. The
// returned generation identifies this message for scheduleHide; autoHide
// must be true exactly when the caller will schedule one.
func (b *Board) showMessage(text string, kind model.MessageKind, autoHide bool) uint64 {
	b.msgMu.Lock()
	defer b.msgMu.Unlock()
	b.msgGen++
	if b.hideTimer != nil {
		b.hideTimer.Stop()
		b.hideTimer = nil
	}
	b.view.ShowMessage(text, kind, autoHide && b.messageTimeout > 0)
	return b.msgGen
}

// scheduleHide hides message gen after the timeout, unless a newer message
// has been shown by then.
func (b *Board) scheduleHide(gen uint64) {
	b.msgMu.Lock()
	defer b.msgMu.Unlock()
	if gen != b.msgGen || b.messageTimeout <= 0 {
		return
	}
	b.hideTimer = time.AfterFunc(b.messageTimeout, func() {
		b.msgMu.Lock()
		defer b.msgMu.Unlock()
		if gen != b.msgGen {
			return
		}
		b.hideTimer = nil
		b.view.HideMessage()
	})
}
