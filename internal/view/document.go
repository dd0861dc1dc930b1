// Package view holds an in-memory document for an activity board: the
// current list and select contents, the message area, the signup form and
// any pending alerts. The HTTP layer renders pages from its snapshots.
package view

import (
	"sync"

	"github.com/Shivanand-hulikatti/activity-board/internal/model"
	"github.com/Shivanand-hulikatti/activity-board/internal/render"
)

// Snapshot is a copy of the document's state.
type Snapshot struct {
	ListHTML    string
	OptionsHTML string
	Message     model.Message
	Form        model.FormState
	Alerts      []string
}

// Document implements the board's view. It is safe for concurrent use.
type Document struct {
	mu      sync.RWMutex
	list    string
	options string
	message model.Message
	form    model.FormState
	alerts  []string
	prompts []string
	confirm func(prompt string) bool
}

// Option configures a Document.
type Option func(*Document)

// WithConfirm sets how confirmation prompts are answered.
func WithConfirm(fn func(prompt string) bool) Option {
	return func(d *Document) { d.confirm = fn }
}

// NewDocument returns a document in its initial state: a loading notice in
// the list and only the placeholder in the select. Unless WithConfirm says
// otherwise every prompt is accepted.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		list:    render.LoadingHTML,
		options: render.PlaceholderOption,
		confirm: func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) ReplaceList(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = markup
}

func (d *Document) ReplaceOptions(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options = markup
}

func (d *Document) ShowMessage(text string, kind model.MessageKind, autoHide bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.message = model.Message{Text: text, Kind: kind, Visible: true, AutoHide: autoHide}
}

func (d *Document) HideMessage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.message.Visible = false
}

func (d *Document) ResetForm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form = model.FormState{}
}

// Confirm records the prompt and answers it.
func (d *Document) Confirm(prompt string) bool {
	d.mu.Lock()
	d.prompts = append(d.prompts, prompt)
	confirm := d.confirm
	d.mu.Unlock()
	return confirm(prompt)
}

func (d *Document) Alert(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, text)
}

// SetForm records the values the user typed, so a re-rendered form shows
// them until the board resets it.
func (d *Document) SetForm(f model.FormState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.form = f
}

// Snapshot copies the current state. Pending alerts stay queued.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

// Flush copies the current state and clears pending alerts, so each alert
// is delivered to the page once.
func (d *Document) Flush() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.snapshotLocked()
	d.alerts = nil
	return s
}

func (d *Document) snapshotLocked() Snapshot {
	s := Snapshot{
		ListHTML:    d.list,
		OptionsHTML: d.options,
		Message:     d.message,
		Form:        d.form,
	}
	if len(d.alerts) > 0 {
		s.Alerts = append([]string(nil), d.alerts...)
	}
	return s
}

// Prompts returns every confirmation prompt asked so far.
func (d *Document) Prompts() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.prompts...)
}
