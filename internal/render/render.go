// Package render turns an activity catalog into markup fragments.
//
// Every function here is pure: it only reads its arguments and writes
// markup. All server- and user-supplied text passes through escape.HTML
// before it reaches the writer.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/Shivanand-hulikatti/activity-board/internal/escape"
	"github.com/Shivanand-hulikatti/activity-board/internal/model"
)

// Routes the rendered markup posts back to.
const (
	SignupPath     = "/board/signup"
	UnregisterPath = "/board/unregister"
	MessagePath    = "/board/message"
)

// Fixed copy.
const (
	PlaceholderOption = `<option value="">-- Select an activity --</option>`
	LoadingHTML       = `<p>Loading activities...</p>`
	LoadFailureHTML   = `<p>Failed to load activities. Please try again later.</p>`
	EmptyParticipants = `<ul class="participants-list"><li class="participant-item empty">No participants yet</li></ul>`
)

// markup collects writes and keeps the first error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markup) text(v any) {
	m.raw(escape.HTML(v))
}

func component(fn func(m *markup)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(m)
		return m.err
	})
}

// String renders c into a string.
func String(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ActivityList renders one card per activity, in catalog order.
func ActivityList(c *model.Catalog) templ.Component {
	return component(func(m *markup) {
		for _, a := range c.Activities() {
			writeCard(m, a)
		}
	})
}

// ActivityCard renders a single activity.
func ActivityCard(a model.Activity) templ.Component {
	return component(func(m *markup) { writeCard(m, a) })
}

func writeCard(m *markup, a model.Activity) {
	m.raw(`<div class="activity-card">`)
	m.raw(`<h4>`)
	m.text(a.Name)
	m.raw(`</h4><p>`)
	m.text(a.Details.Description)
	m.raw(`</p><p><strong>Schedule:</strong> `)
	m.text(a.Details.Schedule)
	m.raw(`</p><p><strong>Availability:</strong> `)
	m.raw(strconv.Itoa(a.Details.SpotsLeft()))
	m.raw(` spots left</p>`)
	m.raw(`<div class="participants"><h5>Participants</h5>`)
	writeParticipants(m, a.Name, a.Details.Participants)
	m.raw(`</div></div>`)
}

// Participants renders the roster of one activity. An empty roster renders
// a single inert placeholder item.
func Participants(activity string, participants []string) templ.Component {
	return component(func(m *markup) { writeParticipants(m, activity, participants) })
}

func writeParticipants(m *markup, activity string, participants []string) {
	if len(participants) == 0 {
		m.raw(EmptyParticipants)
		return
	}
	m.raw(`<ul class="participants-list">`)
	for _, email := range participants {
		entry := model.ParticipantEntry{Email: email, Activity: activity}
		m.raw(`<li class="participant-item" data-email="`)
		m.text(email)
		m.raw(`" data-activity="`)
		m.text(activity)
		m.raw(`"><span class="participant-name">`)
		m.text(email)
		m.raw(`</span>`)
		writeDeleteButton(m, entry)
		m.raw(`</li>`)
	}
	m.raw(`</ul>`)
}

func writeDeleteButton(m *markup, entry model.ParticipantEntry) {
	vals, err := json.Marshal(map[string]string{"email": entry.Email, "activity": entry.Activity})
	if err != nil {
		m.err = fmt.Errorf("encode delete values: %w", err)
		return
	}
	m.raw(`<button class="delete-btn" aria-label="Unregister participant" title="Unregister"`)
	m.raw(` hx-post="` + UnregisterPath + `" hx-target="#activities-list" hx-vals="`)
	m.text(string(vals))
	m.raw(`" hx-confirm="`)
	m.text(entry.ConfirmPrompt())
	m.raw(`">&times;</button>`)
}

// SelectOptions renders the placeholder option followed by one option per
// activity. Value and label are both the activity name.
func SelectOptions(c *model.Catalog) templ.Component {
	return component(func(m *markup) {
		m.raw(PlaceholderOption)
		for _, a := range c.Activities() {
			m.raw(`<option value="`)
			m.text(a.Name)
			m.raw(`">`)
			m.text(a.Name)
			m.raw(`</option>`)
		}
	})
}
