package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/Shivanand-hulikatti/activity-board/internal/escape"
	"github.com/Shivanand-hulikatti/activity-board/internal/model"
)

// PageState is everything the page shell needs. ListHTML and OptionsHTML are
// already-rendered fragments owned by the board's view.
type PageState struct {
	ListHTML    string
	OptionsHTML string
	Message     model.Message
	Form        model.FormState
	Alerts      []string
	// MessagePoll is how long a visible message waits before the browser
	// asks for the message area again.
	MessagePoll time.Duration
}

// Page renders the full document.
func Page(s PageState) templ.Component {
	return component(func(m *markup) {
		m.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.raw(`<title>Extracurricular Activities</title>`)
		m.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		m.raw(`</head><body><header><h1>Extracurricular Activities</h1></header><main>`)
		m.raw(`<section id="activities-container"><h3>Available Activities</h3>`)
		m.raw(`<div id="activities-list">`)
		m.raw(s.ListHTML)
		m.raw(`</div></section>`)
		m.raw(`<section id="signup-container"><h3>Sign Up for an Activity</h3>`)
		writeForm(m, s, false)
		writeMessage(m, s.Message, s.MessagePoll, false)
		m.raw(`</section>`)
		writeAlerts(m, s.Alerts, false)
		m.raw(`</main></body></html>`)
	})
}

// Fragment renders the htmx response for a board action: the list contents
// for the request target, followed by out-of-band swaps for the form,
// message area and alerts.
func Fragment(s PageState) templ.Component {
	return component(func(m *markup) {
		m.raw(s.ListHTML)
		writeForm(m, s, true)
		writeMessage(m, s.Message, s.MessagePoll, true)
		writeAlerts(m, s.Alerts, true)
	})
}

// MessageBox renders only the message area.
func MessageBox(msg model.Message, poll time.Duration) templ.Component {
	return component(func(m *markup) { writeMessage(m, msg, poll, false) })
}

func oobAttr(m *markup, oob bool) {
	if oob {
		m.raw(` hx-swap-oob="true"`)
	}
}

func writeForm(m *markup, s PageState, oob bool) {
	m.raw(`<form id="signup-form" method="post" action="` + SignupPath + `"`)
	m.raw(` hx-post="` + SignupPath + `" hx-target="#activities-list"`)
	oobAttr(m, oob)
	m.raw(`><div class="form-group"><label for="email">Student Email:</label>`)
	m.raw(`<input type="email" id="email" name="email" required placeholder="your-email@mergington.edu" value="`)
	m.text(s.Form.Email)
	m.raw(`"></div><div class="form-group"><label for="activity">Select Activity:</label>`)
	m.raw(`<select id="activity" name="activity" required>`)
	if s.OptionsHTML == "" {
		m.raw(PlaceholderOption)
	} else {
		m.raw(markSelected(s.OptionsHTML, s.Form.Activity))
	}
	m.raw(`</select></div><button type="submit">Sign Up</button></form>`)
}

// markSelected marks the option whose value is activity as selected.
// Options are compared in their escaped form, as SelectOptions writes them.
func markSelected(options, activity string) string {
	if activity == "" {
		return options
	}
	open := `<option value="` + escape.HTML(activity) + `">`
	return strings.Replace(options, open, open[:len(open)-1]+` selected>`, 1)
}

func writeMessage(m *markup, msg model.Message, poll time.Duration, oob bool) {
	class := string(msg.Kind)
	if !msg.Visible {
		if class != "" {
			class += " "
		}
		class += "hidden"
	}
	m.raw(`<div id="message" class="`)
	m.text(class)
	m.raw(`"`)
	oobAttr(m, oob)
	if msg.Visible && msg.AutoHide && poll > 0 {
		m.raw(` hx-get="` + MessagePath + `" hx-swap="outerHTML" hx-trigger="load delay:`)
		m.raw(strconv.FormatInt(poll.Milliseconds(), 10))
		m.raw(`ms"`)
	}
	m.raw(`>`)
	m.text(msg.Text)
	m.raw(`</div>`)
}

func writeAlerts(m *markup, alerts []string, oob bool) {
	m.raw(`<div id="alerts"`)
	oobAttr(m, oob)
	m.raw(`>`)
	for _, a := range alerts {
		m.raw(`<div class="alert" role="alert">`)
		m.text(a)
		m.raw(`</div>`)
	}
	m.raw(`</div>`)
}
