package render

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/Shivanand-hulikatti/activity-board/internal/model"
)

// ─── helpers ─────────────────────────────────────────────────────────────────

func parseFragment(t *testing.T, markup string) []*html.Node {
	t.Helper()
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	require.NoError(t, err)
	return nodes
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(nodes []*html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	s, err := String(context.Background(), c)
	require.NoError(t, err)
	return s
}

// ─── tests ───────────────────────────────────────────────────────────────────

func TestActivityList_SingleParticipant(t *testing.T) {
	catalog := model.NewCatalog(model.Activity{
		Name: "Chess Club",
		Details: model.ActivityDetails{
			Description:     "d",
			Schedule:        "s",
			MaxParticipants: 2,
			Participants:    []string{"a@x.com"},
		},
	})

	out := renderString(t, ActivityList(catalog))
	nodes := parseFragment(t, out)

	cards := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "activity-card") })
	require.Len(t, cards, 1)
	assert.Contains(t, textOf(cards[0]), "1 spots left")
	assert.Equal(t, "Chess Club", textOf(findAll(cards, func(n *html.Node) bool { return n.Data == "h4" })[0]))

	items := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "participant-item") })
	require.Len(t, items, 1)
	assert.Equal(t, "a@x.com", attr(items[0], "data-email"))
	assert.Equal(t, "Chess Club", attr(items[0], "data-activity"))
	assert.False(t, hasClass(items[0], "empty"))

	buttons := findAll(items, func(n *html.Node) bool { return hasClass(n, "delete-btn") })
	require.Len(t, buttons, 1)
	assert.Equal(t, UnregisterPath, attr(buttons[0], "hx-post"))
	assert.Equal(t, "Unregister a@x.com from Chess Club?", attr(buttons[0], "hx-confirm"))

	var vals map[string]string
	require.NoError(t, json.Unmarshal([]byte(attr(buttons[0], "hx-vals")), &vals))
	assert.Equal(t, map[string]string{"email": "a@x.com", "activity": "Chess Club"}, vals)
}

func TestActivityList_EmptyRosterShowsPlaceholder(t *testing.T) {
	catalog := model.NewCatalog(model.Activity{
		Name:    "Gym Class",
		Details: model.ActivityDetails{MaxParticipants: 0, Participants: []string{}},
	})

	out := renderString(t, ActivityList(catalog))
	nodes := parseFragment(t, out)

	cards := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "activity-card") })
	require.Len(t, cards, 1)
	assert.Contains(t, textOf(cards[0]), "Availability: 0 spots left")

	items := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "participant-item") })
	require.Len(t, items, 1)
	assert.True(t, hasClass(items[0], "empty"))
	assert.Equal(t, "No participants yet", textOf(items[0]))
	assert.Empty(t, attr(items[0], "data-email"))
	assert.Empty(t, findAll(items, func(n *html.Node) bool { return hasClass(n, "delete-btn") }))
}

func TestActivityList_NegativeSpotsNotClamped(t *testing.T) {
	catalog := model.NewCatalog(model.Activity{
		Name:    "Overbooked",
		Details: model.ActivityDetails{MaxParticipants: 1, Participants: []string{"a@x.com", "b@x.com"}},
	})

	out := renderString(t, ActivityList(catalog))
	assert.Contains(t, out, "-1 spots left")
}

func TestActivityList_EscapesUntrustedText(t *testing.T) {
	evil := `<script>alert('x')</script>`
	catalog := model.NewCatalog(model.Activity{
		Name: `Tom & Jerry "Club"`,
		Details: model.ActivityDetails{
			Description:     evil,
			Schedule:        `<b>Mon</b>`,
			MaxParticipants: 3,
			Participants:    []string{`x" onclick="steal()`},
		},
	})

	out := renderString(t, ActivityList(catalog))
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>")

	nodes := parseFragment(t, out)
	assert.Empty(t, findAll(nodes, func(n *html.Node) bool { return n.Data == "script" || n.Data == "b" }))

	items := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "participant-item") })
	require.Len(t, items, 1)
	assert.Equal(t, `x" onclick="steal()`, attr(items[0], "data-email"))
	assert.Equal(t, `Tom & Jerry "Club"`, attr(items[0], "data-activity"))
	assert.Empty(t, attr(items[0], "onclick"))

	cards := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "activity-card") })
	require.Len(t, cards, 1)
	assert.Contains(t, textOf(cards[0]), evil)
}

func TestActivityList_PreservesCatalogOrder(t *testing.T) {
	catalog := model.NewCatalog(
		model.Activity{Name: "Zeta", Details: model.ActivityDetails{MaxParticipants: 1}},
		model.Activity{Name: "Alpha", Details: model.ActivityDetails{MaxParticipants: 1}},
		model.Activity{Name: "Mu", Details: model.ActivityDetails{MaxParticipants: 1}},
	)

	out := renderString(t, ActivityList(catalog))
	headings := findAll(parseFragment(t, out), func(n *html.Node) bool { return n.Data == "h4" })
	require.Len(t, headings, 3)
	assert.Equal(t, "Zeta", textOf(headings[0]))
	assert.Equal(t, "Alpha", textOf(headings[1]))
	assert.Equal(t, "Mu", textOf(headings[2]))
}

func TestSelectOptions(t *testing.T) {
	catalog := model.NewCatalog(
		model.Activity{Name: "Chess Club"},
		model.Activity{Name: `Art & "Craft"`},
	)

	out := renderString(t, SelectOptions(catalog))
	require.True(t, strings.HasPrefix(out, PlaceholderOption))

	ctx := &html.Node{Type: html.ElementNode, Data: "select", DataAtom: atom.Select}
	nodes, err := html.ParseFragment(strings.NewReader(out), ctx)
	require.NoError(t, err)

	options := findAll(nodes, func(n *html.Node) bool { return n.Data == "option" })
	require.Len(t, options, 3)
	assert.Equal(t, "", attr(options[0], "value"))
	assert.Equal(t, "Chess Club", attr(options[1], "value"))
	assert.Equal(t, "Chess Club", textOf(options[1]))
	assert.Equal(t, `Art & "Craft"`, attr(options[2], "value"))
	assert.Equal(t, `Art & "Craft"`, textOf(options[2]))
}

func TestSelectOptions_EmptyCatalog(t *testing.T) {
	out := renderString(t, SelectOptions(model.NewCatalog()))
	assert.Equal(t, PlaceholderOption, out)
}

func TestPage_HiddenMessage(t *testing.T) {
	out := renderString(t, Page(PageState{ListHTML: LoadingHTML}))

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)
	msgs := findAll([]*html.Node{doc}, func(n *html.Node) bool { return attr(n, "id") == "message" })
	require.Len(t, msgs, 1)
	assert.True(t, hasClass(msgs[0], "hidden"))
	assert.Empty(t, attr(msgs[0], "hx-get"))

	selects := findAll([]*html.Node{doc}, func(n *html.Node) bool { return n.Data == "select" })
	require.Len(t, selects, 1)
	assert.Len(t, findAll(selects, func(n *html.Node) bool { return n.Data == "option" }), 1)
	assert.Contains(t, out, "Loading activities...")
}

func TestFragment_OutOfBandSwaps(t *testing.T) {
	state := PageState{
		ListHTML:    "<p>list</p>",
		OptionsHTML: PlaceholderOption + `<option value="Chess Club">Chess Club</option>`,
		Message:     model.Message{Text: "Signed up <you>", Kind: model.MessageSuccess, Visible: true, AutoHide: true},
		Form:        model.FormState{Email: "a@x.com"},
		Alerts:      []string{"Failed to unregister participant"},
		MessagePoll: 5 * time.Second,
	}

	out := renderString(t, Fragment(state))
	assert.True(t, strings.HasPrefix(out, "<p>list</p>"))

	nodes := parseFragment(t, out)
	for _, id := range []string{"signup-form", "message", "alerts"} {
		found := findAll(nodes, func(n *html.Node) bool { return attr(n, "id") == id })
		require.Lenf(t, found, 1, "element %s", id)
		assert.Equal(t, "true", attr(found[0], "hx-swap-oob"))
	}

	msg := findAll(nodes, func(n *html.Node) bool { return attr(n, "id") == "message" })[0]
	assert.True(t, hasClass(msg, "success"))
	assert.False(t, hasClass(msg, "hidden"))
	assert.Equal(t, "Signed up <you>", textOf(msg))
	assert.Equal(t, MessagePath, attr(msg, "hx-get"))
	assert.Equal(t, "load delay:5000ms", attr(msg, "hx-trigger"))

	email := findAll(nodes, func(n *html.Node) bool { return attr(n, "id") == "email" })
	require.Len(t, email, 1)
	assert.Equal(t, "a@x.com", attr(email[0], "value"))

	alerts := findAll(nodes, func(n *html.Node) bool { return hasClass(n, "alert") })
	require.Len(t, alerts, 1)
	assert.Equal(t, "Failed to unregister participant", textOf(alerts[0]))
}

func TestMessageBox_ErrorState(t *testing.T) {
	out := renderString(t, MessageBox(model.Message{Text: "Already signed up", Kind: model.MessageError}, time.Second))
	assert.Equal(t, `<div id="message" class="error hidden">Already signed up</div>`, out)
}

func TestPage_KeepsSelectedActivity(t *testing.T) {
	catalog := model.NewCatalog(
		model.Activity{Name: "Chess Club", Details: model.ActivityDetails{Participants: []string{}}},
		model.Activity{Name: `R&D "Lab"`, Details: model.ActivityDetails{Participants: []string{}}},
	)
	options := renderString(t, SelectOptions(catalog))

	tests := []struct {
		activity string
		want     string
	}{
		{activity: "Chess Club", want: "Chess Club"},
		{activity: `R&D "Lab"`, want: `R&D "Lab"`},
		{activity: "", want: ""},
		{activity: "Gone", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.activity, func(t *testing.T) {
			state := PageState{OptionsHTML: options, Form: model.FormState{Email: "a@x.com", Activity: tt.activity}}
			out := renderString(t, Page(state))

			doc, err := html.Parse(strings.NewReader(out))
			require.NoError(t, err)
			opts := findAll([]*html.Node{doc}, func(n *html.Node) bool { return n.Data == "option" })
			require.Len(t, opts, 3)

			var selected []string
			for _, o := range opts {
				for _, a := range o.Attr {
					if a.Key == "selected" {
						selected = append(selected, attr(o, "value"))
					}
				}
			}
			if tt.want == "" {
				assert.Empty(t, selected)
				return
			}
			assert.Equal(t, []string{tt.want}, selected)
		})
	}
}

func TestMessageBox_PollsOnlyWhenHiding(t *testing.T) {
	hiding := renderString(t, MessageBox(model.Message{Text: "x", Kind: model.MessageError, Visible: true, AutoHide: true}, time.Second))
	assert.Contains(t, hiding, `hx-get="`+MessagePath+`"`)
	assert.Contains(t, hiding, `hx-trigger="load delay:1000ms"`)

	sticky := renderString(t, MessageBox(model.Message{Text: "x", Kind: model.MessageError, Visible: true}, time.Second))
	assert.Equal(t, `<div id="message" class="error">x</div>`, sticky)
}
