// Package model defines the core domain types for the activity board.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ActivityDetails is the server-side description of a single activity.
type ActivityDetails struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// UnmarshalJSON accepts max_participants written as any integral JSON
// number, including forms such as 2.0 or 1e1.
func (d *ActivityDetails) UnmarshalJSON(data []byte) error {
	type plain ActivityDetails
	var raw struct {
		plain
		MaxParticipants json.Number `json:"max_participants"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ActivityDetails(raw.plain)
	if raw.MaxParticipants == "" {
		return nil
	}
	if n, err := raw.MaxParticipants.Int64(); err == nil {
		d.MaxParticipants = int(n)
		return nil
	}
	f, err := raw.MaxParticipants.Float64()
	if err != nil || f != math.Trunc(f) {
		return fmt.Errorf("max_participants %s is not an integer", raw.MaxParticipants)
	}
	d.MaxParticipants = int(f)
	return nil
}

// SpotsLeft returns the number of open places. It is not clamped: a roster
// larger than the limit yields a negative number.
func (d ActivityDetails) SpotsLeft() int {
	return d.MaxParticipants - len(d.Participants)
}

// Activity pairs an activity name with its details.
type Activity struct {
	Name    string
	Details ActivityDetails
}

// Catalog is the full name → details mapping returned by the listing
// endpoint. Unlike a Go map it remembers the order in which the server
// listed the activities.
type Catalog struct {
	activities []Activity
	index      map[string]int
}

// NewCatalog builds a catalog from activities in the given order. A repeated
// name replaces the earlier details but keeps the earlier position.
func NewCatalog(activities ...Activity) *Catalog {
	c := &Catalog{}
	for _, a := range activities {
		c.put(a.Name, a.Details)
	}
	return c
}

func (c *Catalog) put(name string, d ActivityDetails) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.activities[i].Details = d
		return
	}
	c.index[name] = len(c.activities)
	c.activities = append(c.activities, Activity{Name: name, Details: d})
}

// Activities returns the activities in catalog order.
func (c *Catalog) Activities() []Activity {
	if c == nil {
		return nil
	}
	return c.activities
}

// Len returns the number of activities.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.activities)
}

// Get looks up an activity by name.
func (c *Catalog) Get(name string) (ActivityDetails, bool) {
	if c == nil {
		return ActivityDetails{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return ActivityDetails{}, false
	}
	return c.activities[i].Details, true
}

// UnmarshalJSON decodes a JSON object while preserving its key order.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog must be a JSON object, got %v", tok)
	}

	*c = Catalog{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read activity name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected catalog key %v", tok)
		}
		var d ActivityDetails
		if err := dec.Decode(&d); err != nil {
			return fmt.Errorf("decode activity %q: %w", name, err)
		}
		c.put(name, d)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return nil
}

// MarshalJSON encodes the catalog as a JSON object in catalog order.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c.activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.Details)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParticipantEntry identifies one rendered participant row.
type ParticipantEntry struct {
	Email    string
	Activity string
}

// ConfirmPrompt is the question asked before a participant is removed.
func (p ParticipantEntry) ConfirmPrompt() string {
	return fmt.Sprintf("Unregister %s from %s?", p.Email, p.Activity)
}

// SignupResponse is the success payload of the signup endpoint.
type SignupResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope used by the upstream API. Signup
// failures carry Detail; unregister failures carry Detail or Error.
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"` // unregister success text
}

// MessageKind is the visual state of the board's message area.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the content of the dismissible message area.
type Message struct {
	Text    string
	Kind    MessageKind
	Visible bool
	// AutoHide is set when the message will be hidden after the message
	// timeout. Messages without it stay until replaced.
	AutoHide bool
}

// FormState holds the values shown in the signup form.
type FormState struct {
	Email    string
	Activity string
}
