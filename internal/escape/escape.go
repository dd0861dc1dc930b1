// Package escape encodes untrusted values for interpolation into HTML text
// nodes and double-quoted attribute values.
//
// It is not a general sanitizer: script, style and URL contexts need their
// own encoding.
package escape

import (
	"fmt"
	"strings"
)

// The replacer makes one left-to-right pass, so an entity produced for one
// character is never re-encoded by a later rule.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// HTML converts v to its string form and replaces & < > " ' with named
// entities.
func HTML(v any) string {
	return htmlReplacer.Replace(stringify(v))
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
