// Package jsonview renders documents as indented, optionally highlighted JSON.
package jsonview

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/convex-panel/panelctl/internal/panel/format"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "friendly"

// Indent returns v as two-space indented JSON. Values that cannot be encoded
// fall back to the cell formatter.
func Indent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return format.Value(v)
	}
	return string(b)
}

// Colorize highlights indented JSON text. Anything that is not an object or
// array, or that chroma cannot tokenise, is returned unchanged.
func Colorize(formatted, style string) string {
	trimmed := strings.TrimSpace(formatted)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return formatted
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		return formatted
	}
	iterator, err := lexer.Tokenise(nil, formatted)
	if err != nil {
		return formatted
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return formatted
	}
	s := styles.Get(style)
	if s == nil {
		s = styles.Get(DefaultStyle)
	}
	if s == nil {
		s = styles.Fallback
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return formatted
	}
	return buf.String()
}

// Render indents v and highlights it unless noColor is set.
func Render(v any, noColor bool, style string) string {
	out := Indent(v)
	if noColor {
		return out
	}
	return Colorize(out, style)
}
