package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// NewFriendlyErrorHandler returns a handler that prints error records as a
// short "Error: ..." block instead of key=value noise.
func NewFriendlyErrorHandler(w io.Writer) slog.Handler {
	return &friendlyHandler{w: w}
}

type friendlyHandler struct {
	w      io.Writer
	attrs  []slog.Attr
	groups []string
}

type attrEntry struct {
	key   string
	value string
}

func (h *friendlyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *friendlyHandler) Handle(_ context.Context, record slog.Record) error {
	entries := h.entries(record)

	summary := strings.TrimSpace(record.Message)
	if summary == "" {
		summary = lookup(entries, "error")
	}
	if summary == "" {
		summary = "an unknown error occurred"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", summary)
	if suggestion := lookup(entries, "suggestion"); suggestion != "" {
		fmt.Fprintf(&sb, "  suggestion: %s\n", suggestion)
	}

	rest := make([]attrEntry, 0, len(entries))
	for _, e := range entries {
		if e.key == "error" || e.key == "suggestion" || e.value == "" {
			continue
		}
		rest = append(rest, e)
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].key < rest[j].key })
	for _, e := range rest {
		writeEntry(&sb, e)
	}

	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *friendlyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *friendlyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

func (h *friendlyHandler) entries(record slog.Record) []attrEntry {
	out := make([]attrEntry, 0, len(h.attrs)+record.NumAttrs())
	add := func(a slog.Attr) bool {
		out = append(out, attrEntry{key: h.qualify(a.Key), value: valueString(a.Value.Resolve())})
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	record.Attrs(add)
	return out
}

func (h *friendlyHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(append(append([]string{}, h.groups...), key), ".")
}

func lookup(entries []attrEntry, key string) string {
	for _, e := range entries {
		if e.key == key && e.value != "" {
			return e.value
		}
	}
	return ""
}

func valueString(val slog.Value) string {
	switch val.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(val.Group()))
		for _, a := range val.Group() {
			parts = append(parts, a.Key+"="+valueString(a.Value.Resolve()))
		}
		return strings.Join(parts, ", ")
	case slog.KindLogValuer:
		return valueString(val.Resolve())
	case slog.KindAny:
		if err, ok := val.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(val.Any())
	default:
		return val.String()
	}
}

func writeEntry(sb *strings.Builder, e attrEntry) {
	lines := strings.Split(strings.TrimSpace(e.value), "\n")
	fmt.Fprintf(sb, "  %s: %s\n", e.key, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			fmt.Fprintf(sb, "    %s\n", trimmed)
		}
	}
}
