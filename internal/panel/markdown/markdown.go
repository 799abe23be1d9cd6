// Package markdown renders short markdown cards (empty states, help) for the
// terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Options controls markdown rendering.
type Options struct {
	NoColor bool
	Width   int
}

type rendererKey struct {
	noColor bool
	width   int
}

var (
	renderers   = map[rendererKey]*glamour.TermRenderer{}
	renderersMu sync.Mutex
)

// Render renders md, returning the source unchanged if rendering fails.
func Render(md string, opts Options) string {
	r, err := renderer(opts)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return trimBlankEdges(out)
}

func renderer(opts Options) (*glamour.TermRenderer, error) {
	k := rendererKey{noColor: opts.NoColor, width: max(opts.Width, 0)}
	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r, ok := renderers[k]; ok {
		return r, nil
	}

	options := []glamour.TermRendererOption{}
	if opts.NoColor {
		options = append(options,
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
		)
	} else {
		options = append(options,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.TrueColor),
		)
	}
	if k.width > 0 {
		options = append(options, glamour.WithWordWrap(k.width))
	}
	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return nil, err
	}
	renderers[k] = r
	return r, nil
}

// trimBlankEdges drops glamour's leading and trailing blank lines and the
// trailing padding on each line.
func trimBlankEdges(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
