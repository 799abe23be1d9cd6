// Package preview shows a single document fetched by id.
package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/format"
	"github.com/convex-panel/panelctl/internal/panel/jsonview"
	"github.com/convex-panel/panelctl/internal/panel/links"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

// Mode selects how much chrome surrounds the JSON body.
type Mode int

const (
	// Compact shows only the read-only JSON body.
	Compact Mode = iota
	// Editing adds a header and the copy/navigate actions.
	Editing
)

// Options configure a preview.
type Options struct {
	Context       context.Context
	Client        admin.Client
	DeploymentURL string
	Palette       theme.Palette
	NoColor       bool
	Style         string
	// Navigate, when set, handles "open in table" instead of the dashboard link.
	Navigate func(table, documentID string) tea.Cmd
}

// ClosedMsg is emitted once when the preview is dismissed.
type ClosedMsg struct{}

// CopyRequestedMsg asks the owner to copy the document JSON.
type CopyRequestedMsg struct {
	Text string
}

// OpenedMsg reports the result of opening the dashboard link.
type OpenedMsg struct {
	URL string
	Err error
}

// request identifies one fetch. A result is committed only while it still
// equals the model's current request.
type request struct {
	seq         int
	table       string
	documentID  string
	componentID string
}

type fetchedMsg struct {
	req request
	doc schema.Document
	err error
}

type Model struct {
	opts Options
	mode Mode
	open bool
	req  request

	loading  bool
	doc      schema.Document
	notFound bool
	errText  string
	notice   string

	width, height int
	spinner       spinner.Model
	viewport      viewport.Model
}

func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Style == "" {
		opts.Style = jsonview.DefaultStyle
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		opts:     opts,
		mode:     Editing,
		width:    60,
		height:   16,
		spinner:  s,
		viewport: viewport.New(56, 10),
	}
}

// Show opens the preview for one document and starts fetching it. Any fetch
// still in flight for a previous document is superseded.
func (m *Model) Show(table, documentID, componentID string) tea.Cmd {
	m.req = request{seq: m.req.seq + 1, table: table, documentID: documentID, componentID: componentID}
	m.open = true
	m.loading = true
	m.doc = nil
	m.notFound = false
	m.errText = ""
	m.notice = ""
	m.viewport.SetContent("")
	m.viewport.GotoTop()
	return tea.Batch(m.spinner.Tick, m.fetch(m.req))
}

// Close hides the preview. Pending fetches are dropped when they arrive.
func (m *Model) Close() tea.Cmd {
	if !m.open {
		return nil
	}
	m.open = false
	m.loading = false
	m.req = request{seq: m.req.seq + 1}
	return func() tea.Msg { return ClosedMsg{} }
}

func (m *Model) SetMode(mode Mode) { m.mode = mode }

func (m *Model) SetPalette(p theme.Palette) { m.opts.Palette = p }

// SetSize sets the outer size in cells.
func (m *Model) SetSize(width, height int) {
	m.width = max(24, width)
	m.height = max(8, height)
	m.viewport.Width = m.width - 4
	m.viewport.Height = max(1, m.height-m.chromeHeight())
	m.refreshBody()
}

func (m Model) IsOpen() bool { return m.open }
func (m Model) Loading() bool { return m.loading }
func (m Model) Document() schema.Document { return m.doc }
func (m Model) Table() string { return m.req.table }
func (m Model) DocumentID() string { return m.req.documentID }
func (m Model) Mode() Mode { return m.mode }
func (m Model) Size() (width, height int) { return m.width, m.height }

func (m Model) fetch(req request) tea.Cmd {
	client, ctx := m.opts.Client, m.opts.Context
	return func() tea.Msg {
		if client == nil {
			return fetchedMsg{req: req, err: errors.New("no admin client configured")}
		}
		doc, err := admin.DocumentByID(ctx, client, req.table, req.componentID, req.documentID)
		return fetchedMsg{req: req, doc: doc, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchedMsg:
		if !m.open || msg.req != m.req {
			return m, nil
		}
		m.loading = false
		switch {
		case errors.Is(msg.err, admin.ErrNotFound):
			m.notFound = true
		case msg.err != nil:
			m.errText = panelerr.Message(msg.err)
		default:
			m.doc = msg.doc
		}
		m.refreshBody()
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case OpenedMsg:
		if msg.Err != nil {
			m.notice = panelerr.Message(msg.Err)
		} else {
			m.notice = "Opened " + msg.URL
		}
		return m, nil
	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc", "q":
		cmd = m.Close()
	case "tab":
		if m.mode == Compact {
			m.mode = Editing
		} else {
			m.mode = Compact
		}
		m.SetSize(m.width, m.height)
	case "c":
		if m.doc != nil && m.mode == Editing {
			text := jsonview.Indent(map[string]any(m.doc))
			cmd = func() tea.Msg { return CopyRequestedMsg{Text: text} }
		}
	case "o":
		if m.mode == Editing {
			cmd = m.navigate()
		}
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// navigate prefers the owner's handler and falls back to the dashboard link.
func (m *Model) navigate() tea.Cmd {
	if m.doc == nil {
		return nil
	}
	table, id := m.req.table, m.req.documentID
	if m.opts.Navigate != nil {
		return m.opts.Navigate(table, id)
	}
	url, ok := links.DocumentURL(m.opts.DeploymentURL, table, id, m.req.componentID)
	if !ok {
		m.notice = "No dashboard link for this deployment"
		return nil
	}
	return func() tea.Msg {
		return OpenedMsg{URL: url, Err: links.Open(url)}
	}
}

func (m *Model) refreshBody() {
	if m.doc == nil {
		return
	}
	m.viewport.SetContent(jsonview.Render(map[string]any(m.doc), m.opts.NoColor, m.opts.Style))
}

func (m Model) chromeHeight() int {
	if m.mode == Editing {
		return 6
	}
	return 2
}

func (m Model) View() string {
	if !m.open {
		return ""
	}
	p := m.opts.Palette
	muted := p.ForegroundStyle(theme.ColorTextMuted)
	var body string
	switch {
	case m.loading:
		body = m.spinner.View() + muted.Render(" Loading document…")
	case m.notFound:
		body = muted.Render(fmt.Sprintf("Document %s not found in %s", m.req.documentID, m.req.table))
	case m.errText != "":
		body = p.ForegroundStyle(theme.ColorDanger).Render(m.errText)
	default:
		body = m.viewport.View()
	}

	var sections []string
	if m.mode == Editing {
		title := p.ForegroundStyle(theme.ColorTextPrimary).Bold(true).Render(m.req.table)
		if created, ok := creationTime(m.doc); ok {
			title += muted.Render(" · created " + created)
		}
		sections = append(sections, title, m.actions(), "")
	}
	sections = append(sections, body)
	if m.notice != "" {
		sections = append(sections, muted.Render(m.notice))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(strings.Join(sections, "\n"))
}

func (m Model) actions() string {
	p := m.opts.Palette
	key := p.ForegroundStyle(theme.ColorAccent)
	label := p.ForegroundStyle(theme.ColorTextSecondary)
	parts := []string{
		key.Render("c") + " " + label.Render("Copy"),
		key.Render("o") + " " + label.Render("Open in "+m.req.table),
		key.Render("tab") + " " + label.Render("Compact"),
		key.Render("esc") + " " + label.Render("Close"),
	}
	return strings.Join(parts, "   ")
}

func creationTime(doc schema.Document) (string, bool) {
	switch v := doc[schema.CreationTimeField].(type) {
	case float64:
		return time.UnixMilli(int64(v)).Format(format.TimestampLayout), true
	case int64:
		return time.UnixMilli(v).Format(format.TimestampLayout), true
	}
	return "", false
}
