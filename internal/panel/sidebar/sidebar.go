// Package sidebar lists the tables of a deployment with search, a recently
// viewed section and a create-table flow.
package sidebar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/recent"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

// Width is the sidebar's fixed width in cells.
const Width = 28

// Component is one selectable component of the deployment.
type Component struct {
	ID   string
	Name string
}

// Options configure a sidebar.
type Options struct {
	Context    context.Context
	Client     admin.Client
	Fallback   admin.MutationFunc
	Palette    theme.Palette
	Components []Component
}

// TableSelectedMsg reports the table the user picked.
type TableSelectedMsg struct {
	Name        string
	ComponentID string
}

// ComponentSelectedMsg reports a component switch.
type ComponentSelectedMsg struct {
	ID string
}

type mode int

const (
	modeList mode = iota
	modeSearch
	modeCreate
)

type tablesMsg struct {
	seq         int
	componentID string
	tables      schema.Tables
	err         error
	selectAfter string
}

type createdMsg struct {
	seq  int
	name string
	err  error
}

type keyMap struct {
	Up, Down, Select, Search, Create, Refresh, Component, Cancel key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	Select:    key.NewBinding(key.WithKeys("enter")),
	Search:    key.NewBinding(key.WithKeys("/")),
	Create:    key.NewBinding(key.WithKeys("+", "c")),
	Refresh:   key.NewBinding(key.WithKeys("r")),
	Component: key.NewBinding(key.WithKeys("C")),
	Cancel:    key.NewBinding(key.WithKeys("esc")),
}

type Model struct {
	opts Options

	componentID string
	tables      schema.Tables
	recent      []string
	loading     bool
	loadErr     string
	loadSeq     int

	selected string
	cursor   int
	offset   int
	focused  bool
	height   int

	mode       mode
	search     textinput.Model
	create     textinput.Model
	createErr  string
	submitting bool
	createSeq  int

	spinner spinner.Model
}

func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search tables"
	search.CharLimit = 64
	search.Width = Width - 5

	create := textinput.New()
	create.Prompt = "+ "
	create.Placeholder = "new_table"
	create.CharLimit = schema.MaxTableNameLength
	create.Width = Width - 5

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	// The first load is issued by Init, which cannot record a new seq.
	m := Model{opts: opts, tables: schema.Tables{}, search: search, create: create, spinner: s, height: 20, loadSeq: 1, loading: true}
	if len(opts.Components) > 0 {
		m.componentID = opts.Components[0].ID
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.fetch("")
}

// Refresh reloads the table list. Only the latest refresh is applied.
func (m *Model) Refresh() tea.Cmd {
	return m.refresh("")
}

func (m *Model) refresh(selectAfter string) tea.Cmd {
	m.loadSeq++
	m.loading = true
	return m.fetch(selectAfter)
}

// fetch loads the table list tagged with the current load seq.
func (m Model) fetch(selectAfter string) tea.Cmd {
	seq, componentID := m.loadSeq, m.componentID
	client, ctx := m.opts.Client, m.opts.Context
	load := func() tea.Msg {
		if client == nil {
			return tablesMsg{seq: seq, componentID: componentID, err: errors.New("no admin client configured")}
		}
		tables, err := admin.ListTables(ctx, client, componentID)
		return tablesMsg{seq: seq, componentID: componentID, tables: tables, err: err, selectAfter: selectAfter}
	}
	return tea.Batch(m.spinner.Tick, load)
}

// SetRecent supplies the recently viewed names, newest first.
func (m *Model) SetRecent(names []string) { m.recent = names }

// SetSelected marks name as the open table.
func (m *Model) SetSelected(name string) { m.selected = name }

func (m *Model) SetFocused(focused bool) {
	m.focused = focused
	if !focused {
		m.search.Blur()
		m.create.Blur()
		if m.mode != modeCreate {
			m.mode = modeList
		}
	}
}

func (m *Model) SetHeight(h int) { m.height = max(6, h) }

func (m *Model) SetPalette(p theme.Palette) { m.opts.Palette = p }

func (m Model) Tables() schema.Tables { return m.tables }
func (m Model) Selected() string { return m.selected }
func (m Model) ComponentID() string { return m.componentID }
func (m Model) Focused() bool { return m.focused }
func (m Model) Creating() bool { return m.mode == modeCreate }
func (m Model) CreateError() string { return m.createErr }
func (m Model) CreateInput() string { return m.create.Value() }

// Capturing reports whether keystrokes are going to a text input.
func (m Model) Capturing() bool { return m.mode != modeList }

// Recent returns the recently viewed section: at most recent.MaxShown
// names that still exist.
func (m Model) Recent() []string {
	return recent.Filter(m.recent, func(n string) bool {
		_, ok := m.tables[n]
		return ok
	}, recent.MaxShown)
}

// Matches returns the full list filtered by the search query.
func (m Model) Matches() []string {
	return Search(m.tables.Names(), m.search.Value())
}

// items is the navigable list: recent first when not searching.
func (m Model) items() []string {
	matches := m.Matches()
	if strings.TrimSpace(m.search.Value()) != "" {
		return matches
	}
	return append(m.Recent(), matches...)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tablesMsg:
		if msg.seq != m.loadSeq || msg.componentID != m.componentID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = panelerr.Message(msg.err)
			return m, nil
		}
		m.loadErr = ""
		m.tables = msg.tables
		m.clampCursor()
		if msg.selectAfter != "" {
			if _, ok := m.tables[msg.selectAfter]; ok {
				return m, m.choose(msg.selectAfter)
			}
		}
		return m, nil
	case createdMsg:
		if msg.seq != m.createSeq || m.mode != modeCreate {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.createErr = panelerr.Message(msg.err)
			return m, nil
		}
		m.mode = modeList
		m.createErr = ""
		m.create.Reset()
		m.create.Blur()
		cmd := m.refresh(msg.name)
		return m, cmd
	case spinner.TickMsg:
		if !m.loading && !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeCreate:
			return m.updateCreate(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, keys.Select):
		if items := m.items(); m.cursor < len(items) {
			cmd = m.choose(items[m.cursor])
		}
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		cmd = m.search.Focus()
	case key.Matches(msg, keys.Create):
		m.mode = modeCreate
		m.createErr = ""
		cmd = m.create.Focus()
	case key.Matches(msg, keys.Refresh):
		cmd = m.Refresh()
	case key.Matches(msg, keys.Component):
		cmd = m.nextComponent()
	case key.Matches(msg, keys.Cancel):
		m.search.Reset()
		m.clampCursor()
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Reset()
		m.search.Blur()
		m.mode = modeList
		m.clampCursor()
		return m, nil
	case tea.KeyEnter, tea.KeyDown, tea.KeyTab:
		m.search.Blur()
		m.mode = modeList
		m.cursor = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.cursor = 0
	m.offset = 0
	return m, cmd
}

func (m Model) updateCreate(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.createErr = ""
		m.submitting = false
		m.createSeq++
		m.create.Reset()
		m.create.Blur()
		return m, nil
	case tea.KeyEnter:
		if m.submitting {
			return m, nil
		}
		cmd := m.submit()
		return m, cmd
	}
	var cmd tea.Cmd
	m.create, cmd = m.create.Update(msg)
	return m, cmd
}

// submit validates the proposed name and sends the create mutation. The
// input is kept on every failure path.
func (m *Model) submit() tea.Cmd {
	name := strings.TrimSpace(m.create.Value())
	if err := schema.ValidateTableName(name); err != nil {
		m.createErr = panelerr.Message(err)
		return nil
	}
	if err := schema.CheckCollision(name, m.tables); err != nil {
		m.createErr = panelerr.Message(err)
		return nil
	}
	m.createErr = ""
	m.submitting = true
	m.createSeq++
	seq, componentID := m.createSeq, m.componentID
	client, fallback, ctx := m.opts.Client, m.opts.Fallback, m.opts.Context
	create := func() tea.Msg {
		if client == nil {
			return createdMsg{seq: seq, name: name, err: errors.New("no admin client configured")}
		}
		err := admin.CreateTable(ctx, client, fallback, name, componentID)
		return createdMsg{seq: seq, name: name, err: err}
	}
	return tea.Batch(m.spinner.Tick, create)
}

func (m *Model) choose(name string) tea.Cmd {
	m.selected = name
	componentID := m.componentID
	return func() tea.Msg { return TableSelectedMsg{Name: name, ComponentID: componentID} }
}

func (m *Model) nextComponent() tea.Cmd {
	if len(m.opts.Components) < 2 {
		return nil
	}
	idx := 0
	for i, c := range m.opts.Components {
		if c.ID == m.componentID {
			idx = (i + 1) % len(m.opts.Components)
		}
	}
	m.componentID = m.opts.Components[idx].ID
	m.selected = ""
	m.tables = schema.Tables{}
	m.cursor, m.offset = 0, 0
	id := m.componentID
	return tea.Batch(m.Refresh(), func() tea.Msg { return ComponentSelectedMsg{ID: id} })
}

func (m *Model) clampCursor() {
	n := len(m.items())
	m.cursor = max(0, min(m.cursor, n-1))
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if rows > 0 && m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// listRows is how many table rows fit below the header and input lines.
func (m Model) listRows() int {
	return max(1, m.height-6)
}

func (m Model) componentName() string {
	for _, c := range m.opts.Components {
		if c.ID == m.componentID {
			if c.Name != "" {
				return c.Name
			}
			return c.ID
		}
	}
	return ""
}

func (m Model) View() string {
	p := m.opts.Palette
	muted := p.ForegroundStyle(theme.ColorTextMuted)
	heading := p.ForegroundStyle(theme.ColorTextSecondary).Bold(true)
	inner := Width - 2

	var lines []string
	title := "Tables"
	if name := m.componentName(); name != "" {
		title += muted.Render(" · " + name)
	}
	if m.loading || m.submitting {
		title += " " + m.spinner.View()
	}
	lines = append(lines, heading.Render(title))

	switch m.mode {
	case modeCreate:
		lines = append(lines, m.create.View())
		if m.createErr != "" {
			for _, l := range strings.Split(wordwrap.String(m.createErr, inner), "\n") {
				lines = append(lines, p.ForegroundStyle(theme.ColorDanger).Render(l))
			}
		}
	default:
		lines = append(lines, m.search.View())
	}

	if m.loadErr != "" {
		for _, l := range strings.Split(wordwrap.String(m.loadErr, inner), "\n") {
			lines = append(lines, p.ForegroundStyle(theme.ColorDanger).Render(l))
		}
	}

	items := m.items()
	recentCount := 0
	if strings.TrimSpace(m.search.Value()) == "" {
		recentCount = len(m.Recent())
	}
	if len(items) == 0 && !m.loading && m.loadErr == "" {
		if m.search.Value() != "" {
			lines = append(lines, muted.Render("No tables match"))
		} else {
			for _, l := range strings.Split(wordwrap.String("No tables yet. Press + to create one.", inner), "\n") {
				lines = append(lines, muted.Render(l))
			}
		}
	}
	rows := m.listRows()
	for i := m.offset; i < len(items) && i < m.offset+rows; i++ {
		switch {
		case recentCount > 0 && i == 0:
			lines = append(lines, muted.Render("Recently viewed"))
		case recentCount > 0 && i == recentCount:
			lines = append(lines, muted.Render("All tables"))
		}
		lines = append(lines, m.itemLine(items[i], i))
	}

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, inner, "…")
	}
	border := p.Adaptive(theme.ColorBorder)
	if m.focused {
		border = p.Adaptive(theme.ColorAccent)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(border).
		Width(Width - 1).
		Height(m.height).
		MaxHeight(m.height).
		Render(strings.Join(lines, "\n"))
}

func (m Model) itemLine(name string, i int) string {
	p := m.opts.Palette
	marker := "  "
	style := p.ForegroundStyle(theme.ColorTextPrimary)
	if name == m.selected {
		marker = "▸ "
		style = p.ForegroundStyle(theme.ColorAccent).Bold(true)
	}
	if m.focused && i == m.cursor {
		style = style.Reverse(true)
	}
	return style.Render(fmt.Sprintf("%s%s", marker, name))
}
