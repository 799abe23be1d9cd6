// Package app is the browse screen: the table sidebar, the data grid and the
// document preview, with the owner state the grid reports changes to.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/panel/grid"
	"github.com/convex-panel/panelctl/internal/panel/menu"
	"github.com/convex-panel/panelctl/internal/panel/preview"
	"github.com/convex-panel/panelctl/internal/panel/recent"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/panel/sidebar"
	"github.com/convex-panel/panelctl/internal/theme"
)

// Options configure the browse screen.
type Options struct {
	Context       context.Context
	Client        admin.Client
	Fallback      admin.MutationFunc
	DeploymentURL string
	Components    []sidebar.Component
	Recent        *recent.Store
	Palette       theme.Palette
	Platform      menu.Platform
	Dwell         time.Duration
	PageSize      int
	NoColor       bool
	Style         string
	InitialTable  string
	// Clipboard defaults to the system clipboard.
	Clipboard func(text string) error
}

type focus int

const (
	focusSidebar focus = iota
	focusGrid
)

type Model struct {
	opts   Options
	ctx    context.Context
	logger *slog.Logger

	palette theme.Palette
	sidebar sidebar.Model
	grid    grid.Model
	preview preview.Model
	focus   focus

	componentID string
	table       string
	schemas     map[string]*schema.TableSchema
	schemaSeq   int
	selection   []string

	pageSeq    int
	cursor     string
	isDone     bool
	loadingDoc bool

	prompt      prompt
	promptInput textinput.Model

	status      string
	statusError bool

	width, height int
}

func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Palette.Name == "" {
		opts.Palette = theme.Current()
	}

	sb := sidebar.New(sidebar.Options{
		Context:    opts.Context,
		Client:     opts.Client,
		Fallback:   opts.Fallback,
		Palette:    opts.Palette,
		Components: opts.Components,
	})
	g := grid.New(grid.Options{
		Dwell:    opts.Dwell,
		Platform: opts.Platform,
		Editable: true,
		NoColor:  opts.NoColor,
		Palette:  opts.Palette,
	})
	pv := preview.New(preview.Options{
		Context:       opts.Context,
		Client:        opts.Client,
		DeploymentURL: opts.DeploymentURL,
		Palette:       opts.Palette,
		NoColor:       opts.NoColor,
		Style:         opts.Style,
	})

	in := textinput.New()
	in.CharLimit = 0

	m := Model{
		opts:        opts,
		ctx:         opts.Context,
		logger:      log.FromContext(opts.Context),
		palette:     opts.Palette,
		sidebar:     sb,
		grid:        g,
		preview:     pv,
		schemas:     map[string]*schema.TableSchema{},
		promptInput: in,
		width:       120,
		height:      32,
		schemaSeq:   1,
	}
	m.sidebar.SetFocused(true)
	if len(opts.Components) > 0 {
		m.componentID = opts.Components[0].ID
	}
	if opts.Recent != nil {
		m.sidebar.SetRecent(opts.Recent.Names(m.componentID))
	}
	m.layout()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sidebar.Init(), m.fetchSchemas()}
	if m.opts.InitialTable != "" {
		name, componentID := m.opts.InitialTable, m.componentID
		cmds = append(cmds, func() tea.Msg {
			return sidebar.TableSelectedMsg{Name: name, ComponentID: componentID}
		})
	}
	return tea.Batch(cmds...)
}

// Table is the open table, if any.
func (m Model) Table() string { return m.table }

// Selection is the owner-held set of selected document ids.
func (m Model) Selection() []string { return m.selection }

// Status is the last status line message.
func (m Model) Status() (string, bool) { return m.status, m.statusError }

func (m Model) Grid() grid.Model { return m.grid }

func (m Model) Preview() preview.Model { return m.preview }

func (m Model) Sidebar() sidebar.Model { return m.sidebar }

func (m Model) Palette() theme.Palette { return m.palette }

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusError = isErr
	if isErr {
		m.logger.Debug("browse status", "message", text)
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.sidebar.SetFocused(f == focusSidebar)
	m.grid.SetFocused(f == focusGrid)
}

func (m *Model) setPalette(p theme.Palette) {
	m.palette = p
	m.sidebar.SetPalette(p)
	m.grid.SetPalette(p)
	m.preview.SetPalette(p)
}

func (m *Model) layout() {
	bodyHeight := max(4, m.height-1)
	m.sidebar.SetHeight(bodyHeight)
	m.grid.SetLayout(grid.Layout{
		X:            sidebar.Width,
		Y:            0,
		Width:        max(20, m.width-sidebar.Width),
		Height:       bodyHeight,
		ScreenWidth:  m.width,
		ScreenHeight: m.height,
	})
	m.preview.SetSize(min(96, m.width-8), max(8, m.height*3/4))
	m.promptInput.Width = min(80, m.width-12)
}
