package app

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/grid"
	"github.com/convex-panel/panelctl/internal/panel/preview"
	"github.com/convex-panel/panelctl/internal/panel/sidebar"
	"github.com/convex-panel/panelctl/internal/theme"
)

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case schemasMsg:
		if msg.seq != m.schemaSeq {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("loading schemas failed", "error", msg.err)
			return m, nil
		}
		m.schemas = msg.schemas
		if s, ok := m.schemas[m.table]; ok {
			m.grid.SetSchema(s)
		}
		return m, nil

	case pageMsg:
		m.applyPage(msg)
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.setStatus(panelerr.Message(msg.err), true)
			return m, nil
		}
		m.setStatus(msg.done, false)
		if len(msg.deleted) > 0 {
			m.selection = slices.DeleteFunc(slices.Clone(m.selection), func(id string) bool {
				return slices.Contains(msg.deleted, id)
			})
			m.grid.SetSelection(m.selection)
		}
		if msg.table != m.table {
			return m, nil
		}
		cmd := m.reload()
		return m, cmd

	case sidebar.TableSelectedMsg:
		cmd := m.openTable(msg.Name, msg.ComponentID)
		return m, cmd

	case sidebar.ComponentSelectedMsg:
		m.componentID = msg.ID
		m.openTable("", msg.ID)
		if m.opts.Recent != nil {
			m.sidebar.SetRecent(m.opts.Recent.Names(msg.ID))
		}
		cmd := m.loadSchemas()
		return m, cmd

	case grid.SelectionChangedMsg:
		m.selection = msg.IDs
		m.grid.SetSelection(msg.IDs)
		return m, nil

	case grid.LoadMoreMsg:
		if msg.Table != m.table || m.isDone {
			return m, nil
		}
		cmd := m.loadPage(true, m.opts.PageSize)
		return m, cmd

	case grid.PreviewRequestedMsg:
		cmd := m.preview.Show(msg.Table, msg.DocumentID, m.componentID)
		return m, cmd

	case grid.EditRequestedMsg:
		cmd := m.openEdit(msg)
		return m, cmd

	case grid.DeleteRequestedMsg:
		m.openDelete(msg)
		return m, nil

	case grid.AddDocumentRequestedMsg:
		cmd := m.openAdd(msg.Table)
		return m, cmd

	case grid.CopyRequestedMsg:
		m.copy(msg.Label, msg.Text)
		return m, nil

	case preview.CopyRequestedMsg:
		m.copy("document", msg.Text)
		return m, nil

	case preview.ClosedMsg:
		return m, nil
	}

	return m.broadcast(msg)
}

// broadcast hands internal messages (spinner ticks, fetch results, hover
// timers) to every child. Each child ignores messages it does not own.
func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	cmds = append(cmds, cmd)
	m.grid, cmd = m.grid.Update(msg)
	cmds = append(cmds, cmd)
	m.preview, cmd = m.preview.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) openTable(name, componentID string) tea.Cmd {
	m.table = name
	m.componentID = componentID
	m.selection = nil
	m.cursor = ""
	m.isDone = true
	m.pageSeq++
	m.loadingDoc = false
	m.grid.SetTable(name, componentID, m.schemas[name])
	m.sidebar.SetSelected(name)
	if name == "" {
		return nil
	}
	if m.opts.Recent != nil {
		if err := m.opts.Recent.Record(name, componentID); err != nil {
			m.logger.Warn("saving recently viewed tables failed", "error", err)
		}
		m.sidebar.SetRecent(m.opts.Recent.Names(componentID))
	}
	m.setFocus(focusGrid)
	m.setStatus("", false)
	return m.loadPage(false, m.opts.PageSize)
}

func (m *Model) copy(label, text string) {
	if err := m.opts.Clipboard(text); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s", label), false)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.prompt.kind != promptNone {
		return m.updatePrompt(msg)
	}
	if m.preview.IsOpen() {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	if m.grid.MenuOpen() {
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	if m.focus == focusSidebar && m.sidebar.Capturing() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == focusSidebar && m.table != "" {
			m.setFocus(focusGrid)
		} else {
			m.setFocus(focusSidebar)
		}
		return m, nil
	case "t":
		m.setPalette(theme.Next(m.palette.Name))
		m.setStatus("Theme: "+m.palette.DisplayName, false)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusSidebar {
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}
	switch msg.String() {
	case "r":
		cmd = m.reload()
		return m, cmd
	case "/":
		m.setFocus(focusSidebar)
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.prompt.kind != promptNone || m.preview.IsOpen() {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && !m.grid.MenuOpen() {
		if msg.X < sidebar.Width {
			m.setFocus(focusSidebar)
		} else if m.table != "" {
			m.setFocus(focusGrid)
		}
	}
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}
