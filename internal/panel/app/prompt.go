package app

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/panel/grid"
	"github.com/convex-panel/panelctl/internal/panel/schema"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptEdit
	promptAdd
	promptDelete
)

// prompt is the single modal input of the browse screen.
type prompt struct {
	kind   promptKind
	table  string
	rowID  string
	column string
	ids    []string
	err    string
}

func (p prompt) title() string {
	switch p.kind {
	case promptEdit:
		return fmt.Sprintf("Edit %s", p.column)
	case promptAdd:
		return fmt.Sprintf("Add document to %s", p.table)
	case promptDelete:
		return fmt.Sprintf("Delete %s from %s?", plural(len(p.ids), "document"), p.table)
	}
	return ""
}

func (m *Model) openEdit(msg grid.EditRequestedMsg) tea.Cmd {
	m.prompt = prompt{kind: promptEdit, table: msg.Table, rowID: msg.RowID, column: msg.Column}
	m.promptInput.SetValue(editText(msg.Value))
	m.promptInput.CursorEnd()
	return m.promptInput.Focus()
}

func (m *Model) openAdd(table string) tea.Cmd {
	m.prompt = prompt{kind: promptAdd, table: table}
	m.promptInput.SetValue("{}")
	m.promptInput.SetCursor(1)
	return m.promptInput.Focus()
}

func (m *Model) openDelete(msg grid.DeleteRequestedMsg) {
	if len(msg.IDs) == 0 {
		return
	}
	m.prompt = prompt{kind: promptDelete, table: msg.Table, ids: msg.IDs}
	m.promptInput.Blur()
}

func (m *Model) closePrompt() {
	m.prompt = prompt{}
	m.promptInput.Reset()
	m.promptInput.Blur()
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.prompt.kind == promptDelete {
		switch msg.String() {
		case "y", "Y", "enter":
			p := m.prompt
			m.closePrompt()
			cmd := m.remove(p.table, p.ids)
			return m, cmd
		case "n", "N", "esc", "q":
			m.closePrompt()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		cmd := m.submitPrompt()
		return m, cmd
	}
	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

// submitPrompt parses the input; on failure the prompt stays open with the
// error shown under the input.
func (m *Model) submitPrompt() tea.Cmd {
	p := m.prompt
	raw := m.promptInput.Value()
	switch p.kind {
	case promptEdit:
		value := parseValue(raw)
		m.closePrompt()
		return m.patch(p.table, p.rowID, p.column, value)
	case promptAdd:
		doc, err := schema.ParseDocument(raw)
		if err != nil {
			m.prompt.err = err.Error()
			return nil
		}
		m.closePrompt()
		return m.add(p.table, doc)
	}
	return nil
}

// editText is the initial prompt text for a cell value. Strings are edited
// bare, everything else as JSON.
func editText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// parseValue reads JSON when the text is valid JSON and falls back to the
// raw string.
func parseValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return s
	}
	return v
}
