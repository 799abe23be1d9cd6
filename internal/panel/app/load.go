package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/log"
	"github.com/convex-panel/panelctl/internal/panel/schema"
)

type schemasMsg struct {
	seq     int
	schemas map[string]*schema.TableSchema
	err     error
}

type pageMsg struct {
	seq    int
	table  string
	append bool
	result admin.PageResult
	err    error
}

type mutationDoneMsg struct {
	table   string
	done    string
	err     error
	deleted []string
}

func (m *Model) loadSchemas() tea.Cmd {
	m.schemaSeq++
	return m.fetchSchemas()
}

// fetchSchemas loads the schemas tagged with the current schema seq.
func (m Model) fetchSchemas() tea.Cmd {
	seq, componentID := m.schemaSeq, m.componentID
	client, ctx := m.opts.Client, m.ctx
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		schemas, err := admin.Schemas(ctx, client, componentID)
		return schemasMsg{seq: seq, schemas: schemas, err: err}
	}
}

// loadPage fetches the first page of the open table, or the next page when
// more is set. A result is applied only if no later load was started.
func (m *Model) loadPage(more bool, numItems int) tea.Cmd {
	if m.table == "" || m.opts.Client == nil {
		return nil
	}
	m.pageSeq++
	cursor := ""
	if more {
		cursor = m.cursor
	} else {
		m.loadingDoc = true
	}
	req := admin.PageRequest{
		Table:       m.table,
		ComponentID: m.componentID,
		NumItems:    numItems,
		Cursor:      cursor,
	}
	seq, client := m.pageSeq, m.opts.Client
	ctx := log.WithRequestLogContext(m.ctx, log.RequestLogContext{Table: m.table, ComponentID: m.componentID})
	return func() tea.Msg {
		res, err := admin.Page(ctx, client, req)
		return pageMsg{seq: seq, table: req.Table, append: more, result: res, err: err}
	}
}

// reload refetches from the start, keeping at least as many rows as are
// currently loaded.
func (m *Model) reload() tea.Cmd {
	return m.loadPage(false, max(m.opts.PageSize, len(m.grid.Documents())))
}

func (m *Model) applyPage(msg pageMsg) {
	if msg.seq != m.pageSeq || msg.table != m.table {
		return
	}
	m.loadingDoc = false
	if msg.err != nil {
		if msg.append {
			m.grid.SetLoadFailed()
		}
		m.setStatus("Failed to load documents: "+panelerr.Message(msg.err), true)
		return
	}
	m.cursor = msg.result.ContinueCursor
	m.isDone = msg.result.IsDone
	if msg.append {
		m.grid.AppendDocuments(msg.result.Page, msg.result.IsDone)
	} else {
		m.grid.SetDocuments(msg.result.Page, msg.result.IsDone)
	}
	m.pruneSelection()
}

// pruneSelection drops selected ids that are no longer loaded.
func (m *Model) pruneSelection() {
	if len(m.selection) == 0 {
		return
	}
	loaded := map[string]bool{}
	for _, d := range m.grid.Documents() {
		loaded[d.ID()] = true
	}
	kept := m.selection[:0:0]
	for _, id := range m.selection {
		if loaded[id] {
			kept = append(kept, id)
		}
	}
	m.selection = kept
	m.grid.SetSelection(kept)
}

func (m *Model) patch(table, id, column string, value any) tea.Cmd {
	client, ctx, componentID := m.opts.Client, m.ctx, m.componentID
	return func() tea.Msg {
		err := admin.PatchFields(ctx, client, table, componentID, []string{id}, map[string]any{column: value})
		return mutationDoneMsg{table: table, done: fmt.Sprintf("Updated %s", column), err: err}
	}
}

func (m *Model) remove(table string, ids []string) tea.Cmd {
	client, ctx, componentID := m.opts.Client, m.ctx, m.componentID
	return func() tea.Msg {
		err := admin.DeleteDocuments(ctx, client, table, componentID, ids)
		return mutationDoneMsg{table: table, done: fmt.Sprintf("Deleted %s", plural(len(ids), "document")), err: err, deleted: ids}
	}
}

func (m *Model) add(table string, doc schema.Document) tea.Cmd {
	client, ctx, componentID := m.opts.Client, m.ctx, m.componentID
	return func() tea.Msg {
		err := admin.AddDocuments(ctx, client, table, componentID, []schema.Document{doc})
		return mutationDoneMsg{table: table, done: "Added document", err: err}
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
