package grid

import (
	"encoding/json"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/panel/format"
	"github.com/convex-panel/panelctl/internal/panel/hoverlabel"
	"github.com/convex-panel/panelctl/internal/panel/menu"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

// Options configures a grid.
type Options struct {
	Dwell    time.Duration
	Platform menu.Platform
	Editable bool
	NoColor  bool
	Palette  theme.Palette
}

// Layout places the grid on screen. All values are cells.
type Layout struct {
	X, Y          int
	Width, Height int
	ScreenWidth   int
	ScreenHeight  int
}

// Model is a controlled data table. Documents, schema and selection are
// supplied by the owner; column order, widths and gestures are local.
type Model struct {
	opts    Options
	palette theme.Palette

	table       string
	componentID string
	schema      *schema.TableSchema
	meta        map[string]schema.ColumnMeta
	docs        []schema.Document
	isDone      bool
	loadingMore bool

	visible  []string
	order    []string
	widths   map[string]int
	selected []string

	layout    Layout
	focused   bool
	rowOffset int
	scrollX   int
	cursorRow int
	cursorCol int

	hoveredHeader string
	hoveredRow    int
	hoveredColumn string
	handleHover   string

	drag     *dragState
	resize   *resizeState
	cellMenu *cellMenuState

	menu  menu.Model
	hover hoverlabel.Model
}

func New(opts Options) Model {
	return Model{
		opts:       opts,
		palette:    opts.Palette,
		meta:       schema.BuildColumnMeta(nil),
		widths:     map[string]int{},
		hoveredRow: -1,
		menu:       menu.New(opts.Platform, opts.Palette),
		hover:      hoverlabel.New(opts.Dwell, opts.Palette),
	}
}

// SetTable switches to another table and discards all local UI state.
func (m *Model) SetTable(table, componentID string, s *schema.TableSchema) {
	m.endGestures()
	m.menu.Close()
	m.hover.Leave()
	m.table = table
	m.componentID = componentID
	m.schema = s
	m.meta = schema.BuildColumnMeta(s)
	m.docs = nil
	m.isDone = true
	m.loadingMore = false
	m.order = nil
	m.widths = map[string]int{}
	m.selected = nil
	m.cellMenu = nil
	m.rowOffset, m.scrollX = 0, 0
	m.cursorRow, m.cursorCol = 0, 0
	m.hoveredHeader, m.hoveredColumn, m.hoveredRow = "", "", -1
	m.reconcile()
}

// SetSchema replaces the schema of the current table.
func (m *Model) SetSchema(s *schema.TableSchema) {
	m.schema = s
	m.meta = schema.BuildColumnMeta(s)
	m.reconcile()
}

// SetDocuments replaces the loaded rows.
func (m *Model) SetDocuments(docs []schema.Document, isDone bool) {
	m.docs = docs
	m.isDone = isDone
	m.loadingMore = false
	m.reconcile()
	m.clampCursor()
}

// AppendDocuments adds a further page.
func (m *Model) AppendDocuments(docs []schema.Document, isDone bool) {
	m.SetDocuments(append(m.docs, docs...), isDone)
}

// SetLoadFailed re-enables "load more" after a failed page fetch.
func (m *Model) SetLoadFailed() { m.loadingMore = false }

// SetVisibleFields restricts the displayed columns; nil shows all.
func (m *Model) SetVisibleFields(fields []string) {
	m.visible = fields
	m.reconcile()
}

// SetSelection renders ids as selected.
func (m *Model) SetSelection(ids []string) { m.selected = ids }

func (m *Model) SetLayout(l Layout) {
	m.layout = l
	m.ensureCursorVisible()
}

// SetFocused routes keyboard input to the grid.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
	if !focused {
		m.endGestures()
	}
}

func (m *Model) SetPalette(p theme.Palette) {
	m.palette = p
	m.menu.SetPalette(p)
	m.hover.SetPalette(p)
}

func (m Model) Table() string { return m.table }
func (m Model) Order() []string { return m.order }
func (m Model) Documents() []schema.Document { return m.docs }
func (m Model) Selection() []string { return m.selected }
func (m Model) Focused() bool { return m.focused }
func (m Model) MenuOpen() bool { return m.menu.IsOpen() }

// Width returns the current width of column in px.
func (m Model) Width(column string) int { return ColumnWidth(m.widths, column) }

// CursorDocument is the document under the row cursor.
func (m Model) CursorDocument() (schema.Document, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(m.docs) {
		return nil, false
	}
	return m.docs[m.cursorRow], true
}

func (m *Model) reconcile() {
	m.order = Reconcile(m.order, BaseColumns(m.schema, m.docs, m.visible))
	if m.cursorCol >= len(m.order) {
		m.cursorCol = max(0, len(m.order)-1)
	}
}

func (m Model) rowIDs() []string {
	ids := make([]string, 0, len(m.docs))
	for _, d := range m.docs {
		if id := d.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case menu.ClosedMsg:
		m.cellMenu = nil
		return m, nil
	case tea.KeyMsg:
		if m.menu.IsOpen() {
			return m.updateMenu(msg)
		}
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.menu.IsOpen() {
			return m.updateMenu(msg)
		}
		return m.handleMouse(msg)
	}
	var cmd tea.Cmd
	m.hover, cmd = m.hover.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	if !m.menu.IsOpen() {
		m.cellMenu = nil
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m.endGestures()
	case "up", "k":
		m.moveCursor(-1, 0)
	case "down", "j":
		m.moveCursor(1, 0)
	case "left", "h":
		m.moveCursor(0, -1)
	case "right", "l":
		m.moveCursor(0, 1)
	case "pgup":
		m.moveCursor(-m.bodyHeight(), 0)
	case "pgdown":
		m.moveCursor(m.bodyHeight(), 0)
	case "home", "g":
		m.moveCursor(-len(m.docs), 0)
	case "end", "G":
		m.moveCursor(len(m.docs), 0)
	case " ":
		if doc, ok := m.CursorDocument(); ok {
			cmd = m.toggleRow(doc.ID())
		}
	case "a":
		cmd = m.toggleAll()
	case "m":
		if doc, ok := m.CursorDocument(); ok && len(m.order) > 0 {
			x, y := m.cellScreenPosition(m.cursorRow, m.cursorCol)
			m.openCellMenu(doc, m.order[m.cursorCol], x, y)
		}
	case "enter":
		cmd = m.previewCursor()
	case "e":
		cmd = m.editCursor()
	case "delete":
		cmd = m.deleteRequest()
	case "<":
		m.shiftColumn(-1)
	case ">":
		m.shiftColumn(1)
	case "[":
		m.nudgeWidth(-CellWidth)
	case "]":
		m.nudgeWidth(CellWidth)
	case "L":
		cmd = m.loadMore()
	case "n":
		if len(m.docs) == 0 && m.table != "" {
			cmd = emit(AddDocumentRequestedMsg{Table: m.table})
		}
	}
	return m, cmd
}

func (m *Model) moveCursor(dRow, dCol int) {
	m.cursorRow += dRow
	m.cursorCol += dCol
	m.clampCursor()
	m.ensureCursorVisible()
}

func (m *Model) clampCursor() {
	m.cursorRow = max(0, min(m.cursorRow, len(m.docs)-1))
	m.cursorCol = max(0, min(m.cursorCol, len(m.order)-1))
}

// shiftColumn moves the focused column one place left or right.
func (m *Model) shiftColumn(dir int) {
	if len(m.order) < 2 {
		return
	}
	neighbour := m.cursorCol + dir
	if neighbour < 0 || neighbour >= len(m.order) {
		return
	}
	column := m.order[m.cursorCol]
	pos := Right
	if dir < 0 {
		pos = Left
	}
	m.order = Reorder(m.order, column, m.order[neighbour], pos)
	m.cursorCol = neighbour
	m.ensureCursorVisible()
}

func (m *Model) nudgeWidth(delta int) {
	if len(m.order) == 0 {
		return
	}
	column := m.order[m.cursorCol]
	m.setWidth(column, ResizedWidth(ColumnWidth(m.widths, column), delta))
	m.ensureCursorVisible()
}

func (m *Model) toggleRow(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	return emit(SelectionChangedMsg{IDs: ToggleRow(m.selected, id)})
}

func (m *Model) toggleAll() tea.Cmd {
	if len(m.docs) == 0 {
		return nil
	}
	return emit(SelectionChangedMsg{IDs: ToggleAll(m.selected, m.rowIDs())})
}

func (m *Model) loadMore() tea.Cmd {
	if m.isDone || m.loadingMore || m.table == "" {
		return nil
	}
	m.loadingMore = true
	return emit(LoadMoreMsg{Table: m.table})
}

func (m *Model) previewCursor() tea.Cmd {
	doc, ok := m.CursorDocument()
	if !ok || len(m.order) == 0 {
		return nil
	}
	column := m.order[m.cursorCol]
	if table, id, ok := m.previewTarget(doc, column); ok {
		return emit(PreviewRequestedMsg{Table: table, DocumentID: id})
	}
	return nil
}

func (m *Model) editCursor() tea.Cmd {
	doc, ok := m.CursorDocument()
	if !ok || !m.opts.Editable || len(m.order) == 0 {
		return nil
	}
	column := m.order[m.cursorCol]
	if schema.IsSystemField(column) {
		return nil
	}
	return emit(EditRequestedMsg{Table: m.table, RowID: doc.ID(), Column: column, Value: doc[column]})
}

// deleteRequest targets the selection, or the cursor row when nothing is
// selected.
func (m *Model) deleteRequest() tea.Cmd {
	ids := m.selected
	if len(ids) == 0 {
		doc, ok := m.CursorDocument()
		if !ok {
			return nil
		}
		ids = []string{doc.ID()}
	}
	return emit(DeleteRequestedMsg{Table: m.table, IDs: append([]string(nil), ids...)})
}

// previewTarget resolves which document a cell points at: the row itself for
// _id, or the referenced document for reference columns.
func (m Model) previewTarget(doc schema.Document, column string) (string, string, bool) {
	if column == schema.IDField {
		return m.table, doc.ID(), doc.ID() != ""
	}
	link := m.meta[column].LinkTable
	if id, ok := doc[column].(string); ok && link != "" && id != "" {
		return link, id, true
	}
	return "", "", false
}

func (m *Model) openCellMenu(doc schema.Document, column string, x, y int) {
	px, py := ClampMenuPosition(
		x*CellWidth, y*CellHeight,
		m.layout.ScreenWidth*CellWidth, m.layout.ScreenHeight*CellHeight,
	)
	state := &cellMenuState{
		rowID:  doc.ID(),
		column: column,
		value:  doc[column],
		x:      px / CellWidth,
		y:      py / CellHeight,
	}
	m.endGestures()
	m.hover.Leave()
	m.cellMenu = state
	m.menu.Open(m.cellEntries(doc, state), state.x, state.y)
}

func (m Model) cellEntries(doc schema.Document, state *cellMenuState) []menu.Entry {
	entries := []menu.Entry{
		menu.Action{
			Label:    "Copy value",
			Shortcut: "c",
			OnSelect: emitFunc(CopyRequestedMsg{Label: state.column, Text: copyText(state.value)}),
		},
		menu.Action{
			Label:    "Copy document",
			Shortcut: "shift+c",
			OnSelect: emitFunc(CopyRequestedMsg{Label: "document", Text: documentJSON(doc)}),
		},
	}
	if m.opts.Editable && !schema.IsSystemField(state.column) {
		entries = append(entries, menu.Action{
			Label:    "Edit",
			Shortcut: "e",
			OnSelect: emitFunc(EditRequestedMsg{
				Table: m.table, RowID: state.rowID, Column: state.column, Value: state.value,
			}),
		})
	}
	if table, id, ok := m.previewTarget(doc, state.column); ok {
		entries = append(entries, menu.Action{
			Label:    "View document",
			Shortcut: "v",
			OnSelect: emitFunc(PreviewRequestedMsg{Table: table, DocumentID: id}),
		})
	}
	return append(entries,
		menu.Divider{},
		menu.Action{
			Label:       "Delete document",
			Destructive: true,
			OnSelect:    emitFunc(DeleteRequestedMsg{Table: m.table, IDs: []string{state.rowID}}),
		},
	)
}

func copyText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return format.Value(v)
}

func documentJSON(doc schema.Document) string {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return format.Value(map[string]any(doc))
	}
	return string(b)
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func emitFunc(msg tea.Msg) func() tea.Cmd {
	return func() tea.Cmd { return emit(msg) }
}
