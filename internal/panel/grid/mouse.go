package grid

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

type zone int

const (
	zoneNone zone = iota
	zoneSelect
	zoneGrip
	zoneLabel
	zoneMore
	zoneHandle
)

// span is a column's horizontal extent in content cells.
type span struct {
	column string
	index  int
	left   int
	width  int
}

type hit struct {
	span
	zone zone
}

func (m Model) spans() []span {
	x := Cells(SelectionColumnWidth)
	out := make([]span, 0, len(m.order))
	for i, c := range m.order {
		w := Cells(ColumnWidth(m.widths, c))
		out = append(out, span{column: c, index: i, left: x, width: w})
		x += w
	}
	return out
}

// hitAt classifies a grid-local x coordinate. Within a column the first cell
// is the drop indicator, the next two hold the grip, the second to last holds
// the cell menu trigger and the last one is the resize handle.
func (m Model) hitAt(lx int) hit {
	cx := lx + m.scrollX
	if cx < 0 {
		return hit{}
	}
	if cx < Cells(SelectionColumnWidth) {
		return hit{zone: zoneSelect}
	}
	for _, s := range m.spans() {
		if cx < s.left || cx >= s.left+s.width {
			continue
		}
		off := cx - s.left
		z := zoneLabel
		switch {
		case off == s.width-1:
			z = zoneHandle
		case off == s.width-2:
			z = zoneMore
		case off == 1 || off == 2:
			z = zoneGrip
		}
		return hit{span: s, zone: z}
	}
	return hit{}
}

func (m Model) bodyHeight() int {
	return max(0, m.layout.Height-2)
}

// rowAt maps a grid-local line to a loaded row index.
func (m Model) rowAt(ly int) (int, bool) {
	if ly < 1 || ly > m.bodyHeight() {
		return 0, false
	}
	row := m.rowOffset + ly - 1
	return row, row < len(m.docs)
}

func (m Model) inBounds(lx, ly int) bool {
	return lx >= 0 && ly >= 0 && lx < m.layout.Width && ly < m.layout.Height
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	lx, ly := msg.X-m.layout.X, msg.Y-m.layout.Y

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.resize != nil {
			m.moveResize(lx)
			return m, nil
		}
		if m.drag != nil {
			if h := m.hitAt(lx); h.column != "" {
				m.moveDrag(h.column, DropPosition(
					(lx+m.scrollX)*CellWidth+CellWidth/2, h.left*CellWidth, h.width*CellWidth,
				))
			}
			return m, nil
		}
		return m.hoverAt(lx, ly)

	case tea.MouseActionRelease:
		switch {
		case m.resize != nil:
			m.endGestures()
		case m.drag != nil:
			m.drop()
		}
		return m, nil

	case tea.MouseActionPress:
		if !m.inBounds(lx, ly) {
			m.endGestures()
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollRows(-3)
		case tea.MouseButtonWheelDown:
			m.scrollRows(3)
		case tea.MouseButtonLeft:
			return m.pressLeft(lx, ly)
		case tea.MouseButtonRight:
			m.pressRight(msg.X, msg.Y, lx, ly)
		}
	}
	return m, nil
}

func (m Model) hoverAt(lx, ly int) (Model, tea.Cmd) {
	if !m.inBounds(lx, ly) || ly != 0 {
		m.hoveredHeader = ""
		m.handleHover = ""
		m.hover.Leave()
		m.hoveredRow, m.hoveredColumn = -1, ""
		if row, ok := m.rowAt(ly); ok && m.inBounds(lx, ly) {
			if h := m.hitAt(lx); h.column != "" {
				m.hoveredRow, m.hoveredColumn = row, h.column
			}
		}
		return m, nil
	}

	h := m.hitAt(lx)
	m.hoveredRow, m.hoveredColumn = -1, ""
	if h.column == "" {
		m.hoveredHeader = ""
		m.handleHover = ""
		m.hover.Leave()
		return m, nil
	}
	m.hoveredHeader = h.column
	m.handleHover = ""
	if h.zone == zoneHandle {
		m.handleHover = h.column
	}
	meta, ok := m.meta[h.column]
	cmd := m.hover.Hover(h.column, meta, ok)
	return m, cmd
}

func (m Model) pressLeft(lx, ly int) (Model, tea.Cmd) {
	h := m.hitAt(lx)

	if ly == 0 {
		switch h.zone {
		case zoneSelect:
			return m, m.toggleAll()
		case zoneHandle:
			m.beginResize(h.column, lx)
		case zoneGrip:
			m.beginDrag(h.column)
		case zoneLabel, zoneMore:
			m.cursorCol = h.index
			m.ensureCursorVisible()
		}
		return m, nil
	}

	if ly == m.layout.Height-1 {
		cmd := m.loadMore()
		return m, cmd
	}

	row, ok := m.rowAt(ly)
	if !ok {
		return m, nil
	}
	doc := m.docs[row]
	if h.zone == zoneSelect {
		return m, m.toggleRow(doc.ID())
	}
	if h.column == "" {
		return m, nil
	}
	m.cursorRow, m.cursorCol = row, h.index
	m.ensureCursorVisible()
	switch {
	case h.zone == zoneMore:
		x, y := m.cellScreenPosition(row, h.index)
		m.openCellMenu(doc, h.column, x+h.width-2, y)
	case h.column == schema.IDField:
		return m, m.previewCursor()
	}
	return m, nil
}

func (m *Model) pressRight(screenX, screenY, lx, ly int) {
	row, ok := m.rowAt(ly)
	if !ok {
		return
	}
	h := m.hitAt(lx)
	if h.column == "" {
		return
	}
	m.cursorRow, m.cursorCol = row, h.index
	m.openCellMenu(m.docs[row], h.column, screenX, screenY)
}

func (m *Model) scrollRows(delta int) {
	maxOffset := max(0, len(m.docs)-m.bodyHeight())
	m.rowOffset = max(0, min(m.rowOffset+delta, maxOffset))
}

// cellScreenPosition is the absolute cell where the given cell starts.
func (m Model) cellScreenPosition(row, col int) (int, int) {
	spans := m.spans()
	x := m.layout.X
	if col >= 0 && col < len(spans) {
		x += spans[col].left - m.scrollX
	}
	return x, m.layout.Y + 1 + row - m.rowOffset
}

func (m *Model) ensureCursorVisible() {
	if body := m.bodyHeight(); body > 0 {
		if m.cursorRow < m.rowOffset {
			m.rowOffset = m.cursorRow
		}
		if m.cursorRow >= m.rowOffset+body {
			m.rowOffset = m.cursorRow - body + 1
		}
	}
	spans := m.spans()
	if m.cursorCol < 0 || m.cursorCol >= len(spans) || m.layout.Width <= 0 {
		return
	}
	s := spans[m.cursorCol]
	if s.left+s.width > m.scrollX+m.layout.Width {
		m.scrollX = s.left + s.width - m.layout.Width
	}
	if s.left < m.scrollX {
		m.scrollX = s.left
	}
	if m.cursorCol == 0 {
		m.scrollX = 0
	}
}
