package grid

// dragState exists only while a header is being dragged.
type dragState struct {
	dragging string
	over     string
	position Position
}

// resizeState exists only while a resize handle is held.
type resizeState struct {
	column     string
	startX     int
	startWidth int
}

// cellMenuState is the cell the open context menu acts on.
type cellMenuState struct {
	rowID  string
	column string
	value  any
	x, y   int
}

// endGestures drops any in-flight drag or resize. Every exit path of a
// gesture goes through here.
func (m *Model) endGestures() {
	m.drag = nil
	m.resize = nil
	m.handleHover = ""
}

func (m *Model) beginResize(column string, pointerX int) {
	m.endGestures()
	m.resize = &resizeState{
		column:     column,
		startX:     pointerX * CellWidth,
		startWidth: ColumnWidth(m.widths, column),
	}
	m.handleHover = column
}

func (m *Model) moveResize(pointerX int) {
	if m.resize == nil {
		return
	}
	m.setWidth(m.resize.column, ResizedWidth(m.resize.startWidth, pointerX*CellWidth-m.resize.startX))
}

func (m *Model) beginDrag(column string) {
	m.endGestures()
	m.drag = &dragState{dragging: column, over: column}
}

func (m *Model) moveDrag(column string, pos Position) {
	if m.drag == nil || column == "" {
		return
	}
	m.drag.over = column
	m.drag.position = pos
}

func (m *Model) drop() {
	if m.drag != nil {
		m.order = Reorder(m.order, m.drag.dragging, m.drag.over, m.drag.position)
	}
	m.endGestures()
}

func (m *Model) setWidth(column string, width int) {
	if m.widths == nil {
		m.widths = map[string]int{}
	}
	m.widths[column] = width
}
