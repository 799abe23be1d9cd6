// Package grid implements the data table: column order and widths, drag and
// resize gestures, row selection, the cell context menu and the empty state.
package grid

import (
	"math"
	"slices"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

// Widths are expressed in pixel units. One terminal cell is CellWidth px wide
// and one line is CellHeight px tall.
const (
	CellWidth  = 8
	CellHeight = 32

	SelectionColumnWidth = 40
	MinColumnWidth       = 96

	defaultIDWidth           = 220
	defaultCreationTimeWidth = 180
	defaultColumnWidth       = 160

	skeletonRowHeight = 32
	minSkeletonRows   = 10

	MenuWidth  = 240
	MenuHeight = 320
	MenuMargin = 12
)

// Position says which side of the target column a dragged column lands on.
type Position int

const (
	Left Position = iota
	Right
)

func (p Position) String() string {
	if p == Right {
		return "right"
	}
	return "left"
}

// BaseColumns is the natural column order: _id, schema fields, _creationTime.
// Without a schema the columns are inferred from the documents. A non-nil
// visible list filters the result.
func BaseColumns(s *schema.TableSchema, docs []schema.Document, visible []string) []string {
	var base []string
	if s != nil && len(s.Fields) > 0 {
		base = schema.Columns(s)
	} else {
		base = schema.ColumnsFromDocuments(docs)
	}
	if visible == nil {
		return base
	}
	out := make([]string, 0, len(base))
	for _, c := range base {
		if slices.Contains(visible, c) {
			out = append(out, c)
		}
	}
	return out
}

// Reconcile keeps the columns of prev that are still in natural, in prev's
// order, and appends the newly visible ones in natural order.
func Reconcile(prev, natural []string) []string {
	out := make([]string, 0, len(natural))
	for _, c := range prev {
		if slices.Contains(natural, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, c := range natural {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// Reorder moves source next to target. The input is never modified.
func Reorder(order []string, source, target string, pos Position) []string {
	if source == target || !slices.Contains(order, source) || !slices.Contains(order, target) {
		return order
	}
	out := slices.DeleteFunc(slices.Clone(order), func(c string) bool { return c == source })
	idx := slices.Index(out, target)
	if pos == Right {
		idx++
	}
	return slices.Insert(out, idx, source)
}

// DefaultColumnWidth is the width used until a column is resized.
func DefaultColumnWidth(column string) int {
	switch column {
	case schema.IDField:
		return defaultIDWidth
	case schema.CreationTimeField:
		return defaultCreationTimeWidth
	}
	return defaultColumnWidth
}

// ColumnWidth resolves a column's width from the override map.
func ColumnWidth(widths map[string]int, column string) int {
	if w, ok := widths[column]; ok {
		return w
	}
	return DefaultColumnWidth(column)
}

// ResizedWidth applies a drag delta, never going below MinColumnWidth.
func ResizedWidth(startWidth, delta int) int {
	return max(MinColumnWidth, startWidth+delta)
}

// TableWidth is the selection column plus every column's width.
func TableWidth(order []string, widths map[string]int) int {
	total := SelectionColumnWidth
	for _, c := range order {
		total += ColumnWidth(widths, c)
	}
	return total
}

// SpacerWidth is the leftover horizontal space a trailing spacer absorbs.
func SpacerWidth(containerWidth, tableWidth int) int {
	return max(0, containerWidth-tableWidth)
}

// SkeletonRows is the placeholder row count for a container height in px.
func SkeletonRows(heightPx int) int {
	if heightPx < 0 {
		heightPx = 0
	}
	return max(minSkeletonRows, int(math.Ceil(float64(heightPx)/skeletonRowHeight))+5)
}

// DropPosition compares the pointer to the midpoint of the target header.
func DropPosition(pointerX, left, width int) Position {
	if pointerX*2 < left*2+width {
		return Left
	}
	return Right
}

// ClampMenuPosition keeps a MenuWidth x MenuHeight menu inside the screen
// with MenuMargin to spare. All values are px.
func ClampMenuPosition(x, y, screenWidth, screenHeight int) (int, int) {
	x = max(MenuMargin, min(x, screenWidth-MenuWidth-MenuMargin))
	y = max(MenuMargin, min(y, screenHeight-MenuHeight-MenuMargin))
	return x, y
}

// Cells converts px to whole terminal cells, at least one.
func Cells(px int) int {
	return max(1, px/CellWidth)
}
