// Package text renders --output text tables and field lists.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

// MaxCellWidth bounds one table cell; longer values end in an ellipsis.
const MaxCellWidth = 48

// Field is one labelled line of a detail view.
type Field struct {
	Label string
	Value string
}

// Table writes rows under headers. An empty table prints empty instead.
func Table(out io.Writer, headers []string, rows [][]string, empty string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, empty)
		return err
	}
	clipped := make([][]string, len(rows))
	for i, row := range rows {
		clipped[i] = make([]string, len(row))
		for j, cell := range row {
			clipped[i][j] = clip(cell)
		}
	}
	cell := lipgloss.NewStyle().PaddingRight(2)
	header := cell.Bold(true)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(clipped...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	_, err := fmt.Fprintln(out, trimLines(t.String()))
	return err
}

// Fields writes label/value pairs with aligned values.
func Fields(out io.Writer, title string, fields []Field) error {
	if title != "" {
		if _, err := fmt.Fprintln(out, title); err != nil {
			return err
		}
	}
	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f.Label))
	}
	for _, f := range fields {
		value := strings.ReplaceAll(f.Value, "\n", "\n"+strings.Repeat(" ", width+4))
		label := runewidth.FillRight(f.Label, width)
		if _, err := fmt.Fprintf(out, "  %s  %s\n", label, value); err != nil {
			return err
		}
	}
	return nil
}

func clip(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) <= MaxCellWidth {
		return s
	}
	return truncate.StringWithTail(s, MaxCellWidth, "…")
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
