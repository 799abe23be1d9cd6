package text

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Table(&out, []string{"NAME", "DOCS"}, [][]string{{"users", "3"}, {"messages", "12"}}, "none"))

	lines := strings.Split(strings.TrimRight(ansi.Strip(out.String()), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "users")
	assert.Contains(t, lines[2], "messages")
	assert.Equal(t, strings.Index(lines[1], "3"), strings.Index(lines[2], "12"))
}

func TestTableEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Table(&out, []string{"NAME"}, nil, "No tables found."))
	assert.Equal(t, "No tables found.\n", out.String())
}

func TestTableClipsLongCells(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Table(&out, []string{"V"}, [][]string{{strings.Repeat("x", 100)}}, ""))
	assert.Contains(t, out.String(), "…")
	assert.NotContains(t, out.String(), strings.Repeat("x", MaxCellWidth+1))
}

func TestFields(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Fields(&out, "Document", []Field{{"_id", "k1"}, {"name", "Ada"}}))
	assert.Equal(t, "Document\n  _id   k1\n  name  Ada\n", out.String())
}

func TestFieldsAlignsWideLabels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Fields(&out, "", []Field{{"名前", "Ada"}, {"age", "36"}}))
	assert.Equal(t, "  名前  Ada\n  age   36\n", out.String())
}
