package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

func TestReorder(t *testing.T) {
	order := []string{"_id", "email", "teamId", "_creationTime"}

	tests := []struct {
		name   string
		source string
		target string
		pos    Position
		want   []string
	}{
		{"left of target", "_creationTime", "email", Left, []string{"_id", "_creationTime", "email", "teamId"}},
		{"right of target", "_id", "teamId", Right, []string{"email", "teamId", "_id", "_creationTime"}},
		{"onto itself", "email", "email", Right, order},
		{"missing target", "email", "gone", Left, order},
		{"missing source", "gone", "email", Left, order},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Reorder(order, tt.source, tt.target, tt.pos))
		})
	}
	require.Equal(t, []string{"_id", "email", "teamId", "_creationTime"}, order, "input untouched")
}

func TestReorderNoOpForEveryColumn(t *testing.T) {
	order := []string{"a", "b", "c"}
	for _, c := range order {
		for _, pos := range []Position{Left, Right} {
			require.Equal(t, order, Reorder(order, c, c, pos))
		}
	}
}

func TestReorderRoundTrip(t *testing.T) {
	order := []string{"a", "b", "c", "d", "e"}
	for i, moved := range order {
		for _, target := range order {
			if target == moved {
				continue
			}
			there := Reorder(order, moved, target, Left)
			var back []string
			if i+1 < len(order) {
				back = Reorder(there, moved, order[i+1], Left)
			} else {
				back = Reorder(there, moved, order[i-1], Right)
			}
			require.Equal(t, order, back, "moving %s before %s", moved, target)
		}
	}
}

func TestReconcile(t *testing.T) {
	prev := []string{"_creationTime", "email", "_id", "name"}
	natural := []string{"_id", "email", "age", "_creationTime"}
	require.Equal(t, []string{"_creationTime", "email", "_id", "age"}, Reconcile(prev, natural))
	require.Equal(t, natural, Reconcile(nil, natural))
	require.Empty(t, Reconcile(prev, nil))
}

func TestBaseColumns(t *testing.T) {
	s := &schema.TableSchema{Fields: []schema.TableField{
		{FieldName: "email", Shape: schema.Shape{Type: "string"}},
		{FieldName: "age", Shape: schema.Shape{Type: "float64"}},
	}}
	require.Equal(t, []string{"_id", "email", "age", "_creationTime"}, BaseColumns(s, nil, nil))
	require.Equal(t, []string{"_id", "age"}, BaseColumns(s, nil, []string{"age", "_id", "unknown"}))

	docs := []schema.Document{{"_id": "k1", "zeta": 1, "alpha": 2}}
	require.Equal(t, []string{"_id", "alpha", "zeta", "_creationTime"}, BaseColumns(nil, docs, nil))
}

func TestWidths(t *testing.T) {
	assert.Equal(t, 220, DefaultColumnWidth("_id"))
	assert.Equal(t, 180, DefaultColumnWidth("_creationTime"))
	assert.Equal(t, 160, DefaultColumnWidth("email"))
	assert.Equal(t, 300, ColumnWidth(map[string]int{"email": 300}, "email"))

	for _, delta := range []int{-1, -64, -1000, -1 << 30} {
		assert.GreaterOrEqual(t, ResizedWidth(160, delta), MinColumnWidth)
	}
	assert.Equal(t, 96, ResizedWidth(160, -64))
	assert.Equal(t, 200, ResizedWidth(160, 40))

	order := []string{"_id", "email", "_creationTime"}
	assert.Equal(t, 40+220+160+180, TableWidth(order, nil))
	assert.Equal(t, 0, SpacerWidth(500, TableWidth(order, nil)))
	assert.Equal(t, 100, SpacerWidth(700, 600))
}

func TestSkeletonRows(t *testing.T) {
	assert.Equal(t, 10, SkeletonRows(0))
	assert.Equal(t, 10, SkeletonRows(-50))
	assert.Equal(t, 10, SkeletonRows(160))
	assert.Equal(t, 11, SkeletonRows(161))
	assert.Equal(t, 25, SkeletonRows(640))
}

func TestDropPosition(t *testing.T) {
	assert.Equal(t, Left, DropPosition(100, 100, 160))
	assert.Equal(t, Left, DropPosition(179, 100, 160))
	assert.Equal(t, Right, DropPosition(180, 100, 160))
	assert.Equal(t, Right, DropPosition(259, 100, 160))
}

func TestClampMenuPosition(t *testing.T) {
	for _, screenWidth := range []int{300, 800, 1280, 1920} {
		x, y := ClampMenuPosition(screenWidth-10, 50, screenWidth, 900)
		assert.LessOrEqual(t, x+MenuWidth, screenWidth-MenuMargin)
		assert.Equal(t, 50, y)
	}

	x, y := ClampMenuPosition(0, 2000, 1000, 800)
	assert.Equal(t, MenuMargin, x)
	assert.Equal(t, 800-MenuHeight-MenuMargin, y)
}

func TestSelection(t *testing.T) {
	ids := []string{"a", "b", "c"}

	assert.False(t, IsAllSelected(nil, ids))
	assert.False(t, IsAllSelected([]string{"a", "b"}, ids))
	assert.True(t, IsAllSelected([]string{"c", "x", "a", "b"}, ids))
	assert.False(t, IsAllSelected([]string{"a"}, nil))

	assert.Equal(t, []string{}, ToggleAll([]string{"a", "b", "c"}, ids))
	assert.Equal(t, ids, ToggleAll([]string{"b"}, ids))

	selected := []string{"a"}
	assert.Equal(t, []string{"a", "b"}, ToggleRow(selected, "b"))
	assert.Equal(t, []string{}, ToggleRow(selected, "a"))
	assert.Equal(t, []string{"a"}, selected)
}
