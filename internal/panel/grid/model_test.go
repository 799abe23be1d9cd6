package grid

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/panel/menu"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/convex-panel/panelctl/internal/theme"
)

var usersSchema = &schema.TableSchema{Table: "users", Fields: []schema.TableField{
	{FieldName: "email", Shape: schema.Shape{Type: "string"}},
	{FieldName: "teamId", Optional: true, Shape: schema.Shape{Type: "Id", TableName: "teams"}},
}}

func usersDocs() []schema.Document {
	return []schema.Document{
		{"_id": "k1aaaaaaaaaaaaaaaaaaaaa", "email": "ada@example.com", "teamId": "k9tttttttttttttttttttttt", "_creationTime": 1.7e12},
		{"_id": "k2aaaaaaaaaaaaaaaaaaaaa", "email": "bob@example.com", "_creationTime": 1.7e12},
		{"_id": "k3aaaaaaaaaaaaaaaaaaaaa", "email": "cy@example.com", "_creationTime": 1.7e12},
	}
}

// Column spans with the default widths: selection 0-4, _id 5-31,
// email 32-51, teamId 52-71, _creationTime 72-93.
func newUsersGrid(t *testing.T) Model {
	t.Helper()
	m := New(Options{Dwell: time.Millisecond, Platform: menu.PlatformOther, Editable: true, NoColor: true, Palette: theme.Current()})
	m.SetLayout(Layout{Width: 100, Height: 20, ScreenWidth: 100, ScreenHeight: 30})
	m.SetTable("users", "", usersSchema)
	m.SetDocuments(usersDocs(), false)
	m.SetFocused(true)
	return m
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// messages runs cmd and returns the non-batch messages it produced.
func messages(cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		switch msg := current().(type) {
		case tea.BatchMsg:
			queue = append(queue, []tea.Cmd(msg)...)
		case nil:
		default:
			out = append(out, msg)
		}
	}
	return out
}

func TestDragHeaderReordersColumns(t *testing.T) {
	m := newUsersGrid(t)
	require.Equal(t, []string{"_id", "email", "teamId", "_creationTime"}, m.Order())

	m, _ = m.Update(mouse(33, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	require.NotNil(t, m.drag)

	m, _ = m.Update(mouse(67, 0, tea.MouseActionMotion, tea.MouseButtonLeft))
	require.Equal(t, "teamId", m.drag.over)
	require.Equal(t, Right, m.drag.position)
	require.Contains(t, m.headerLine(), "▐")

	m, _ = m.Update(mouse(67, 0, tea.MouseActionRelease, tea.MouseButtonNone))
	require.Nil(t, m.drag)
	require.Equal(t, []string{"_id", "teamId", "email", "_creationTime"}, m.Order())
}

func TestDragOntoLeftHalf(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(73, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	m, _ = m.Update(mouse(34, 0, tea.MouseActionMotion, tea.MouseButtonLeft))
	require.Equal(t, Left, m.drag.position)
	m, _ = m.Update(mouse(34, 0, tea.MouseActionRelease, tea.MouseButtonNone))
	require.Equal(t, []string{"_id", "_creationTime", "email", "teamId"}, m.Order())
}

func TestResizeHandleClampsAndReleases(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(51, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	require.NotNil(t, m.resize)

	m, _ = m.Update(mouse(0, 0, tea.MouseActionMotion, tea.MouseButtonLeft))
	require.Equal(t, MinColumnWidth, m.Width("email"))

	m, _ = m.Update(mouse(61, 0, tea.MouseActionMotion, tea.MouseButtonLeft))
	require.Equal(t, 240, m.Width("email"))

	// Release far outside the grid still ends the gesture.
	m, _ = m.Update(mouse(500, 500, tea.MouseActionRelease, tea.MouseButtonNone))
	require.Nil(t, m.resize)
	require.Empty(t, m.handleHover)
	require.Equal(t, 240, m.Width("email"))
}

func TestGesturesClearedOnTableChangeAndEscape(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(33, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	require.NotNil(t, m.drag)
	m, _ = m.Update(keyMsg("esc"))
	require.Nil(t, m.drag)

	m, _ = m.Update(mouse(51, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	require.NotNil(t, m.resize)
	m.SetTable("teams", "", nil)
	require.Nil(t, m.resize)
	require.Nil(t, m.drag)
	require.Equal(t, []string{"_id", "_creationTime"}, m.Order())
}

func TestSelectAllIsControlled(t *testing.T) {
	m := newUsersGrid(t)
	m, cmd := m.Update(mouse(1, 0, tea.MouseActionPress, tea.MouseButtonLeft))
	msgs := messages(cmd)
	require.Len(t, msgs, 1)
	all := msgs[0].(SelectionChangedMsg).IDs
	require.Len(t, all, 3)
	require.Empty(t, m.Selection(), "grid does not hold selection itself")

	m.SetSelection(all)
	_, cmd = m.Update(keyMsg("a"))
	require.Equal(t, []tea.Msg{SelectionChangedMsg{IDs: []string{}}}, messages(cmd))

	m.SetSelection(nil)
	_, cmd = m.Update(keyMsg(" "))
	require.Equal(t, []tea.Msg{SelectionChangedMsg{IDs: []string{"k1aaaaaaaaaaaaaaaaaaaaa"}}}, messages(cmd))

	_, cmd = m.Update(mouse(2, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	require.Equal(t, []tea.Msg{SelectionChangedMsg{IDs: []string{"k2aaaaaaaaaaaaaaaaaaaaa"}}}, messages(cmd))
}

func TestRightClickNearEdgeClampsMenu(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(90, 3, tea.MouseActionPress, tea.MouseButtonRight))
	require.True(t, m.MenuOpen())
	require.NotNil(t, m.cellMenu)
	require.Equal(t, "k3aaaaaaaaaaaaaaaaaaaaa", m.cellMenu.rowID)
	require.Equal(t, "_creationTime", m.cellMenu.column)

	x, _ := m.menu.Position()
	screenPx := m.layout.ScreenWidth * CellWidth
	require.LessOrEqual(t, x*CellWidth+MenuWidth, screenPx-MenuMargin)

	layers := m.Layers()
	require.NotEmpty(t, layers)
	require.Contains(t, layers[len(layers)-1].Content, "Copy value")
}

func TestMenuActionsEmitRequests(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(40, 1, tea.MouseActionPress, tea.MouseButtonRight))
	require.Equal(t, "email", m.cellMenu.column)

	m, cmd := m.Update(keyMsg("c"))
	require.False(t, m.MenuOpen())
	require.Nil(t, m.cellMenu)
	msgs := messages(cmd)
	require.Contains(t, msgs, tea.Msg(CopyRequestedMsg{Label: "email", Text: "ada@example.com"}))
	require.Contains(t, msgs, tea.Msg(menu.ClosedMsg{}))

	m, _ = m.Update(mouse(40, 1, tea.MouseActionPress, tea.MouseButtonRight))
	_, cmd = m.Update(keyMsg("e"))
	require.Contains(t, messages(cmd), tea.Msg(EditRequestedMsg{
		Table: "users", RowID: "k1aaaaaaaaaaaaaaaaaaaaa", Column: "email", Value: "ada@example.com",
	}))
}

func TestReferenceCellOffersPreview(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(mouse(60, 1, tea.MouseActionPress, tea.MouseButtonRight))
	require.Contains(t, m.menu.View(), "View document")
	_, cmd := m.Update(keyMsg("v"))
	require.Contains(t, messages(cmd), tea.Msg(PreviewRequestedMsg{Table: "teams", DocumentID: "k9tttttttttttttttttttttt"}))

	m = newUsersGrid(t)
	_, cmd = m.Update(keyMsg("enter"))
	require.Equal(t, []tea.Msg{PreviewRequestedMsg{Table: "users", DocumentID: "k1aaaaaaaaaaaaaaaaaaaaa"}}, messages(cmd))
}

func TestClickingIDCellOpensPreview(t *testing.T) {
	m := newUsersGrid(t)
	m, cmd := m.Update(mouse(10, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	require.Equal(t, []tea.Msg{PreviewRequestedMsg{Table: "users", DocumentID: "k2aaaaaaaaaaaaaaaaaaaaa"}}, messages(cmd))
	require.Equal(t, 1, m.cursorRow)
	require.False(t, m.MenuOpen())

	_, cmd = m.Update(mouse(40, 2, tea.MouseActionPress, tea.MouseButtonLeft))
	require.Empty(t, messages(cmd))
}

func TestKeyboardReorderAndResize(t *testing.T) {
	m := newUsersGrid(t)
	m, _ = m.Update(keyMsg("right"))
	m, _ = m.Update(keyMsg(">"))
	require.Equal(t, []string{"_id", "teamId", "email", "_creationTime"}, m.Order())
	require.Equal(t, 2, m.cursorCol)

	m, _ = m.Update(keyMsg("["))
	require.Equal(t, 152, m.Width("email"))
	for range 20 {
		m, _ = m.Update(keyMsg("["))
	}
	require.Equal(t, MinColumnWidth, m.Width("email"))
	m, _ = m.Update(keyMsg("]"))
	require.Equal(t, MinColumnWidth+CellWidth, m.Width("email"))
}

func TestLoadMoreOnlyOnceInFlight(t *testing.T) {
	m := newUsersGrid(t)
	m, cmd := m.Update(keyMsg("L"))
	require.Equal(t, []tea.Msg{LoadMoreMsg{Table: "users"}}, messages(cmd))
	require.Contains(t, m.footerLine(), "Loading more")

	m, cmd = m.Update(keyMsg("L"))
	require.Nil(t, cmd)

	m.AppendDocuments([]schema.Document{{"_id": "k4aaaaaaaaaaaaaaaaaaaaa"}}, true)
	require.Len(t, m.Documents(), 4)
	require.Contains(t, m.footerLine(), "4 documents")
	require.Contains(t, m.footerLine(), "schema: enforced")

	_, cmd = m.Update(keyMsg("L"))
	require.Nil(t, cmd)
}

func TestHeaderHoverShowsSchemaPanel(t *testing.T) {
	m := newUsersGrid(t)
	m, cmd := m.Update(mouse(60, 0, tea.MouseActionMotion, tea.MouseButtonNone))
	require.NotNil(t, cmd)
	require.Contains(t, m.headerLine(), "⋮⋮")

	m, _ = m.Update(cmd())
	layers := m.Layers()
	require.Len(t, layers, 1)
	require.Contains(t, layers[0].Content, "References: teams")
	require.Equal(t, 52, layers[0].X)

	m, _ = m.Update(mouse(60, 5, tea.MouseActionMotion, tea.MouseButtonNone))
	require.Empty(t, m.Layers())
}

func TestVisibleFieldsReconcileOrder(t *testing.T) {
	m := newUsersGrid(t)
	m.order = Reorder(m.order, "_creationTime", "_id", Left)
	m.SetVisibleFields([]string{"_creationTime", "email"})
	require.Equal(t, []string{"_creationTime", "email"}, m.Order())

	m.SetVisibleFields(nil)
	require.Equal(t, []string{"_creationTime", "email", "_id", "teamId"}, m.Order())
}

func TestSpacerFillsWideContainer(t *testing.T) {
	m := newUsersGrid(t)
	m.SetLayout(Layout{Width: 150, Height: 10, ScreenWidth: 150, ScreenHeight: 30})
	line := m.headerLine()
	require.Equal(t, 150, len([]rune(stripForWidth(line))))
}

func TestEmptyStateSkeleton(t *testing.T) {
	m := New(Options{NoColor: true, Palette: theme.Current()})
	m.SetTable("empty", "", nil)
	m.SetDocuments(nil, true)
	require.Equal(t, 10, m.skeletonRowCount())

	view := m.View()
	require.Contains(t, view, "This table is empty")
	require.GreaterOrEqual(t, strings.Count(view, "\n")+1, 11)

	m.SetLayout(Layout{Width: 100, Height: 40})
	require.Equal(t, 38+5, m.skeletonRowCount())

	_, cmd := m.Update(keyMsg("n"))
	require.Nil(t, cmd, "unfocused grid ignores keys")
	m.SetFocused(true)
	_, cmd = m.Update(keyMsg("n"))
	require.Equal(t, []tea.Msg{AddDocumentRequestedMsg{Table: "empty"}}, messages(cmd))
}

func TestNoTablePlaceholder(t *testing.T) {
	m := New(Options{Palette: theme.Current()})
	require.Contains(t, m.View(), "Select a table")
}

func stripForWidth(s string) string {
	var out []rune
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			out = append(out, r)
		}
	}
	return string(out)
}
