package sidebar

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/theme"
	admintest "github.com/convex-panel/panelctl/test/admin"
)

func tablesClient(names ...string) *admintest.MockClient {
	return &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			out := map[string]any{}
			for i, n := range names {
				out[string(rune('0'+i))] = n
			}
			return out, nil
		},
	}
}

// run executes cmd and every command it produces, feeding internal results
// back into the model, and returns the messages meant for the parent.
func run(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case nil:
			continue
		}
		switch msg.(type) {
		case tablesMsg, createdMsg:
			var next tea.Cmd
			m, next = m.Update(msg)
			queue = append(queue, next)
		case spinner.TickMsg:
		default:
			out = append(out, msg)
		}
	}
	return m, out
}

func newLoaded(t *testing.T, client admin.Client, opts ...func(*Options)) Model {
	t.Helper()
	o := Options{Client: client, Palette: theme.Current()}
	for _, f := range opts {
		f(&o)
	}
	m := New(o)
	m.SetFocused(true)
	m, _ = run(m, m.Init())
	return m
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSearchIsCaseInsensitiveAndSorted(t *testing.T) {
	names := []string{"users", "Messages", "audit_log", "UserEvents"}
	assert.Equal(t, []string{"audit_log", "Messages", "UserEvents", "users"}, Search(names, ""))
	assert.Equal(t, []string{"UserEvents", "users"}, Search(names, "USER"))
	assert.Empty(t, Search(names, "zzz"))
}

func TestLoadsTables(t *testing.T) {
	m := newLoaded(t, tablesClient("users", "messages"))
	assert.Equal(t, []string{"messages", "users"}, m.Tables().Names())
	assert.Contains(t, ansi.Strip(m.View()), "messages")
}

func TestStaleTableLoadIgnored(t *testing.T) {
	m := New(Options{Client: tablesClient("a")})
	m.Refresh()
	m.Refresh()
	m, _ = m.Update(tablesMsg{seq: 1, tables: nil, err: errors.New("old")})
	assert.Empty(t, m.loadErr)
	assert.True(t, m.loading)
}

func TestSelectEmitsTableSelected(t *testing.T) {
	m := newLoaded(t, tablesClient("users", "messages"))
	m, _ = m.Update(press("down"))
	m, cmd := m.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, TableSelectedMsg{Name: "users"}, cmd())
	assert.Equal(t, "users", m.Selected())
}

func TestRecentSectionShowsExistingOnly(t *testing.T) {
	m := newLoaded(t, tablesClient("users", "messages", "a", "b", "c", "d"))
	m.SetRecent([]string{"gone", "users", "a", "b", "c", "d", "messages"})
	assert.Equal(t, []string{"users", "a", "b", "c", "d"}, m.Recent())

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Recently viewed")

	m, _ = m.Update(press("/"))
	m = typeText(m, "mess")
	assert.Equal(t, []string{"messages"}, m.items())
	assert.NotContains(t, ansi.Strip(m.View()), "Recently viewed")
}

func TestSearchEscClears(t *testing.T) {
	m := newLoaded(t, tablesClient("users", "messages"))
	m, _ = m.Update(press("/"))
	assert.True(t, m.Capturing())
	m = typeText(m, "us")
	assert.Equal(t, []string{"users"}, m.Matches())
	m, _ = m.Update(press("esc"))
	assert.False(t, m.Capturing())
	assert.Len(t, m.Matches(), 2)
}

func TestCreateValidationKeepsInput(t *testing.T) {
	client := tablesClient("users")
	m := newLoaded(t, client)
	m, _ = m.Update(press("+"))
	require.True(t, m.Creating())

	m = typeText(m, "_bad")
	m, cmd := m.Update(press("enter"))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.CreateError())
	assert.Equal(t, "_bad", m.CreateInput())

	m, _ = m.Update(press("esc"))
	m, _ = m.Update(press("+"))
	m = typeText(m, "users")
	m, cmd = m.Update(press("enter"))
	assert.Nil(t, cmd)
	assert.Contains(t, m.CreateError(), "users")
	assert.Equal(t, "users", m.CreateInput())
	for _, c := range client.Calls() {
		assert.NotEqual(t, "mutation", c.Kind)
	}
}

func TestCreateSuccessRefreshesAndSelects(t *testing.T) {
	names := []string{"users"}
	client := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			out := map[string]any{}
			for _, n := range names {
				out[n] = map[string]any{"name": n}
			}
			return out, nil
		},
		MutationMock: func(_ context.Context, _ string, args map[string]any) (any, error) {
			names = append(names, admin.ArgString(args, "table"))
			return nil, nil
		},
	}
	m := newLoaded(t, client)
	m, _ = m.Update(press("+"))
	m = typeText(m, "orders")
	m, cmd := m.Update(press("enter"))
	require.NotNil(t, cmd)

	m, msgs := run(m, cmd)
	assert.False(t, m.Creating())
	assert.Contains(t, m.Tables(), "orders")
	assert.Equal(t, "orders", m.Selected())
	assert.Contains(t, msgs, tea.Msg(TableSelectedMsg{Name: "orders"}))
}

func TestCreateFailureUsesFallbackThenReportsInline(t *testing.T) {
	client := &admintest.MockClient{
		QueryMock: tablesClient("users").QueryMock,
		MutationMock: func(context.Context, string, map[string]any) (any, error) {
			return nil, errors.New("primary down")
		},
	}
	fallbackCalled := false
	m := newLoaded(t, client, func(o *Options) {
		o.Fallback = func(context.Context, string, map[string]any) (any, error) {
			fallbackCalled = true
			return nil, errors.New("fallback down")
		}
	})
	m, _ = m.Update(press("+"))
	m = typeText(m, "orders")
	m, cmd := m.Update(press("enter"))
	m, _ = run(m, cmd)

	assert.True(t, fallbackCalled)
	assert.True(t, m.Creating())
	assert.Contains(t, m.CreateError(), "primary down")
	assert.Equal(t, "orders", m.CreateInput())
}

func TestEmptyDeploymentPromptsCreate(t *testing.T) {
	m := newLoaded(t, tablesClient())
	view := ansi.Strip(m.View())
	assert.NotContains(t, view, "…")
	text := strings.Join(strings.Fields(strings.ReplaceAll(view, "│", " ")), " ")
	assert.Contains(t, text, "No tables yet. Press + to create one.")
}

func TestInitialLoadAppliesAfterNew(t *testing.T) {
	m := New(Options{Client: tablesClient("messages", "users"), Palette: theme.Current()})
	assert.True(t, m.loading)
	m, _ = run(m, m.Init())
	assert.False(t, m.loading)
	assert.Equal(t, []string{"messages", "users"}, m.Tables().Names())
}

func TestComponentCycle(t *testing.T) {
	var seen []any
	client := &admintest.MockClient{
		QueryMock: func(_ context.Context, _ string, args map[string]any) (any, error) {
			seen = append(seen, args["componentId"])
			return map[string]any{}, nil
		},
	}
	m := newLoaded(t, client, func(o *Options) {
		o.Components = []Component{{ID: "", Name: "app"}, {ID: "c1", Name: "billing"}}
	})
	m, cmd := m.Update(press("C"))
	assert.Equal(t, "c1", m.ComponentID())
	_, msgs := run(m, cmd)
	assert.Contains(t, msgs, tea.Msg(ComponentSelectedMsg{ID: "c1"}))
	assert.Len(t, seen, 2)
}
