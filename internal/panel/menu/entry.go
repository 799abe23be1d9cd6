// Package menu implements the floating context menu used by the data table:
// a list of actions and dividers with mouse and keyboard navigation.
package menu

import tea "github.com/charmbracelet/bubbletea"

// Entry is either a Divider or an Action.
type Entry interface {
	isEntry()
}

// Divider separates groups of actions. It is never selectable.
type Divider struct{}

// Action is a selectable menu item. OnSelect runs when the item is activated;
// the command it returns is dispatched alongside the menu's ClosedMsg.
type Action struct {
	Label       string
	OnSelect    func() tea.Cmd
	Shortcut    string
	Destructive bool
}

func (Divider) isEntry() {}
func (Action) isEntry()  {}

// actionable returns the indices of entries that are Actions.
func actionable(entries []Entry) []int {
	out := make([]int, 0, len(entries))
	for i, e := range entries {
		if _, ok := e.(Action); ok {
			out = append(out, i)
		}
	}
	return out
}
