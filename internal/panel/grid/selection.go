package grid

import "slices"

// IsAllSelected is true when every loaded row id is selected. An empty page
// is never "all selected".
func IsAllSelected(selected, rowIDs []string) bool {
	if len(rowIDs) == 0 {
		return false
	}
	for _, id := range rowIDs {
		if !slices.Contains(selected, id) {
			return false
		}
	}
	return true
}

// ToggleAll returns the empty set when everything is selected, otherwise
// every loaded row id.
func ToggleAll(selected, rowIDs []string) []string {
	if IsAllSelected(selected, rowIDs) {
		return []string{}
	}
	return slices.Clone(rowIDs)
}

// ToggleRow adds or removes id.
func ToggleRow(selected []string, id string) []string {
	if slices.Contains(selected, id) {
		return slices.DeleteFunc(slices.Clone(selected), func(s string) bool { return s == id })
	}
	return append(slices.Clone(selected), id)
}
