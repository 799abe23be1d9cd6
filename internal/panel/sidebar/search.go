package sidebar

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Search returns the names containing query, ignoring case, sorted
// case-insensitively. An empty query matches everything.
func Search(names []string, query string) []string {
	q := fold.String(strings.TrimSpace(query))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if q == "" || strings.Contains(fold.String(n), q) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := fold.String(out[i]), fold.String(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}
