// Package normalizers tidies the help text of commands written as indented
// raw string literals.
package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc trims the surrounding blank space and trailing spaces of each
// line of a long description.
func LongDesc(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// Examples removes the indentation shared by all example lines and indents
// the block by Indentation. Relative indentation is kept.
func Examples(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common < 0 {
		return ""
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = Indentation + strings.TrimRight(line[common:], " \t")
	}
	return strings.Join(lines, "\n")
}
