package cmd

import (
	"fmt"
	"slices"
	"strings"
)

// FlagEnum is a string flag value limited to Allowed. Input is matched
// case-insensitively and stored as the allowed spelling.
type FlagEnum struct {
	Allowed []string
	Value   string
}

func NewEnum(allowed []string, d string) *FlagEnum {
	return &FlagEnum{Allowed: allowed, Value: d}
}

func (a *FlagEnum) String() string {
	return a.Value
}

func (a *FlagEnum) Set(p string) error {
	i := slices.IndexFunc(a.Allowed, func(opt string) bool {
		return strings.EqualFold(opt, strings.TrimSpace(p))
	})
	if i < 0 {
		return fmt.Errorf("invalid value %q, must be one of %s", p, a.Choices())
	}
	a.Value = a.Allowed[i]
	return nil
}

func (a *FlagEnum) Type() string {
	return "string"
}

// Choices renders the allowed values as "a|b|c" for help text.
func (a *FlagEnum) Choices() string {
	return strings.Join(a.Allowed, "|")
}
