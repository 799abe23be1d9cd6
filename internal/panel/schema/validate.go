package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	panelerr "github.com/convex-panel/panelctl/internal/err"
)

// MaxTableNameLength bounds table identifiers.
const MaxTableNameLength = 64

var identifierPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateTableName checks name against the identifier rules for tables.
func ValidateTableName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &panelerr.ValidationError{Field: "name", Reason: "table name is required"}
	case strings.HasPrefix(name, "_"):
		return &panelerr.ValidationError{Field: "name", Reason: "table names starting with \"_\" are reserved"}
	case len(name) > MaxTableNameLength:
		return &panelerr.ValidationError{
			Field:  "name",
			Reason: fmt.Sprintf("table name must be at most %d characters", MaxTableNameLength),
		}
	case !identifierPattern.MatchString(name):
		return &panelerr.ValidationError{
			Field:  "name",
			Reason: "table name must start with a letter and contain only letters, digits and underscores",
		}
	}
	return nil
}

// CheckCollision rejects a name that already exists in tables.
func CheckCollision(name string, tables Tables) error {
	if _, exists := tables[name]; exists {
		return &panelerr.ValidationError{Field: "name", Reason: fmt.Sprintf("table %q already exists", name)}
	}
	return nil
}

// Names returns the table names in tables, sorted.
func (t Tables) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(doc Document) []string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func anyString(v any) string {
	return fmt.Sprint(v)
}

// ParseDocument reads a new document from JSON text. System fields are
// assigned by the database and may not be supplied.
func ParseDocument(s string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &doc); err != nil || doc == nil {
		return nil, errors.New("document must be a JSON object")
	}
	for _, name := range sortedKeys(doc) {
		if IsSystemField(name) {
			return nil, fmt.Errorf("%s is set by the database", name)
		}
	}
	return doc, nil
}
