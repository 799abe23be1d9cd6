package sqlstore

import (
	"strings"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

var typeGroups = []struct {
	names []string
	shape string
}{
	{[]string{"bool", "boolean"}, "Boolean"},
	{[]string{"tinyint", "smallint", "mediumint", "bigint", "integer", "int", "serial", "bigserial"}, "Int64"},
	{[]string{"real", "float", "double", "numeric", "decimal"}, "Float64"},
	{[]string{"json", "jsonb"}, schema.ShapeObject},
	{[]string{"blob", "bytea", "binary", "varbinary", "longblob", "mediumblob"}, "Bytes"},
	{[]string{"char", "varchar", "character", "text", "tinytext", "mediumtext", "longtext", "clob", "uuid", "enum", "date", "time", "timestamp", "datetime"}, "String"},
}

// shapeForType maps a declared column type to a value shape. An empty
// declared type (allowed by SQLite) is Any.
func shapeForType(declared string) string {
	t := strings.ToLower(strings.TrimSpace(declared))
	if t == "" {
		return "Any"
	}
	if i := strings.IndexAny(t, "( "); i > 0 {
		t = t[:i]
	}
	for _, group := range typeGroups {
		for _, name := range group.names {
			if t == name {
				return group.shape
			}
		}
	}
	return "String"
}
