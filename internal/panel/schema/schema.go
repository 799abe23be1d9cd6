// Package schema models table shapes and derives the per-column metadata
// shown in the data table headers.
package schema

import "strings"

const (
	IDField           = "_id"
	CreationTimeField = "_creationTime"

	ShapeObject = "Object"
	ShapeID     = "Id"
)

// Shape describes the value type of a field. Object shapes carry Fields,
// Id shapes may name the table they reference, and wrapper shapes (arrays,
// optionals) carry the inner Shape.
type Shape struct {
	Type      string       `json:"type,omitempty" yaml:"type,omitempty"`
	TableName string       `json:"tableName,omitempty" yaml:"tableName,omitempty"`
	Fields    []TableField `json:"fields,omitempty" yaml:"fields,omitempty"`
	Shape     *Shape       `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// TableField is one named field of a table or object shape.
type TableField struct {
	FieldName string `json:"fieldName" yaml:"fieldName"`
	Optional  bool   `json:"optional" yaml:"optional"`
	Shape     Shape  `json:"shape" yaml:"shape"`
}

// TableSchema is the ordered field list of one table.
type TableSchema struct {
	Table  string       `json:"table,omitempty" yaml:"table,omitempty"`
	Fields []TableField `json:"fields" yaml:"fields"`
}

// TableDefinition is one entry of the table list.
type TableDefinition struct {
	Name          string       `json:"name" yaml:"name"`
	DocumentCount int64        `json:"documentCount,omitempty" yaml:"documentCount,omitempty"`
	Schema        *TableSchema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Tables maps table names to their definitions.
type Tables map[string]TableDefinition

// Document is one row: field name to value.
type Document map[string]any

// ID returns the document's _id rendered as a string.
func (d Document) ID() string {
	switch v := d[IDField].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return strings.TrimSpace(anyString(v))
	}
}

// IsSystemField reports whether name is a field every document carries.
func IsSystemField(name string) bool {
	return name == IDField || name == CreationTimeField
}

// Columns returns the natural column order for a table: _id, the schema
// fields in schema order, then _creationTime.
func Columns(s *TableSchema) []string {
	cols := []string{IDField}
	if s != nil {
		for _, f := range s.Fields {
			if IsSystemField(f.FieldName) || f.FieldName == "" {
				continue
			}
			cols = append(cols, f.FieldName)
		}
	}
	return append(cols, CreationTimeField)
}

// ColumnsFromDocuments derives a column order when no schema is available:
// system fields plus every key seen, in first-seen order.
func ColumnsFromDocuments(docs []Document) []string {
	seen := map[string]bool{IDField: true, CreationTimeField: true}
	cols := []string{IDField}
	for _, doc := range docs {
		for _, key := range sortedKeys(doc) {
			if !seen[key] {
				seen[key] = true
				cols = append(cols, key)
			}
		}
	}
	return append(cols, CreationTimeField)
}
