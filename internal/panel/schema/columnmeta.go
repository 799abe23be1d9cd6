package schema

import "strings"

// ColumnMeta is the derived, read-only description of one column.
type ColumnMeta struct {
	TypeLabel string `json:"typeLabel" yaml:"typeLabel"`
	Optional  bool   `json:"optional" yaml:"optional"`
	LinkTable string `json:"linkTable,omitempty" yaml:"linkTable,omitempty"`
}

// BuildColumnMeta derives metadata for every column of s. The _id and
// _creationTime entries are always present and never optional. A nil schema
// yields only the system entries.
func BuildColumnMeta(s *TableSchema) map[string]ColumnMeta {
	meta := map[string]ColumnMeta{
		IDField:           {TypeLabel: "id"},
		CreationTimeField: {TypeLabel: "timestamp"},
	}
	if s == nil {
		return meta
	}
	for _, f := range s.Fields {
		if f.FieldName == "" || IsSystemField(f.FieldName) {
			continue
		}
		meta[f.FieldName] = ColumnMeta{
			TypeLabel: typeLabel(f.Shape),
			Optional:  f.Optional,
			LinkTable: linkTable(f.Shape),
		}
	}
	return meta
}

func typeLabel(shape Shape) string {
	switch {
	case strings.EqualFold(shape.Type, ShapeObject) && len(shape.Fields) > 0:
		return "object"
	case strings.EqualFold(shape.Type, ShapeID):
		if shape.TableName != "" {
			return "id<" + shape.TableName + ">"
		}
		return "id"
	case shape.Shape != nil && shape.Shape.TableName != "":
		return "id<" + shape.Shape.TableName + ">"
	case shape.Type == "":
		return "string"
	default:
		return shape.Type
	}
}

// linkTable finds the table a column references: the shape itself, a
// wrapped shape, or the first nested object field that names one.
func linkTable(shape Shape) string {
	if shape.TableName != "" {
		return shape.TableName
	}
	if shape.Shape != nil && shape.Shape.TableName != "" {
		return shape.Shape.TableName
	}
	for _, f := range shape.Fields {
		if f.Shape.TableName != "" {
			return f.Shape.TableName
		}
	}
	return ""
}
