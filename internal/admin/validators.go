package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

var validatorShapes = map[string]string{
	"string":  "String",
	"number":  "Float64",
	"float64": "Float64",
	"bigint":  "Int64",
	"int64":   "Int64",
	"boolean": "Boolean",
	"bytes":   "Bytes",
	"null":    "Null",
	"any":     "Any",
	"literal": "Literal",
	"record":  "Record",
	"array":   "Array",
	"union":   "Union",
	"object":  schema.ShapeObject,
	"id":      schema.ShapeID,
}

type schemaDocument struct {
	Tables []struct {
		TableName    string          `json:"tableName"`
		DocumentType json.RawMessage `json:"documentType"`
	} `json:"tables"`
	SchemaValidation bool `json:"schemaValidation"`
}

type validator struct {
	Type      string          `json:"type"`
	TableName string          `json:"tableName"`
	Value     json.RawMessage `json:"value"`
}

// ParseSchemaDocument converts a deployment schema document into table
// schemas. Field order follows the document. An empty document yields no
// schemas.
func ParseSchemaDocument(doc string) (map[string]*schema.TableSchema, error) {
	out := map[string]*schema.TableSchema{}
	if strings.TrimSpace(doc) == "" {
		return out, nil
	}
	var parsed schemaDocument
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}
	for _, t := range parsed.Tables {
		ts := &schema.TableSchema{Table: t.TableName}
		if len(t.DocumentType) > 0 && !bytes.Equal(t.DocumentType, []byte("null")) {
			shape, err := parseValidator(t.DocumentType)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", t.TableName, err)
			}
			ts.Fields = shape.Fields
		}
		out[t.TableName] = ts
	}
	return out, nil
}

func parseValidator(raw json.RawMessage) (schema.Shape, error) {
	if len(raw) == 0 {
		return schema.Shape{}, nil
	}
	var v validator
	if err := json.Unmarshal(raw, &v); err != nil {
		return schema.Shape{}, err
	}
	shape := schema.Shape{Type: validatorShapes[v.Type], TableName: v.TableName}
	if shape.Type == "" {
		shape.Type = v.Type
	}
	switch v.Type {
	case "object":
		fields, err := parseObjectFields(v.Value)
		if err != nil {
			return schema.Shape{}, err
		}
		shape.Fields = fields
	case "array":
		inner, err := parseValidator(v.Value)
		if err != nil {
			return schema.Shape{}, err
		}
		shape.Shape = &inner
	case "union":
		var members []json.RawMessage
		if err := json.Unmarshal(v.Value, &members); err != nil {
			return schema.Shape{}, err
		}
		// A union of a single reference is shown as that reference.
		for _, m := range members {
			inner, err := parseValidator(m)
			if err != nil {
				return schema.Shape{}, err
			}
			if inner.TableName != "" {
				shape.Shape = &inner
				break
			}
		}
	}
	return shape, nil
}

// parseObjectFields walks the object tokens so field order survives.
func parseObjectFields(raw json.RawMessage) ([]schema.TableField, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("object validator: expected an object, got %v", tok)
	}
	var fields []schema.TableField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var entry struct {
			FieldType json.RawMessage `json:"fieldType"`
			Optional  bool            `json:"optional"`
		}
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		shape, err := parseValidator(entry.FieldType)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields = append(fields, schema.TableField{FieldName: name, Optional: entry.Optional, Shape: shape})
	}
	return fields, nil
}

// SchemaValidationEnabled reports the schemaValidation flag of a document.
func SchemaValidationEnabled(doc string) bool {
	var parsed schemaDocument
	if json.Unmarshal([]byte(doc), &parsed) != nil {
		return false
	}
	return parsed.SchemaValidation
}
