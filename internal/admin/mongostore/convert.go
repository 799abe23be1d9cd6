package mongostore

import (
	"fmt"
	"strings"
	"time"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// toDocument converts a stored document into display values: ObjectIDs
// become hex strings, dates become RFC 3339 text.
func toDocument(d bson.D) schema.Document {
	doc := make(schema.Document, len(d))
	for _, e := range d {
		doc[e.Key] = toValue(e.Value)
	}
	return doc
}

func toValue(v any) any {
	switch val := v.(type) {
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case bson.D:
		return map[string]any(toDocument(val))
	case bson.M:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = toValue(inner)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = toValue(inner)
		}
		return out
	case int32:
		return int64(val)
	case bson.Binary:
		return val.Data
	default:
		return val
	}
}

// idValue turns a displayed id back into the stored form.
func idValue(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idsFilter(ids []string) bson.D {
	values := make(bson.A, len(ids))
	for i, id := range ids {
		values[i] = idValue(id)
	}
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: values}}}}
}

var mongoOps = map[string]string{
	admin.OpNeq: "$ne",
	admin.OpGt:  "$gt",
	admin.OpGte: "$gte",
	admin.OpLt:  "$lt",
	admin.OpLte: "$lte",
}

// filterDocument translates the active clauses into a query document.
func filterDocument(f admin.FilterExpression) bson.D {
	filter := bson.D{}
	for _, c := range f.Active() {
		value := c.Value
		if c.Field == schema.IDField {
			if s, ok := value.(string); ok {
				value = idValue(s)
			}
		}
		if c.Op == admin.OpEq {
			filter = append(filter, bson.E{Key: c.Field, Value: value})
			continue
		}
		op, ok := mongoOps[c.Op]
		if !ok {
			continue
		}
		filter = append(filter, bson.E{Key: c.Field, Value: bson.D{{Key: op, Value: value}}})
	}
	return filter
}

// inferSchema derives a field list from a sample. Fields keep first-seen
// order and are optional when any sampled document lacks them.
func inferSchema(table string, sample []bson.D) *schema.TableSchema {
	ts := &schema.TableSchema{Table: table, Fields: []schema.TableField{}}
	index := map[string]int{}
	seen := map[string]int{}
	for _, d := range sample {
		for _, e := range d {
			if schema.IsSystemField(e.Key) {
				continue
			}
			seen[e.Key]++
			shape := shapeOf(e.Value)
			i, ok := index[e.Key]
			if !ok {
				index[e.Key] = len(ts.Fields)
				ts.Fields = append(ts.Fields, schema.TableField{FieldName: e.Key, Shape: shape})
				continue
			}
			if ts.Fields[i].Shape.Type != shape.Type && shape.Type != "Null" {
				if ts.Fields[i].Shape.Type == "Null" {
					ts.Fields[i].Shape = shape
				} else {
					ts.Fields[i].Shape = schema.Shape{Type: "Any"}
				}
			}
		}
	}
	for i, f := range ts.Fields {
		if seen[f.FieldName] < len(sample) {
			ts.Fields[i].Optional = true
		}
	}
	return ts
}

func shapeOf(v any) schema.Shape {
	switch val := v.(type) {
	case nil, bson.Null:
		return schema.Shape{Type: "Null"}
	case string:
		return schema.Shape{Type: "String"}
	case bool:
		return schema.Shape{Type: "Boolean"}
	case int32, int64, int:
		return schema.Shape{Type: "Int64"}
	case float64, bson.Decimal128:
		return schema.Shape{Type: "Float64"}
	case bson.ObjectID:
		return schema.Shape{Type: schema.ShapeID}
	case bson.DateTime:
		return schema.Shape{Type: "String"}
	case bson.Binary:
		return schema.Shape{Type: "Bytes"}
	case bson.A:
		if len(val) > 0 {
			inner := shapeOf(val[0])
			return schema.Shape{Type: "Array", Shape: &inner}
		}
		return schema.Shape{Type: "Array"}
	case bson.D:
		fields := inferSchema("", []bson.D{val}).Fields
		return schema.Shape{Type: schema.ShapeObject, Fields: fields}
	default:
		return schema.Shape{Type: strings.TrimPrefix(fmt.Sprintf("%T", v), "bson.")}
	}
}

// toBSON prepares a document for insertion.
func toBSON(doc schema.Document) bson.D {
	out := make(bson.D, 0, len(doc))
	for _, k := range sortedKeys(doc) {
		v := doc[k]
		if k == schema.IDField {
			if s, ok := v.(string); ok {
				v = idValue(s)
			}
		}
		out = append(out, bson.E{Key: k, Value: v})
	}
	return out
}
