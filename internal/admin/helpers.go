package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/schema"
)

// PageRequest selects one page of a table.
type PageRequest struct {
	Table       string
	ComponentID string
	Filters     *FilterExpression
	NumItems    int
	Cursor      string
}

// ListTables returns the tables of a component.
func ListTables(ctx context.Context, c Client, componentID string) (schema.Tables, error) {
	res, err := c.Query(ctx, FuncTableMapping, map[string]any{"componentId": componentArg(componentID)})
	if err != nil {
		return nil, err
	}
	raw, ok := res.(map[string]any)
	if !ok && res != nil {
		if err := Decode(res, &raw); err != nil {
			return nil, err
		}
	}
	tables := schema.Tables{}
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			// The hosted mapping is table number to table name.
			tables[val] = schema.TableDefinition{Name: val}
		default:
			var def schema.TableDefinition
			if err := Decode(val, &def); err != nil {
				return nil, fmt.Errorf("table %q: %w", key, err)
			}
			if def.Name == "" {
				def.Name = key
			}
			tables[def.Name] = def
		}
	}
	return tables, nil
}

// Schemas returns the table schemas of a component. It accepts either a
// table-to-schema map or the hosted {"active": "<json>"} document.
func Schemas(ctx context.Context, c Client, componentID string) (map[string]*schema.TableSchema, error) {
	res, err := c.Query(ctx, FuncGetSchemas, map[string]any{"componentId": componentArg(componentID)})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return map[string]*schema.TableSchema{}, nil
	}
	if m, ok := res.(map[string]any); ok {
		if active, ok := m["active"]; ok {
			s, _ := active.(string)
			return ParseSchemaDocument(s)
		}
	}
	var decoded map[string]*schema.TableSchema
	if err := Decode(res, &decoded); err != nil {
		return nil, err
	}
	for name, s := range decoded {
		if s != nil && s.Table == "" {
			s.Table = name
		}
	}
	return decoded, nil
}

// Page fetches one page of documents.
func Page(ctx context.Context, c Client, req PageRequest) (PageResult, error) {
	var filters any
	if req.Filters != nil {
		encoded, err := EncodeFilters(*req.Filters)
		if err != nil {
			return PageResult{}, err
		}
		filters = encoded
	}
	var cursor any
	if req.Cursor != "" {
		cursor = req.Cursor
	}
	numItems := req.NumItems
	if numItems <= 0 {
		numItems = 50
	}
	res, err := c.Query(ctx, FuncPaginatedTableDocuments, map[string]any{
		"table":       req.Table,
		"componentId": componentArg(req.ComponentID),
		"filters":     filters,
		"paginationOpts": map[string]any{
			"numItems": numItems,
			"cursor":   cursor,
		},
	})
	if err != nil {
		return PageResult{}, err
	}
	if page, ok := res.(PageResult); ok {
		return page, nil
	}
	var page PageResult
	if err := Decode(res, &page); err != nil {
		return PageResult{}, err
	}
	return page, nil
}

// DocumentByID fetches a single document with an _id filter and a page size
// of one.
func DocumentByID(ctx context.Context, c Client, table, componentID, id string) (schema.Document, error) {
	f := IDFilter(id)
	page, err := Page(ctx, c, PageRequest{Table: table, ComponentID: componentID, Filters: &f, NumItems: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Page) == 0 {
		return nil, ErrNotFound
	}
	return page.Page[0], nil
}

// CreateTableArgs are the createTable mutation arguments.
func CreateTableArgs(table, componentID string) map[string]any {
	return map[string]any{"table": table, "componentId": componentArg(componentID)}
}

// CreateTable creates an empty table. When the client path fails and a
// fallback is given, the fallback is tried before giving up.
func CreateTable(ctx context.Context, c Client, fallback MutationFunc, table, componentID string) error {
	args := CreateTableArgs(table, componentID)
	_, err := c.Mutation(ctx, FuncCreateTable, args)
	if err == nil || fallback == nil {
		return err
	}
	if _, ferr := fallback(ctx, FuncCreateTable, args); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}

// PatchFields sets fields on the given documents.
func PatchFields(ctx context.Context, c Client, table, componentID string, ids []string, fields map[string]any) error {
	_, err := c.Mutation(ctx, FuncPatchDocumentsFields, map[string]any{
		"table":       table,
		"componentId": componentArg(componentID),
		"ids":         ids,
		"fields":      fields,
	})
	return err
}

// DeleteDocuments removes the given documents.
func DeleteDocuments(ctx context.Context, c Client, table, componentID string, ids []string) error {
	if len(ids) == 0 {
		return &panelerr.ValidationError{Field: "ids", Reason: "at least one document id is required"}
	}
	_, err := c.Mutation(ctx, FuncDeleteDocuments, map[string]any{
		"table":       table,
		"componentId": componentArg(componentID),
		"ids":         ids,
	})
	return err
}

// AddDocuments inserts documents into table.
func AddDocuments(ctx context.Context, c Client, table, componentID string, docs []schema.Document) error {
	_, err := c.Mutation(ctx, FuncAddDocument, map[string]any{
		"table":       table,
		"componentId": componentArg(componentID),
		"documents":   docs,
	})
	return err
}

// SortedTableNames lists table names alphabetically.
func SortedTableNames(t schema.Tables) []string {
	names := t.Names()
	sort.Strings(names)
	return names
}

// ArgString reads a string argument.
func ArgString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ArgStrings reads a list of strings.
func ArgStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// ArgInt reads an integer argument, accepting JSON numbers.
func ArgInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// ArgMap reads an object argument.
func ArgMap(args map[string]any, key string) map[string]any {
	switch v := args[key].(type) {
	case map[string]any:
		return v
	case schema.Document:
		return v
	}
	return nil
}

// ArgDocuments reads a list of documents.
func ArgDocuments(args map[string]any, key string) []schema.Document {
	switch v := args[key].(type) {
	case []schema.Document:
		return v
	case []map[string]any:
		out := make([]schema.Document, 0, len(v))
		for _, d := range v {
			out = append(out, d)
		}
		return out
	case []any:
		out := make([]schema.Document, 0, len(v))
		for _, d := range v {
			if m, ok := d.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// ParsePagination reads paginationOpts.
func ParsePagination(args map[string]any) (numItems int, cursor string) {
	opts := ArgMap(args, "paginationOpts")
	return ArgInt(opts, "numItems", 50), ArgString(opts, "cursor")
}
