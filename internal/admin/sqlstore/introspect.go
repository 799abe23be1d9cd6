package sqlstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/convex-panel/panelctl/internal/panel/schema"
	"golang.org/x/sync/errgroup"
)

type column struct {
	name     string
	declared string
	nullable bool
	pk       bool
	refTable string
}

// tableInfo is the introspected layout of one table.
type tableInfo struct {
	name    string
	columns []column
}

func (t tableInfo) has(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

func (t tableInfo) lookup(name string) (column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// idColumn is the column documents are addressed by: _id when present, then
// the first primary key column, then the first column.
func (t tableInfo) idColumn() string {
	if t.has(schema.IDField) {
		return schema.IDField
	}
	for _, c := range t.columns {
		if c.pk {
			return c.name
		}
	}
	if len(t.columns) > 0 {
		return t.columns[0].name
	}
	return ""
}

func (t tableInfo) tableSchema() *schema.TableSchema {
	ts := &schema.TableSchema{Table: t.name, Fields: []schema.TableField{}}
	for _, c := range t.columns {
		if schema.IsSystemField(c.name) {
			continue
		}
		shape := schema.Shape{Type: shapeForType(c.declared)}
		if c.refTable != "" {
			shape = schema.Shape{Type: schema.ShapeID, TableName: c.refTable}
		}
		ts.Fields = append(ts.Fields, schema.TableField{FieldName: c.name, Optional: c.nullable, Shape: shape})
	}
	return ts
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.tablesSQL)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) tableMapping(ctx context.Context) (map[string]any, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = schema.TableDefinition{Name: name}
	}
	return out, nil
}

// schemas introspects every table with bounded concurrency.
func (s *Store) schemas(ctx context.Context) (map[string]*schema.TableSchema, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	var mu sync.Mutex
	out := make(map[string]*schema.TableSchema, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(introspectionLimit)
	for _, name := range names {
		g.Go(func() error {
			info, err := s.describe(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = info.tableSchema()
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// describe reads the columns and foreign keys of one table.
func (s *Store) describe(ctx context.Context, table string) (tableInfo, error) {
	info := tableInfo{name: table}
	rows, err := s.db.QueryContext(ctx, s.dialect.columnsSQL, table)
	if err != nil {
		return info, fmt.Errorf("describe %s: %w", table, err)
	}
	for rows.Next() {
		var c column
		var nullable, pk int
		if err := rows.Scan(&c.name, &c.declared, &nullable, &pk); err != nil {
			rows.Close()
			return info, fmt.Errorf("describe %s: %w", table, err)
		}
		c.nullable = nullable != 0
		c.pk = pk != 0
		info.columns = append(info.columns, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return info, fmt.Errorf("describe %s: %w", table, err)
	}
	if len(info.columns) == 0 {
		return info, fmt.Errorf("table %q does not exist", table)
	}

	fks, err := s.db.QueryContext(ctx, s.dialect.foreignKeySQL, table)
	if err != nil {
		return info, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	defer fks.Close()
	for fks.Next() {
		var col, ref string
		if err := fks.Scan(&col, &ref); err != nil {
			return info, fmt.Errorf("foreign keys of %s: %w", table, err)
		}
		for i := range info.columns {
			if info.columns[i].name == col {
				info.columns[i].refTable = ref
			}
		}
	}
	return info, fks.Err()
}
