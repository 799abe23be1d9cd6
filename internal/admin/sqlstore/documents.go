package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/google/uuid"
)

var sqlOps = map[string]string{
	admin.OpEq:  "=",
	admin.OpNeq: "<>",
	admin.OpGt:  ">",
	admin.OpGte: ">=",
	admin.OpLt:  "<",
	admin.OpLte: "<=",
}

// page reads one page ordered by the id column. The cursor is the row offset.
// Clauses on known columns become WHERE conditions; the rest are evaluated
// over the fetched rows.
func (s *Store) page(ctx context.Context, args map[string]any) (admin.PageResult, error) {
	table := admin.ArgString(args, "table")
	info, err := s.describe(ctx, table)
	if err != nil {
		return admin.PageResult{}, err
	}
	filters, err := admin.DecodeFilters(admin.ArgString(args, "filters"))
	if err != nil {
		return admin.PageResult{}, &panelerr.ValidationError{Field: "filters", Reason: err.Error()}
	}
	numItems, cursor := admin.ParsePagination(args)
	if numItems <= 0 {
		numItems = 50
	}
	offset := 0
	if cursor != "" {
		if offset, err = strconv.Atoi(cursor); err != nil || offset < 0 {
			return admin.PageResult{}, &panelerr.ValidationError{Field: "cursor", Reason: fmt.Sprintf("invalid cursor %q", cursor)}
		}
	}

	idCol := info.idColumn()
	var where []string
	var params []any
	var residual admin.FilterExpression
	for _, c := range filters.Active() {
		col := c.Field
		if col == schema.IDField {
			col = idCol
		}
		op, ok := sqlOps[c.Op]
		if !ok || !info.has(col) || c.Value == nil {
			residual.Clauses = append(residual.Clauses, c)
			continue
		}
		params = append(params, c.Value)
		where = append(where, fmt.Sprintf("%s %s %s", s.dialect.quote(col), op, s.dialect.placeholder(len(params))))
	}

	query := "SELECT * FROM " + s.dialect.quote(table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s LIMIT %d OFFSET %d", s.dialect.quote(idCol), numItems+1, offset)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return admin.PageResult{}, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()
	docs, err := scanDocuments(rows, idCol)
	if err != nil {
		return admin.PageResult{}, fmt.Errorf("read %s: %w", table, err)
	}

	result := admin.PageResult{IsDone: len(docs) <= numItems}
	if !result.IsDone {
		docs = docs[:numItems]
		result.ContinueCursor = strconv.Itoa(offset + numItems)
	}
	result.Page = make([]schema.Document, 0, len(docs))
	for _, d := range docs {
		if residual.Matches(d) {
			result.Page = append(result.Page, d)
		}
	}
	return result, nil
}

func scanDocuments(rows *sql.Rows, idCol string) ([]schema.Document, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var docs []schema.Document
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		doc := make(schema.Document, len(cols)+1)
		for i, col := range cols {
			doc[col] = normalizeValue(values[i])
		}
		if _, ok := doc[schema.IDField]; !ok {
			doc[schema.IDField] = fmt.Sprint(doc[idCol])
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return val
	}
}

// bindValue stores objects and arrays as JSON text.
func bindValue(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any, schema.Document:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return v, nil
}

func (s *Store) createTable(ctx context.Context, table string) error {
	if err := schema.ValidateTableName(table); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.createTableSQL(table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

func (s *Store) patch(ctx context.Context, table string, ids []string, fields map[string]any) error {
	if len(ids) == 0 || len(fields) == 0 {
		return nil
	}
	info, err := s.describe(ctx, table)
	if err != nil {
		return err
	}
	var sets []string
	var params []any
	for _, name := range sortedKeys(fields) {
		if schema.IsSystemField(name) || !info.has(name) {
			return &panelerr.ValidationError{Field: name, Reason: fmt.Sprintf("table %q has no editable column %q", table, name)}
		}
		v, err := bindValue(fields[name])
		if err != nil {
			return err
		}
		params = append(params, v)
		sets = append(sets, fmt.Sprintf("%s = %s", s.dialect.quote(name), s.dialect.placeholder(len(params))))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s IN (%s)",
		s.dialect.quote(table), strings.Join(sets, ", "),
		s.dialect.quote(info.idColumn()), s.dialect.placeholders(len(params)+1, len(ids)))
	for _, id := range ids {
		params = append(params, id)
	}
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	info, err := s.describe(ctx, table)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		s.dialect.quote(table), s.dialect.quote(info.idColumn()), s.dialect.placeholders(1, len(ids)))
	params := make([]any, len(ids))
	for i, id := range ids {
		params[i] = id
	}
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// insert adds documents in one transaction, filling _id and _creationTime
// when the table has those columns and the document does not. Every
// document is checked before anything is written.
func (s *Store) insert(ctx context.Context, table string, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	info, err := s.describe(ctx, table)
	if err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(docs))
	var rejected []error
	for i, doc := range docs {
		row, err := s.insertRow(info, table, doc)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("document %d: %w", i+1, err))
			continue
		}
		rows = append(rows, row)
	}
	if len(rejected) > 0 {
		return &panelerr.ErrorsBucket{
			Msg:    fmt.Sprintf("%d of %d documents rejected by %s", len(rejected), len(docs), table),
			Errors: rejected,
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, row := range rows {
		cols := sortedKeys(row)
		params := make([]any, len(cols))
		quoted := make([]string, len(cols))
		for i, c := range cols {
			if params[i], err = bindValue(row[c]); err != nil {
				return err
			}
			quoted[i] = s.dialect.quote(c)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			s.dialect.quote(table), strings.Join(quoted, ", "), s.dialect.placeholders(1, len(cols)))
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *Store) insertRow(info tableInfo, table string, doc schema.Document) (map[string]any, error) {
	row := make(map[string]any, len(doc)+2)
	for k, v := range doc {
		if !info.has(k) {
			return nil, &panelerr.ValidationError{Field: k, Reason: fmt.Sprintf("table %q has no column %q", table, k)}
		}
		row[k] = v
	}
	if _, ok := row[schema.IDField]; !ok && info.has(schema.IDField) {
		row[schema.IDField] = newDocumentID()
	}
	if _, ok := row[schema.CreationTimeField]; !ok && info.has(schema.CreationTimeField) {
		row[schema.CreationTimeField] = float64(s.now().UnixMilli())
	}
	if len(row) == 0 {
		return nil, &panelerr.ValidationError{Field: "documents", Reason: "document has no fields"}
	}
	return row, nil
}

// newDocumentID mints an id that passes the document id shape check.
func newDocumentID() string {
	return "k" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
