package sqlstore

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/convex-panel/panelctl/internal/admin"
	panelerr "github.com/convex-panel/panelctl/internal/err"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "panel.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, admin.CreateTable(ctx, s, nil, "notes", ""))
	_, err := s.db.ExecContext(ctx, `ALTER TABLE notes ADD COLUMN body TEXT`)
	require.NoError(t, err)

	tables, err := admin.ListTables(ctx, s, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, admin.SortedTableNames(tables))

	schemas, err := admin.Schemas(ctx, s, "")
	require.NoError(t, err)
	require.Contains(t, schemas, "notes")
	assert.Equal(t, []schema.TableField{
		{FieldName: "body", Optional: true, Shape: schema.Shape{Type: "String"}},
	}, schemas["notes"].Fields)

	require.NoError(t, admin.AddDocuments(ctx, s, "notes", "", []schema.Document{
		{"body": "one"}, {"body": "two"}, {"body": "three"},
	}))

	first, err := admin.Page(ctx, s, admin.PageRequest{Table: "notes", NumItems: 2})
	require.NoError(t, err)
	require.Len(t, first.Page, 2)
	assert.False(t, first.IsDone)
	assert.Equal(t, "2", first.ContinueCursor)

	second, err := admin.Page(ctx, s, admin.PageRequest{Table: "notes", NumItems: 2, Cursor: first.ContinueCursor})
	require.NoError(t, err)
	require.Len(t, second.Page, 1)
	assert.True(t, second.IsDone)

	doc := first.Page[0]
	assert.Regexp(t, `^k[0-9a-f]{32}$`, doc.ID())
	assert.Equal(t, float64(1700000000000), doc[schema.CreationTimeField])

	require.NoError(t, admin.PatchFields(ctx, s, "notes", "", []string{doc.ID()}, map[string]any{"body": "edited"}))
	fetched, err := admin.DocumentByID(ctx, s, "notes", "", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "edited", fetched["body"])

	require.NoError(t, admin.DeleteDocuments(ctx, s, "notes", "", []string{doc.ID()}))
	_, err = admin.DocumentByID(ctx, s, "notes", "", doc.ID())
	assert.ErrorIs(t, err, admin.ErrNotFound)
}

func TestSQLiteFiltersAndReferences(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, admin.CreateTable(ctx, s, nil, "teams", ""))
	_, err := s.db.ExecContext(ctx, `CREATE TABLE members (
		_id TEXT PRIMARY KEY,
		_creationTime DOUBLE PRECISION,
		age INTEGER NOT NULL,
		team_id TEXT REFERENCES teams(_id)
	)`)
	require.NoError(t, err)

	schemas, err := admin.Schemas(ctx, s, "")
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	meta := schema.BuildColumnMeta(schemas["members"])
	assert.Equal(t, schema.ColumnMeta{TypeLabel: "Int64"}, meta["age"])
	assert.Equal(t, schema.ColumnMeta{TypeLabel: "id<teams>", Optional: true, LinkTable: "teams"}, meta["team_id"])

	require.NoError(t, admin.AddDocuments(ctx, s, "members", "", []schema.Document{
		{"age": 17}, {"age": 30}, {"age": 45},
	}))
	f := admin.FilterExpression{Clauses: []admin.FilterClause{
		{Field: "age", Op: admin.OpGte, Value: 30, Enabled: true},
	}}
	page, err := admin.Page(ctx, s, admin.PageRequest{Table: "members", Filters: &f})
	require.NoError(t, err)
	assert.Len(t, page.Page, 2)
	assert.True(t, page.IsDone)
}

func TestSQLiteRejectsUnknownColumns(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, admin.CreateTable(ctx, s, nil, "notes", ""))

	err := admin.AddDocuments(ctx, s, "notes", "", []schema.Document{{"missing": 1}})
	require.Error(t, err)
	err = admin.PatchFields(ctx, s, "notes", "", []string{"k1"}, map[string]any{"_id": "x"})
	require.Error(t, err)
	err = admin.CreateTable(ctx, s, nil, "_reserved", "")
	require.Error(t, err)
	_, err = s.Query(ctx, "nope", nil)
	assert.ErrorIs(t, err, admin.ErrUnsupportedFunction)
}

func TestSQLiteInsertReportsEveryRejectedDocument(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	require.NoError(t, admin.CreateTable(ctx, s, nil, "notes", ""))
	_, err := s.db.ExecContext(ctx, `ALTER TABLE notes ADD COLUMN body TEXT`)
	require.NoError(t, err)

	err = admin.AddDocuments(ctx, s, "notes", "", []schema.Document{
		{"body": "kept back"}, {"title": "x"}, {"body": "also kept back"}, {"author": "y"},
	})
	var bucket *panelerr.ErrorsBucket
	require.ErrorAs(t, err, &bucket)
	assert.Equal(t, "2 of 4 documents rejected by notes", bucket.Msg)
	require.Len(t, bucket.Errors, 2)
	assert.Contains(t, bucket.Errors[0].Error(), "document 2:")
	assert.Contains(t, bucket.Errors[1].Error(), "document 4:")
	var verr *panelerr.ValidationError
	require.ErrorAs(t, err, &verr)

	// Nothing is written when any document is rejected.
	page, err := admin.Page(ctx, s, admin.PageRequest{Table: "notes", NumItems: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Page)
}

func TestPostgresIntrospection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s, err := New(db, DriverPostgres, nil)
	require.NoError(t, err)
	d := dialects[DriverPostgres]

	mock.ExpectQuery(regexp.QuoteMeta(d.tablesSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users"))
	mock.ExpectQuery(regexp.QuoteMeta(d.columnsSQL)).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "nullable", "pk"}).
			AddRow("id", "uuid", 0, 1).
			AddRow("email", "character varying", 0, 0).
			AddRow("team_id", "integer", 1, 0))
	mock.ExpectQuery(regexp.QuoteMeta(d.foreignKeySQL)).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name"}).AddRow("team_id", "teams"))

	schemas, err := admin.Schemas(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, []schema.TableField{
		{FieldName: "id", Shape: schema.Shape{Type: "String"}},
		{FieldName: "email", Shape: schema.Shape{Type: "String"}},
		{FieldName: "team_id", Optional: true, Shape: schema.Shape{Type: schema.ShapeID, TableName: "teams"}},
	}, schemas["users"].Fields)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteUsesNumberedPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s, err := New(db, DriverPostgres, nil)
	require.NoError(t, err)
	d := dialects[DriverPostgres]

	mock.ExpectQuery(regexp.QuoteMeta(d.columnsSQL)).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "nullable", "pk"}).AddRow("id", "uuid", 0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(d.foreignKeySQL)).WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "table_name"}))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE "id" IN ($1, $2)`)).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, admin.DeleteDocuments(context.Background(), s, "users", "", []string{"a", "b"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectHelpers(t *testing.T) {
	assert.Equal(t, "`a``b`", dialects[DriverMySQL].quote("a`b"))
	assert.Equal(t, `"x"`, dialects[DriverSQLite].quote("x"))
	assert.Equal(t, "$3, $4", dialects[DriverPostgres].placeholders(3, 2))
	assert.Equal(t, "?, ?", dialects[DriverMySQL].placeholders(1, 2))
	assert.Equal(t, "CREATE TABLE `t` (`_id` VARCHAR(64) PRIMARY KEY, `_creationTime` DOUBLE PRECISION)",
		dialects[DriverMySQL].createTableSQL("t"))
	_, err := lookupDialect("oracle")
	require.Error(t, err)
}

func TestShapeForType(t *testing.T) {
	tests := map[string]string{
		"":                         "Any",
		"INTEGER":                  "Int64",
		"double precision":         "Float64",
		"VARCHAR(255)":             "String",
		"boolean":                  "Boolean",
		"jsonb":                    schema.ShapeObject,
		"bytea":                    "Bytes",
		"timestamp with time zone": "String",
		"geometry":                 "String",
	}
	for declared, want := range tests {
		assert.Equal(t, want, shapeForType(declared), declared)
	}
}
