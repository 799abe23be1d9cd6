package admin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/panel/schema"
	admintest "github.com/convex-panel/panelctl/test/admin"
)

func TestListTablesAcceptsHostedMapping(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(_ context.Context, name string, _ map[string]any) (any, error) {
			require.Equal(t, admin.FuncTableMapping, name)
			return map[string]any{"10001": "users", "10002": "teams"}, nil
		},
	}
	tables, err := admin.ListTables(context.Background(), c, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"teams", "users"}, admin.SortedTableNames(tables))
	assert.Nil(t, c.Calls()[0].Args["componentId"])
}

func TestListTablesAcceptsDefinitions(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			return map[string]any{
				"users": map[string]any{"documentCount": 3},
			}, nil
		},
	}
	tables, err := admin.ListTables(context.Background(), c, "comp")
	require.NoError(t, err)
	assert.Equal(t, schema.TableDefinition{Name: "users", DocumentCount: 3}, tables["users"])
	assert.Equal(t, "comp", c.Calls()[0].Args["componentId"])
}

func TestSchemasParsesHostedDocument(t *testing.T) {
	doc := `{"tables":[{"tableName":"messages","documentType":{"type":"object","value":{
		"body":{"fieldType":{"type":"string"},"optional":false},
		"author":{"fieldType":{"type":"id","tableName":"users"},"optional":true},
		"tags":{"fieldType":{"type":"array","value":{"type":"string"}},"optional":false}
	}}}],"schemaValidation":true}`
	c := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			return map[string]any{"active": doc}, nil
		},
	}
	schemas, err := admin.Schemas(context.Background(), c, "")
	require.NoError(t, err)
	s := schemas["messages"]
	require.NotNil(t, s)
	want := []schema.TableField{
		{FieldName: "body", Shape: schema.Shape{Type: "String"}},
		{FieldName: "author", Optional: true, Shape: schema.Shape{Type: schema.ShapeID, TableName: "users"}},
		{FieldName: "tags", Shape: schema.Shape{Type: "Array", Shape: &schema.Shape{Type: "String"}}},
	}
	if diff := cmp.Diff(want, s.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, admin.SchemaValidationEnabled(doc))
}

func TestSchemasAcceptsTableMap(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			return map[string]any{
				"users": map[string]any{"fields": []any{
					map[string]any{"fieldName": "email", "optional": false, "shape": map[string]any{"type": "String"}},
				}},
			}, nil
		},
	}
	schemas, err := admin.Schemas(context.Background(), c, "")
	require.NoError(t, err)
	require.Contains(t, schemas, "users")
	assert.Equal(t, "users", schemas["users"].Table)
	assert.Equal(t, "email", schemas["users"].Fields[0].FieldName)
}

func TestSchemasEmptyDocument(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			return map[string]any{"active": ""}, nil
		},
	}
	schemas, err := admin.Schemas(context.Background(), c, "")
	require.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestPageSendsPaginationAndFilters(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(context.Context, string, map[string]any) (any, error) {
			return map[string]any{
				"page":           []any{map[string]any{"_id": "a"}},
				"isDone":         false,
				"continueCursor": "2",
			}, nil
		},
	}
	f := admin.IDFilter("a")
	page, err := admin.Page(context.Background(), c, admin.PageRequest{Table: "users", Filters: &f})
	require.NoError(t, err)
	assert.Equal(t, "2", page.ContinueCursor)
	require.Len(t, page.Page, 1)

	args := c.Calls()[0].Args
	numItems, cursor := admin.ParsePagination(args)
	assert.Equal(t, 50, numItems)
	assert.Empty(t, cursor)
	decoded, err := admin.DecodeFilters(admin.ArgString(args, "filters"))
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
}

func TestDocumentByID(t *testing.T) {
	c := &admintest.MockClient{
		QueryMock: func(_ context.Context, _ string, args map[string]any) (any, error) {
			f, err := admin.DecodeFilters(admin.ArgString(args, "filters"))
			require.NoError(t, err)
			if f.Clauses[0].Value == "known" {
				return admin.PageResult{Page: []schema.Document{{"_id": "known"}}, IsDone: true}, nil
			}
			return admin.PageResult{IsDone: true}, nil
		},
	}
	doc, err := admin.DocumentByID(context.Background(), c, "users", "", "known")
	require.NoError(t, err)
	assert.Equal(t, "known", doc.ID())

	_, err = admin.DocumentByID(context.Background(), c, "users", "", "missing")
	assert.ErrorIs(t, err, admin.ErrNotFound)
}

func TestCreateTableFallsBack(t *testing.T) {
	primary := errors.New("primary failed")
	c := &admintest.MockClient{
		MutationMock: func(context.Context, string, map[string]any) (any, error) {
			return nil, primary
		},
	}
	var fallbackArgs map[string]any
	fallback := func(_ context.Context, name string, args map[string]any) (any, error) {
		assert.Equal(t, admin.FuncCreateTable, name)
		fallbackArgs = args
		return nil, nil
	}
	require.NoError(t, admin.CreateTable(context.Background(), c, fallback, "notes", ""))
	assert.Equal(t, "notes", fallbackArgs["table"])

	failing := func(context.Context, string, map[string]any) (any, error) {
		return nil, errors.New("fallback failed")
	}
	err := admin.CreateTable(context.Background(), c, failing, "notes", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, primary)

	assert.ErrorIs(t, admin.CreateTable(context.Background(), c, nil, "notes", ""), primary)
}

func TestDeleteDocumentsRequiresIDs(t *testing.T) {
	c := &admintest.MockClient{}
	require.Error(t, admin.DeleteDocuments(context.Background(), c, "users", "", nil))
	assert.Empty(t, c.Calls())

	require.NoError(t, admin.DeleteDocuments(context.Background(), c, "users", "", []string{"a"}))
	assert.Equal(t, []string{"a"}, admin.ArgStrings(c.Calls()[0].Args, "ids"))
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"s":    "x",
		"n":    float64(3),
		"list": []any{"a", "b"},
		"docs": []any{map[string]any{"_id": "1"}, "skip"},
	}
	assert.Equal(t, "x", admin.ArgString(args, "s"))
	assert.Equal(t, "", admin.ArgString(args, "missing"))
	assert.Equal(t, 3, admin.ArgInt(args, "n", 0))
	assert.Equal(t, 7, admin.ArgInt(args, "missing", 7))
	assert.Equal(t, []string{"a", "b"}, admin.ArgStrings(args, "list"))
	assert.Len(t, admin.ArgDocuments(args, "docs"), 1)
}
