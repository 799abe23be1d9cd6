package admin

import (
	"testing"

	"github.com/convex-panel/panelctl/internal/panel/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFilters(t *testing.T) {
	f := FilterExpression{Clauses: []FilterClause{
		{Field: "age", Op: OpGte, Value: float64(18), Enabled: true},
		{Field: "name", Op: OpEq, Value: "x", Enabled: false},
	}}
	encoded, err := EncodeFilters(f)
	require.NoError(t, err)
	decoded, err := DecodeFilters(encoded)
	require.NoError(t, err)
	assert.Equal(t, f, decoded)
	assert.Len(t, decoded.Active(), 1)

	empty, err := DecodeFilters("  ")
	require.NoError(t, err)
	assert.Empty(t, empty.Clauses)
}

func TestDecodeFiltersRejectsUnknownOperator(t *testing.T) {
	encoded, err := EncodeFilters(FilterExpression{Clauses: []FilterClause{{Field: "a", Op: "like"}}})
	require.NoError(t, err)
	_, err = DecodeFilters(encoded)
	require.Error(t, err)

	_, err = DecodeFilters("not base64!")
	require.Error(t, err)
}

func TestFilterMatches(t *testing.T) {
	doc := schema.Document{"_id": "a", "age": float64(30), "name": "ada", "admin": true}
	tests := []struct {
		name   string
		clause FilterClause
		want   bool
	}{
		{"eq string", FilterClause{Field: "name", Op: OpEq, Value: "ada"}, true},
		{"neq string", FilterClause{Field: "name", Op: OpNeq, Value: "bob"}, true},
		{"gt number across kinds", FilterClause{Field: "age", Op: OpGt, Value: 18}, true},
		{"lte number", FilterClause{Field: "age", Op: OpLte, Value: float64(29)}, false},
		{"lt string", FilterClause{Field: "name", Op: OpLt, Value: "b"}, true},
		{"eq bool", FilterClause{Field: "admin", Op: OpEq, Value: true}, true},
		{"mismatched kinds never equal", FilterClause{Field: "age", Op: OpEq, Value: "30"}, false},
		{"missing field neq", FilterClause{Field: "nope", Op: OpNeq, Value: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.clause.Enabled = true
			f := FilterExpression{Clauses: []FilterClause{tt.clause}}
			assert.Equal(t, tt.want, f.Matches(doc))
		})
	}

	disabled := FilterExpression{Clauses: []FilterClause{{Field: "name", Op: OpEq, Value: "zzz"}}}
	assert.True(t, disabled.Matches(doc))
}

func TestParseClause(t *testing.T) {
	c, err := ParseClause("age>=18")
	require.NoError(t, err)
	assert.Equal(t, FilterClause{Field: "age", Op: OpGte, Value: float64(18), Enabled: true}, c)

	c, err = ParseClause("name = Ada")
	require.NoError(t, err)
	assert.Equal(t, FilterClause{Field: "name", Op: OpEq, Value: "Ada", Enabled: true}, c)

	c, err = ParseClause(`done!=true`)
	require.NoError(t, err)
	assert.Equal(t, OpNeq, c.Op)
	assert.Equal(t, true, c.Value)

	_, err = ParseClause("=x")
	assert.Error(t, err)
	_, err = ParseClause("nothing")
	assert.Error(t, err)
}
