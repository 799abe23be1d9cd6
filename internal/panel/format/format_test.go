package format

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/convex-panel/panelctl/internal/theme"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	long := "this string is comfortably longer than thirty characters"
	var nilMap map[string]any
	var nilPtr *struct{ A int }

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "unset"},
		{"typed nil pointer", nilPtr, "unset"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integer float", float64(42), "42"},
		{"fraction", 3.25, "3.25"},
		{"negative int", -7, "-7"},
		{"int64", int64(1 << 40), "1099511627776"},
		{"json number", json.Number("12.50"), "12.50"},
		{"string", "hello", "hello"},
		{"long string untruncated", long, long},
		{"object", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"nil map", nilMap, "null"},
		{"array", []any{1.0, "two", nil}, `[1,"two",null]`},
		{"struct", struct {
			Name string `json:"name"`
		}{"ada"}, `{"name":"ada"}`},
		{"unencodable field", struct{ C chan int }{make(chan int)}, ObjectPlaceholder},
		{"complex", complex(1, 2), "(1+2i)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Value(tt.value))
		})
	}
}

func TestValueNilEqualsUnset(t *testing.T) {
	var iface any
	require.Equal(t, Value(nil), Value(iface))
	require.Equal(t, Unset, Value(iface))
}

func TestValueCyclicObjectDegrades(t *testing.T) {
	cyclic := map[string]any{"name": "loop"}
	cyclic["self"] = cyclic

	require.NotPanics(t, func() {
		require.Equal(t, ObjectPlaceholder, Value(cyclic))
	})
}

func TestValueDate(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)
	require.Equal(t, "3/5/2024, 2:07:09 PM", Value(ts))
	require.Equal(t, "3/5/2024, 2:07:09 PM", Value(&ts))
}

func TestNumber(t *testing.T) {
	require.Equal(t, "NaN", Number(math.NaN()))
	require.Equal(t, "Infinity", Number(math.Inf(1)))
	require.Equal(t, "-Infinity", Number(math.Inf(-1)))
	require.Equal(t, "0", Number(0))
	require.Equal(t, "1712345678901.5", Number(1712345678901.5))
	require.Equal(t, "1e+21", Number(1e21))
}

func TestColor(t *testing.T) {
	require.Equal(t, theme.ColorWarning, Color(12.5))
	require.Equal(t, theme.ColorWarning, Color(7))
	require.Equal(t, theme.ColorWarning, Color(true))
	require.Equal(t, theme.ColorTextPrimary, Color("a very long string value that keeps going and going"))
	require.Equal(t, theme.ColorTextPrimary, Color(nil))
	require.Equal(t, theme.ColorTextPrimary, Color(map[string]any{}))
}
