// Package format turns document values into the strings and color tokens the
// data browser displays.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/convex-panel/panelctl/internal/theme"
)

// Unset is shown for absent values.
const Unset = "unset"

// ObjectPlaceholder is shown when an object cannot be encoded.
const ObjectPlaceholder = "[object]"

// TimestampLayout renders dates in the panel's locale style.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Value converts any cell value into its display string. It never panics.
func Value(value any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ObjectPlaceholder
		}
	}()

	switch v := value.(type) {
	case nil:
		return Unset
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case time.Time:
		return v.Local().Format(TimestampLayout)
	case *time.Time:
		if v == nil {
			return Unset
		}
		return v.Local().Format(TimestampLayout)
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Unset
		}
		return objectString(value)
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return objectString(value)
	default:
		return fmt.Sprint(value)
	}
}

// Number formats a float the way a JSON-speaking dashboard does: integers
// without a fraction, no exponent for ordinary magnitudes.
func Number(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func objectString(value any) string {
	b, err := json.Marshal(value)
	if err != nil {
		return ObjectPlaceholder
	}
	return string(b)
}

// Color returns the token a value is painted with: numbers and booleans
// stand out with the warning token, everything else uses the primary text.
func Color(value any) theme.Token {
	switch value.(type) {
	case bool, float32, float64, json.Number,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return theme.ColorWarning
	default:
		return theme.ColorTextPrimary
	}
}
