package admin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

// Filter operators.
const (
	OpEq  = "eq"
	OpNeq = "neq"
	OpGt  = "gt"
	OpGte = "gte"
	OpLt  = "lt"
	OpLte = "lte"
)

// FilterClause restricts one field.
type FilterClause struct {
	Field   string `json:"field"`
	Op      string `json:"op"`
	Value   any    `json:"value"`
	Enabled bool   `json:"enabled"`
}

// FilterExpression is the set of clauses, all of which must hold.
type FilterExpression struct {
	Clauses []FilterClause `json:"clauses"`
}

// IDFilter matches exactly one document id.
func IDFilter(id string) FilterExpression {
	return FilterExpression{Clauses: []FilterClause{
		{Field: schema.IDField, Op: OpEq, Value: id, Enabled: true},
	}}
}

// Active returns the enabled clauses.
func (f FilterExpression) Active() []FilterClause {
	var out []FilterClause
	for _, c := range f.Clauses {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// EncodeFilters produces the base64 JSON string the paginated query expects.
func EncodeFilters(f FilterExpression) (string, error) {
	if f.Clauses == nil {
		f.Clauses = []FilterClause{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encoding filters: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeFilters parses an encoded filter string. An empty string is no filter.
func DecodeFilters(s string) (FilterExpression, error) {
	var f FilterExpression
	if strings.TrimSpace(s) == "" {
		return f, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("decoding filters: %w", err)
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("decoding filters: %w", err)
	}
	for _, c := range f.Clauses {
		switch c.Op {
		case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		default:
			return f, fmt.Errorf("unsupported filter operator %q", c.Op)
		}
	}
	return f, nil
}

// Matches evaluates the active clauses against doc. Backends that cannot push
// a filter down use it to filter in memory.
func (f FilterExpression) Matches(doc schema.Document) bool {
	for _, c := range f.Active() {
		if !matchClause(doc[c.Field], c) {
			return false
		}
	}
	return true
}

func matchClause(v any, c FilterClause) bool {
	cmp, ok := compare(v, c.Value)
	switch c.Op {
	case OpEq:
		return ok && cmp == 0
	case OpNeq:
		return !ok || cmp != 0
	case OpGt:
		return ok && cmp > 0
	case OpGte:
		return ok && cmp >= 0
	case OpLt:
		return ok && cmp < 0
	case OpLte:
		return ok && cmp <= 0
	}
	return false
}

// compare orders two scalar values of the same kind.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case nil:
		if b == nil {
			return 0, true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// clauseOperators is ordered so two character operators match first.
var clauseOperators = []struct{ token, op string }{
	{"!=", OpNeq}, {">=", OpGte}, {"<=", OpLte}, {"=", OpEq}, {">", OpGt}, {"<", OpLt},
}

// ParseClause reads "field<op>value", for example age>=18 or name=Ada. The
// value is JSON when it parses as JSON and a plain string otherwise.
func ParseClause(s string) (FilterClause, error) {
	for _, o := range clauseOperators {
		idx := strings.Index(s, o.token)
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(s[:idx])
		raw := strings.TrimSpace(s[idx+len(o.token):])
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		return FilterClause{Field: field, Op: o.op, Value: value, Enabled: true}, nil
	}
	return FilterClause{}, fmt.Errorf("invalid filter %q, expected <field><op><value> with op one of = != > >= < <=", s)
}
