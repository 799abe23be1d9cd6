package err

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports input rejected before any request is made, such as
// an invalid table name or a name that collides with an existing table.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DataError is a failure reported by the admin backend. Data holds the
// structured payload the backend attached to the error, when there is one.
type DataError struct {
	Msg  string
	Data any
	Err  error
}

func (e *DataError) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "request failed"
	}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// Message extracts the text shown inline for a failed fetch or mutation.
// The structured payload of a DataError wins, then the error's own message,
// then the raw formatted value.
func Message(e error) string {
	if e == nil {
		return ""
	}
	var dataErr *DataError
	if errors.As(e, &dataErr) {
		if msg := dataMessage(dataErr.Data); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(e.Error()); msg != "" {
		return msg
	}
	return fmt.Sprintf("%v", e)
}

func dataMessage(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"message", "error", "code"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	b, err := json.Marshal(data)
	if err != nil || string(b) == "null" || string(b) == "{}" {
		return ""
	}
	return string(b)
}

// TryConvertErrorToAttrs turns an error into alternating key/value pairs for
// slog's variadic arguments. A DataError contributes its structured payload;
// any other error is json-decoded from its text. Nil means nothing decoded.
func TryConvertErrorToAttrs(e error) []any {
	if e == nil {
		return nil
	}
	var result map[string]any
	var dataErr *DataError
	if errors.As(e, &dataErr) {
		result, _ = dataErr.Data.(map[string]any)
	}
	if result == nil && json.Unmarshal([]byte(e.Error()), &result) != nil {
		return nil
	}
	keys := make([]string, 0, len(result))
	for k := range result {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(result)*2)
	for _, k := range keys {
		attrs = append(attrs, k, result[k])
	}
	return attrs
}

// ErrorsBucket collects several failures under one message.
type ErrorsBucket struct {
	Msg    string
	Errors []error
}

func (e *ErrorsBucket) Error() string {
	s := e.Msg
	for _, inner := range e.Errors {
		s += "\n\t" + inner.Error()
	}
	return s
}

func (e *ErrorsBucket) Unwrap() []error {
	return e.Errors
}
