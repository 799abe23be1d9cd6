package log

import (
	"context"
	"log/slog"
	"strings"
)

type requestLogContextKey struct{}

// RequestLogContext carries metadata attached to every admin request log.
type RequestLogContext struct {
	CommandPath string
	CommandVerb string
	Backend     string
	Table       string
	ComponentID string
	Function    string
	RequestID   string
}

var RequestLogContextKey = requestLogContextKey{}

// WithRequestLogContext merges the non-empty fields of update into ctx.
func WithRequestLogContext(ctx context.Context, update RequestLogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	current := RequestLogContextFromContext(ctx)
	merge(&current.CommandPath, update.CommandPath)
	merge(&current.CommandVerb, update.CommandVerb)
	merge(&current.Backend, update.Backend)
	merge(&current.Table, update.Table)
	merge(&current.ComponentID, update.ComponentID)
	merge(&current.Function, update.Function)
	merge(&current.RequestID, update.RequestID)
	return context.WithValue(ctx, RequestLogContextKey, current)
}

// RequestLogContextFromContext returns the metadata stored on ctx, if any.
func RequestLogContextFromContext(ctx context.Context) RequestLogContext {
	if ctx == nil {
		return RequestLogContext{}
	}
	if meta, ok := ctx.Value(RequestLogContextKey).(RequestLogContext); ok {
		return meta
	}
	return RequestLogContext{}
}

// RequestLogContextAttrs converts the metadata on ctx into slog attributes,
// skipping empty fields.
func RequestLogContextAttrs(ctx context.Context) []slog.Attr {
	meta := RequestLogContextFromContext(ctx)
	attrs := make([]slog.Attr, 0, 7)
	for _, kv := range [][2]string{
		{"command_path", meta.CommandPath},
		{"command_verb", meta.CommandVerb},
		{"backend", meta.Backend},
		{"table", meta.Table},
		{"component_id", meta.ComponentID},
		{"function", meta.Function},
		{"request_id", meta.RequestID},
	} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			attrs = append(attrs, slog.String(kv[0], v))
		}
	}
	return attrs
}

func merge(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}
