// Package admin defines the two-method admin client every backend implements
// and typed helpers for the system functions the panel calls.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/convex-panel/panelctl/internal/panel/schema"
)

// System function names.
const (
	FuncTableMapping            = "_system/frontend/tableMapping"
	FuncGetSchemas              = "_system/frontend/getSchemas"
	FuncPaginatedTableDocuments = "_system/frontend/paginatedTableDocuments"
	FuncCreateTable             = "_system/frontend/createTable"
	FuncPatchDocumentsFields    = "_system/frontend/patchDocumentsFields"
	FuncDeleteDocuments         = "_system/frontend/deleteDocuments"
	FuncAddDocument             = "_system/frontend/addDocument"
)

var (
	// ErrNotFound is returned when a document lookup matches nothing.
	ErrNotFound = errors.New("document not found")
	// ErrUnsupportedFunction is returned by backends for names they do not serve.
	ErrUnsupportedFunction = errors.New("unsupported function")
)

// Client performs queries and mutations against a deployment.
type Client interface {
	Query(ctx context.Context, name string, args map[string]any) (any, error)
	Mutation(ctx context.Context, name string, args map[string]any) (any, error)
}

// MutationFunc is a standalone mutation path, used as a fallback when the
// client's own mutation fails.
type MutationFunc func(ctx context.Context, name string, args map[string]any) (any, error)

// PageResult is one page of documents.
type PageResult struct {
	Page           []schema.Document `json:"page"`
	IsDone         bool              `json:"isDone"`
	ContinueCursor string            `json:"continueCursor"`
}

// Unsupported builds the error backends return for unknown function names.
func Unsupported(name string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFunction, name)
}

// Decode converts a loosely typed result into out through JSON.
func Decode(v any, out any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decoding result: %w", err)
	}
	return nil
}

func componentArg(componentID string) any {
	if componentID == "" {
		return nil
	}
	return componentID
}
