package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/convex-panel/panelctl/internal/admin"
	"github.com/convex-panel/panelctl/internal/panel/schema"
)

// Deployment is an in-memory deployment served through a MockClient. Tables
// hold documents in insertion order; cursors are offsets.
type Deployment struct {
	mu      sync.Mutex
	Tables  map[string][]schema.Document
	Schemas map[string]*schema.TableSchema
	// FailOn names a function that fails with ErrRejected.
	FailOn string
	nextID  int
}

// ErrRejected is returned for the function named by FailOn.
var ErrRejected = errors.New("rejected by deployment")

func NewDeployment(tables map[string][]schema.Document) *Deployment {
	if tables == nil {
		tables = map[string][]schema.Document{}
	}
	return &Deployment{Tables: tables, Schemas: map[string]*schema.TableSchema{}}
}

// Docs returns a copy of the documents of table.
func (d *Deployment) Docs(table string) []schema.Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.Tables[table])
}

func (d *Deployment) Client() *MockClient {
	return &MockClient{QueryMock: d.query, MutationMock: d.mutation}
}

func (d *Deployment) query(_ context.Context, name string, args map[string]any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name == d.FailOn {
		return nil, ErrRejected
	}
	switch name {
	case admin.FuncTableMapping:
		out := map[string]any{}
		for t, docs := range d.Tables {
			out[t] = map[string]any{"name": t, "documentCount": len(docs)}
		}
		return out, nil
	case admin.FuncGetSchemas:
		out := map[string]any{}
		for t, s := range d.Schemas {
			out[t] = s
		}
		return out, nil
	case admin.FuncPaginatedTableDocuments:
		filters, err := admin.DecodeFilters(admin.ArgString(args, "filters"))
		if err != nil {
			return nil, err
		}
		var docs []schema.Document
		for _, doc := range d.Tables[admin.ArgString(args, "table")] {
			if filters.Matches(doc) {
				docs = append(docs, doc)
			}
		}
		numItems, cursor := admin.ParsePagination(args)
		start, _ := strconv.Atoi(cursor)
		start = min(start, len(docs))
		end := min(len(docs), start+numItems)
		return admin.PageResult{
			Page:           slices.Clone(docs[start:end]),
			IsDone:         end >= len(docs),
			ContinueCursor: strconv.Itoa(end),
		}, nil
	}
	return nil, admin.Unsupported(name)
}

func (d *Deployment) mutation(_ context.Context, name string, args map[string]any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if name == d.FailOn {
		return nil, ErrRejected
	}
	table := admin.ArgString(args, "table")
	switch name {
	case admin.FuncCreateTable:
		if _, ok := d.Tables[table]; ok {
			return nil, fmt.Errorf("table %s exists", table)
		}
		d.Tables[table] = []schema.Document{}
	case admin.FuncDeleteDocuments:
		ids := admin.ArgStrings(args, "ids")
		d.Tables[table] = slices.DeleteFunc(d.Tables[table], func(doc schema.Document) bool {
			return slices.Contains(ids, doc.ID())
		})
	case admin.FuncPatchDocumentsFields:
		ids := admin.ArgStrings(args, "ids")
		for _, doc := range d.Tables[table] {
			if slices.Contains(ids, doc.ID()) {
				for k, v := range admin.ArgMap(args, "fields") {
					doc[k] = v
				}
			}
		}
	case admin.FuncAddDocument:
		for _, doc := range admin.ArgDocuments(args, "documents") {
			d.nextID++
			doc[schema.IDField] = fmt.Sprintf("k%024d", d.nextID)
			d.Tables[table] = append(d.Tables[table], doc)
		}
	default:
		return nil, admin.Unsupported(name)
	}
	return nil, nil
}
