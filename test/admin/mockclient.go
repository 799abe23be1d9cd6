package admin

import (
	"context"
	"sync"
)

// Call records one invocation of the mock client.
type Call struct {
	Kind string
	Name string
	Args map[string]any
}

type MockClient struct {
	QueryMock    func(ctx context.Context, name string, args map[string]any) (any, error)
	MutationMock func(ctx context.Context, name string, args map[string]any) (any, error)

	mu    sync.Mutex
	calls []Call
}

func (m *MockClient) Query(ctx context.Context, name string, args map[string]any) (any, error) {
	m.record("query", name, args)
	if m.QueryMock == nil {
		return nil, nil
	}
	return m.QueryMock(ctx, name, args)
}

func (m *MockClient) Mutation(ctx context.Context, name string, args map[string]any) (any, error) {
	m.record("mutation", name, args)
	if m.MutationMock == nil {
		return nil, nil
	}
	return m.MutationMock(ctx, name, args)
}

func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockClient) record(kind, name string, args map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Kind: kind, Name: name, Args: args})
}
