package hooks

import (
	"context"
	"sync"
)

// ListLoader fetches one page of T for a key.
type ListLoader[P comparable, T any] func(ctx context.Context, key Scoped[P]) ([]T, error)

// ListFetcher is a Query whose key also tracks login state and the current
// Library, so that either change refetches.
type ListFetcher[P comparable, T any] struct {
	*Query[Scoped[P], []T]
	env Env

	mu     sync.Mutex
	params P
	set    bool
}

func NewListFetcher[P comparable, T any](env Env, load ListLoader[P, T]) *ListFetcher[P, T] {
	return &ListFetcher[P, T]{
		Query: NewQuery(Loader[Scoped[P], []T](load), []T{}),
		env:   env,
	}
}

// Set changes the filter, page or parent.
func (f *ListFetcher[P, T]) Set(params P) {
	f.mu.Lock()
	f.params, f.set = params, true
	f.mu.Unlock()

	f.Query.Set(ScopeOf(f.env, params))
}

// Sync re-reads the environment, refetching when login or Library changed.
func (f *ListFetcher[P, T]) Sync() {
	f.mu.Lock()
	params, set := f.params, f.set
	f.mu.Unlock()
	if !set {
		return
	}
	f.Query.Set(ScopeOf(f.env, params))
}

// Fetch is Set followed by Wait.
func (f *ListFetcher[P, T]) Fetch(ctx context.Context, params P) (State[[]T], error) {
	f.Set(params)
	return f.Wait(ctx)
}
