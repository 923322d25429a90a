// Package hooks holds the reactive primitives the domain packages build on.
//
// A Query owns one piece of fetched state. Changing its parameters cancels
// the request in flight and starts a new one; only the result of the latest
// request is ever published.
package hooks

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"library-client/pkg/logger"
)

// State is what a view renders.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Loader fetches T for params. It must honour ctx.
type Loader[P comparable, T any] func(ctx context.Context, params P) (T, error)

type Query[P comparable, T any] struct {
	load Loader[P, T]
	log  zerolog.Logger

	mu        sync.Mutex
	params    P
	hasParams bool
	state     State[T]
	gen       uint64
	cancel    context.CancelFunc
	settled   chan struct{}
	subs      map[int]func(State[T])
	nextSub   int
	closed    bool
}

// NewQuery builds an idle Query holding initial. Nothing is fetched until Set.
func NewQuery[P comparable, T any](load Loader[P, T], initial T) *Query[P, T] {
	settled := make(chan struct{})
	close(settled)
	return &Query[P, T]{
		load:    load,
		log:     logger.Component("hooks"),
		state:   State[T]{Data: initial},
		settled: settled,
		subs:    make(map[int]func(State[T])),
	}
}

// Set changes the watched inputs. Equal params are a no-op.
func (q *Query[P, T]) Set(params P) {
	q.mu.Lock()
	if q.closed || (q.hasParams && q.params == params) {
		q.mu.Unlock()
		return
	}
	q.params = params
	q.hasParams = true
	snap := q.startLocked()
	q.mu.Unlock()

	q.notify(snap)
}

// Refresh refetches the current params.
func (q *Query[P, T]) Refresh() {
	q.mu.Lock()
	if q.closed || !q.hasParams {
		q.mu.Unlock()
		return
	}
	snap := q.startLocked()
	q.mu.Unlock()

	q.notify(snap)
}

// Params returns the current inputs.
func (q *Query[P, T]) Params() (P, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.params, q.hasParams
}

func (q *Query[P, T]) startLocked() State[T] {
	if q.cancel != nil {
		q.cancel()
	}
	q.gen++
	gen, params := q.gen, q.params

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	if !q.state.Loading {
		q.settled = make(chan struct{})
	}
	q.state.Loading = true
	q.state.Err = nil

	go q.run(ctx, gen, params)
	return q.state
}

func (q *Query[P, T]) run(ctx context.Context, gen uint64, params P) {
	data, err := q.load(ctx, params)

	q.mu.Lock()
	if q.closed || gen != q.gen {
		q.mu.Unlock()
		q.log.Debug().Uint64("generation", gen).Msg("discarding stale result")
		return
	}

	q.cancel()
	q.cancel = nil
	if err != nil {
		q.state.Err = err
	} else {
		q.state.Data = data
	}
	q.state.Loading = false
	snap, settled := q.state, q.settled
	q.mu.Unlock()

	// Waiters resume only after subscribers saw the settled state.
	q.notify(snap)
	close(settled)
}

// Snapshot returns the current state without waiting.
func (q *Query[P, T]) Snapshot() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Wait blocks until no request is pending and returns the settled state.
func (q *Query[P, T]) Wait(ctx context.Context) (State[T], error) {
	for {
		q.mu.Lock()
		settled := q.settled
		q.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return q.Snapshot(), ctx.Err()
		}

		q.mu.Lock()
		if !q.state.Loading && q.settled == settled {
			snap := q.state
			q.mu.Unlock()
			return snap, nil
		}
		q.mu.Unlock()
	}
}

// Mutate replaces Data with fn(Data). fn must not modify its argument.
func (q *Query[P, T]) Mutate(fn func(T) T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.state.Data = fn(q.state.Data)
	snap := q.state
	q.mu.Unlock()

	q.notify(snap)
}

// Subscribe registers fn for every state change. Call the returned func to stop.
func (q *Query[P, T]) Subscribe(fn func(State[T])) func() {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	q.subs[id] = fn
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
}

// Close abandons any pending request; its result will be dropped.
func (q *Query[P, T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	if q.state.Loading {
		q.state.Loading = false
		close(q.settled)
	}
	clear(q.subs)
}

func (q *Query[P, T]) notify(s State[T]) {
	q.mu.Lock()
	subs := make([]func(State[T]), 0, len(q.subs))
	for _, fn := range q.subs {
		subs = append(subs, fn)
	}
	q.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
