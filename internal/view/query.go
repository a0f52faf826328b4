// Package view binds backend operations to the {data, loading, error, refetch}
// state each portal screen renders. It holds no business logic.
package view

import (
	"context"
	"sync"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/client"
)

// State is the snapshot a screen renders.
type State[T any] struct {
	Data    T                `json:"data"`
	Loading bool             `json:"loading"`
	Err     *domain.APIError `json:"error,omitempty"`
}

// Query binds a read operation. It loads once on Mount and again on every
// Refetch. A failed load keeps the previous data.
type Query[T any] struct {
	fetch func(ctx context.Context) (T, error)

	mu      sync.Mutex
	state   State[T]
	mounted bool
	seq     uint64
}

// NewQuery creates a Query over fetch.
func NewQuery[T any](fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{fetch: fetch}
}

// Mount performs the initial load. Later calls return the current state.
func (q *Query[T]) Mount(ctx context.Context) State[T] {
	q.mu.Lock()
	if q.mounted {
		s := q.state
		q.mu.Unlock()
		return s
	}
	q.mounted = true
	q.mu.Unlock()
	return q.Refetch(ctx)
}

// Refetch reloads. When loads overlap only the latest one is applied.
func (q *Query[T]) Refetch(ctx context.Context) State[T] {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.state.Loading = true
	q.state.Err = nil
	q.mu.Unlock()

	data, err := q.fetch(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq != q.seq {
		return q.state
	}
	q.state.Loading = false
	if err != nil {
		q.state.Err = client.Normalize(err)
	} else {
		q.state.Data = data
	}
	return q.state
}

// State returns the current snapshot.
func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Mutation binds a write operation. Errors are stored and returned.
type Mutation[In, Out any] struct {
	run func(ctx context.Context, in In) (Out, error)

	mu    sync.Mutex
	state State[Out]
}

// NewMutation creates a Mutation over run.
func NewMutation[In, Out any](run func(ctx context.Context, in In) (Out, error)) *Mutation[In, Out] {
	return &Mutation[In, Out]{run: run}
}

// Run executes the mutation.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.state.Loading = true
	m.state.Err = nil
	m.mu.Unlock()

	out, err := m.run(ctx, in)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Loading = false
	if err != nil {
		apiErr := client.Normalize(err)
		m.state.Err = apiErr
		var zero Out
		return zero, apiErr
	}
	m.state.Data = out
	return out, nil
}

// Reset clears data and error.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State[Out]{}
}

// State returns the current snapshot.
func (m *Mutation[In, Out]) State() State[Out] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
