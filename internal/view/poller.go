package view

import (
	"context"
	"sync"

	"github.com/quarkfin/platform-go/internal/domain"
	"github.com/quarkfin/platform-go/internal/infra/client"
)

// PollFunc runs a status poll, reporting snapshots to onUpdate.
type PollFunc[T any] func(ctx context.Context, onUpdate func(T)) (T, error)

// Poller runs one status poll at a time in the background.
// Snapshots whose lifecycle rank moves backwards are dropped, so a stale
// response never overwrites a newer status.
type Poller[T any] struct {
	poll   PollFunc[T]
	rank   func(T) int
	notify func(T)

	mu      sync.Mutex
	state   State[T]
	has     bool
	polling bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller creates a poller. notify, when set, receives every accepted
// snapshot.
func NewPoller[T any](poll PollFunc[T], rank func(T) int, notify func(T)) *Poller[T] {
	return &Poller[T]{poll: poll, rank: rank, notify: notify}
}

// Start begins polling unless a poll is already running; it reports whether
// a new poll was started.
func (p *Poller[T]) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.polling {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	p.polling = true
	p.stopped = false
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state.Loading = true
	p.state.Err = nil

	go p.run(ctx, p.done)
	return true
}

func (p *Poller[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	final, err := p.poll(ctx, p.accept)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancel()
	p.polling = false
	p.state.Loading = false

	if p.stopped {
		return
	}
	if err != nil {
		apiErr := client.Normalize(err)
		if apiErr.Code == domain.CodeCancelled {
			return
		}
		p.state.Err = apiErr
		return
	}
	p.apply(final)
}

// accept is handed to the poll as its onUpdate callback.
func (p *Poller[T]) accept(snap T) {
	p.mu.Lock()
	if p.stopped || !p.apply(snap) {
		p.mu.Unlock()
		return
	}
	notify := p.notify
	p.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

// apply stores snap if it does not regress. Caller holds p.mu.
func (p *Poller[T]) apply(snap T) bool {
	if p.has && p.rank != nil && p.rank(snap) < p.rank(p.state.Data) {
		return false
	}
	p.state.Data = snap
	p.has = true
	return true
}

// Stop ends the running poll. No further snapshots are applied.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until the current poll, if any, has returned.
func (p *Poller[T]) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// IsPolling reports whether a poll is running.
func (p *Poller[T]) IsPolling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polling
}

// State returns the latest accepted snapshot.
func (p *Poller[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Download binds a binary export.
type Download struct {
	mu      sync.Mutex
	loading bool
	err     *domain.APIError
}

// Run fetches the export.
func (d *Download) Run(ctx context.Context, fetch func(ctx context.Context) (*domain.Download, error)) (*domain.Download, error) {
	d.mu.Lock()
	d.loading = true
	d.err = nil
	d.mu.Unlock()

	dl, err := fetch(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.err = client.Normalize(err)
		return nil, d.err
	}
	return dl, nil
}

// State reports whether an export is running and the last failure.
func (d *Download) State() (loading bool, err *domain.APIError) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading, d.err
}
