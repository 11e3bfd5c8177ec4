// Package query keeps a {Data, Loading, Error} view of one store read, either as a
// one-shot fetch or as a standing subscription.
package query

import (
	"context"
	"sync"

	"habitTrackerAPI/internal/logger"
	"habitTrackerAPI/internal/store"
)

const (
	FetchErrorMessage        = "Failed to fetch data. Please check your connection."
	SubscriptionErrorMessage = "Connection error. Please refresh the page."
)

// Source is the read descriptor a Query runs against.
type Source[T any] interface {
	Fetch(ctx context.Context) ([]T, error)
	Watch(ctx context.Context) (<-chan store.Snapshot[T], error)
}

type Options struct {
	Realtime bool
	Enabled  bool
}

type State[T any] struct {
	Data    []T    `json:"data"`
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
}

// Query owns at most one live subscription. Every fetch or snapshot is tagged with
// the epoch it started in and a sequence number; results from an older epoch, or
// older than what is already applied, are dropped.
//
// onChange runs with the query's lock held and must not call back into the Query.
type Query[T any] struct {
	mu       sync.Mutex
	source   Source[T]
	opts     Options
	onChange func(State[T])

	state   State[T]
	epoch   uint64
	seq     uint64
	applied uint64
	cancel  context.CancelFunc
	closed  bool
}

func New[T any](source Source[T], opts Options, onChange func(State[T])) *Query[T] {
	return &Query[T]{
		source:   source,
		opts:     opts,
		onChange: onChange,
		state:    State[T]{Data: []T{}},
	}
}

func (q *Query[T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *Query[T]) snapshotLocked() State[T] {
	s := q.state
	s.Data = append([]T(nil), q.state.Data...)
	if s.Data == nil {
		s.Data = []T{}
	}
	return s
}

func (q *Query[T]) notifyLocked() {
	if q.onChange != nil {
		q.onChange(q.snapshotLocked())
	}
}

func (q *Query[T]) inactiveLocked() bool {
	return q.closed || !q.opts.Enabled || q.source == nil
}

// Start runs the initial read: a subscription for realtime queries, otherwise a
// single fetch. A disabled query, or one without a source, settles immediately
// with empty data and no store access.
func (q *Query[T]) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.inactiveLocked() {
		q.state = State[T]{Data: []T{}}
		q.notifyLocked()
		q.mu.Unlock()
		return nil
	}
	realtime, epoch := q.opts.Realtime, q.epoch
	q.mu.Unlock()

	if realtime {
		return q.subscribe(ctx, epoch)
	}
	return q.Refetch(ctx)
}

// Refetch performs one fetch and applies its result unless it went stale.
// Overlapping calls are not deduplicated.
func (q *Query[T]) Refetch(ctx context.Context) error {
	q.mu.Lock()
	if q.inactiveLocked() {
		q.mu.Unlock()
		return nil
	}
	q.seq++
	seq, epoch, src := q.seq, q.epoch, q.source
	q.state.Loading = true
	q.notifyLocked()
	q.mu.Unlock()

	data, err := src.Fetch(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	if epoch != q.epoch || seq <= q.applied {
		logger.Debug("discarding stale fetch result", "seq", seq, "applied", q.applied)
		return err
	}
	q.applied = seq
	q.state.Loading = false
	if err != nil {
		logger.Warn("query fetch failed", "error", err)
		q.state.Error = FetchErrorMessage
	} else {
		q.state.Data = data
		q.state.Error = ""
	}
	q.notifyLocked()
	return err
}

// subscribe opens the subscription for epoch. It does nothing once the query was
// closed or its source replaced after Start released the lock.
func (q *Query[T]) subscribe(ctx context.Context, epoch uint64) error {
	q.mu.Lock()
	if q.inactiveLocked() || epoch != q.epoch {
		q.mu.Unlock()
		return nil
	}
	if q.cancel != nil {
		q.cancel()
	}
	subCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	src := q.source
	q.state.Loading = true
	q.notifyLocked()
	q.mu.Unlock()

	ch, err := src.Watch(subCtx)
	if err != nil {
		q.mu.Lock()
		if epoch == q.epoch {
			logger.Warn("query subscription failed", "error", err)
			q.state.Loading = false
			q.state.Error = SubscriptionErrorMessage
			q.notifyLocked()
		}
		q.mu.Unlock()
		cancel()
		return err
	}

	go func() {
		for snap := range ch {
			q.mu.Lock()
			if epoch != q.epoch {
				q.mu.Unlock()
				return
			}
			q.seq++
			q.applied = q.seq
			q.state.Loading = false
			if snap.Err != nil {
				logger.Warn("query subscription error", "error", snap.Err)
				q.state.Error = SubscriptionErrorMessage
			} else {
				q.state.Data = snap.Items
				q.state.Error = ""
			}
			q.notifyLocked()
			q.mu.Unlock()
		}
	}()

	return nil
}

// SetSource swaps the read descriptor. The previous subscription is torn down,
// in-flight results from the old source are discarded and the new source is
// started.
func (q *Query[T]) SetSource(ctx context.Context, source Source[T]) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.epoch++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.source = source
	q.state = State[T]{Data: []T{}}
	q.mu.Unlock()

	return q.Start(ctx)
}

// Close tears down the subscription. Results that arrive afterwards are dropped.
func (q *Query[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.epoch++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}
