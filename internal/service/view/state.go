package view

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Ticket identifies one issued request.
type Ticket uint64

// Snapshot is a consistent read of a State.
type Snapshot[T any] struct {
	Loading bool   `json:"loading"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
	Seq     uint64 `json:"seq"`
}

// State holds the result slot of a view. Only the most recently issued
// request may write to it, and the loading flag clears only when that
// request finishes.
type State[T any] struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	loading bool
	data    T
	err     string

	stale prometheus.Counter
}

// New creates a state. stale, when non-nil, counts discarded completions.
func New[T any](stale prometheus.Counter) *State[T] {
	return &State[T]{stale: stale}
}

// Begin issues a ticket and marks the view as loading.
func (s *State[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.loading = true
	return Ticket(s.issued)
}

// Finish applies the outcome of ticket t. It reports false, leaving the
// state untouched, when a newer ticket has been issued since. A non-empty
// errMsg is stored alongside data so stale data can still be shown.
func (s *State[T]) Finish(t Ticket, data T, errMsg string) bool {
	return s.apply(t, &data, errMsg)
}

// Fail records errMsg for ticket t and keeps the previous data.
func (s *State[T]) Fail(t Ticket, errMsg string) bool {
	return s.apply(t, nil, errMsg)
}

func (s *State[T]) apply(t Ticket, data *T, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint64(t) != s.issued {
		if s.stale != nil {
			s.stale.Inc()
		}
		return false
	}

	s.applied = uint64(t)
	s.loading = false
	if data != nil {
		s.data = *data
	}
	s.err = errMsg
	return true
}

// Run wraps fn in Begin/Finish. The loading flag is released even when fn
// panics. describe turns fn's error into the stored message. Run reports
// whether the result was applied.
func (s *State[T]) Run(ctx context.Context, fn func(context.Context) (T, error), describe func(error) string) (applied bool) {
	t := s.Begin()

	var (
		data T
		err  error
		done bool
	)
	defer func() {
		if done {
			return
		}
		// fn panicked
		applied = s.Fail(t, "unexpected error")
	}()

	data, err = fn(ctx)
	done = true

	if err != nil {
		msg := err.Error()
		if describe != nil {
			msg = describe(err)
		}
		return s.Fail(t, msg)
	}
	return s.Finish(t, data, "")
}

func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Loading: s.loading,
		Data:    s.data,
		Error:   s.err,
		Seq:     s.applied,
	}
}

func (s *State[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}
