// Package scheduler runs user-triggered operations in the background, at
// most one instance of each operation at a time.
package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned when the same operation is already running.
var ErrBusy = errors.New("already in progress")

// Scheduler hands out one slot per operation name. Different operations
// run concurrently; a second submit of a running operation is rejected.
type Scheduler struct {
	mu    sync.Mutex
	slots map[string]*errgroup.Group
	wg    sync.WaitGroup
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{slots: make(map[string]*errgroup.Group)}
}

// Submit starts fn in the background under op's slot. It returns an error
// wrapping ErrBusy, without running fn, while a previous fn for op is
// still executing.
func (s *Scheduler) Submit(op string, fn func()) error {
	g := s.slot(op)

	s.wg.Add(1)
	started := g.TryGo(func() error {
		defer s.wg.Done()
		fn()
		return nil
	})
	if !started {
		s.wg.Done()
		return fmt.Errorf("%s: %w", op, ErrBusy)
	}
	return nil
}

// Wait blocks until every submitted function has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) slot(op string) *errgroup.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.slots[op]
	if !ok {
		g = &errgroup.Group{}
		g.SetLimit(1)
		s.slots[op] = g
	}
	return g
}
