// Package debounce provides a keyed coalescing scheduler: scheduling work
// under a key cancels whatever was previously scheduled under that key.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs at most one pending unit of work per key.
type Scheduler[K comparable] struct {
	mu      sync.Mutex
	pending map[K]*job
	seq     uint64
	stopped bool
}

type job struct {
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func New[K comparable]() *Scheduler[K] {
	return &Scheduler[K]{pending: make(map[K]*job)}
}

// Schedule runs work after delay unless another Schedule or Cancel for the
// same key happens first. Work that already started sees its context
// cancelled instead. Scheduling on a stopped scheduler is a no-op.
func (s *Scheduler[K]) Schedule(key K, delay time.Duration, work func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.cancelLocked(key)

	ctx, cancel := context.WithCancel(context.Background())
	s.seq++
	j := &job{seq: s.seq, cancel: cancel}

	j.timer = time.AfterFunc(delay, func() {
		defer s.finish(key, j.seq)

		if ctx.Err() != nil {
			return
		}

		work(ctx)
	})

	s.pending[key] = j
}

// Cancel drops the work pending under key, if any.
func (s *Scheduler[K]) Cancel(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(key)
}

// Pending reports whether work is scheduled or running under key.
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[key]

	return ok
}

// Len returns the number of keys with pending work.
func (s *Scheduler[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}

// Stop cancels all pending work and rejects further scheduling.
func (s *Scheduler[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key := range s.pending {
		s.cancelLocked(key)
	}
}

func (s *Scheduler[K]) cancelLocked(key K) {
	j, ok := s.pending[key]
	if !ok {
		return
	}

	j.timer.Stop()
	j.cancel()
	delete(s.pending, key)
}

// finish clears the entry for key unless it was replaced meanwhile.
func (s *Scheduler[K]) finish(key K, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.pending[key]; ok && j.seq == seq {
		j.cancel()
		delete(s.pending, key)
	}
}
