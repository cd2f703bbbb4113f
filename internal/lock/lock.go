// Package lock serializes scans of the same member across requests.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrTimeout is returned when a lock could not be acquired before the context ended.
var ErrTimeout = errors.New("lock wait timed out")

// Locker hands out exclusive per-key locks. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Memory is an in-process keyed mutex for single-instance deployments.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewMemory creates an in-process locker.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

func (m *Memory) acquire(key string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	return s
}

func (m *Memory) release(key string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	s := m.acquire(key)
	select {
	case s.ch <- struct{}{}:
		return func() {
			<-s.ch
			m.release(key, s)
		}, nil
	case <-ctx.Done():
		m.release(key, s)
		return nil, ErrTimeout
	}
}
