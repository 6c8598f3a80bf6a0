// Package local provides an in-process keyed driven.Locker.
package local

import (
	"context"
	"sync"

	"github.com/custodia-labs/daylog/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.Locker = (*Locker)(nil)

// Locker hands out one lock per key. Each key is a one-slot channel so
// that waiting can be abandoned when the context is done.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch      chan struct{}
	holders int
}

// New creates an in-process locker.
func New() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

// Lock blocks until key is held or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.holders++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, s, true) })
	}, nil
}

func (l *Locker) release(key string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s.holders--
	if s.holders == 0 {
		delete(l.slots, key)
	}
}
