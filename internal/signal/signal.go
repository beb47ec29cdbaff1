// Package signal provides typed observer registration with explicit
// subscription handles, so owners can tear down every callback they attached.
package signal

import (
	"context"
	"sync"
)

// Handler receives one emitted value.
type Handler[T any] func(ctx context.Context, v T)

// Signal is a list of handlers invoked in subscription order on Emit.
type Signal[T any] struct {
	mu       sync.Mutex
	nextID   uint64
	handlers []entry[T]
}

type entry[T any] struct {
	id uint64
	fn Handler[T]
}

// New creates an empty signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Subscribe registers fn and returns the handle that removes it.
func (s *Signal[T]) Subscribe(fn Handler[T]) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, entry[T]{id: id, fn: fn})

	return &Subscription{cancel: func() { s.remove(id) }}
}

// Emit calls every handler registered at the time of the call. Handlers may
// subscribe or unsubscribe while running; changes apply from the next Emit.
func (s *Signal[T]) Emit(ctx context.Context, v T) {
	s.mu.Lock()
	snapshot := make([]entry[T], len(s.handlers))
	copy(snapshot, s.handlers)
	s.mu.Unlock()

	for _, e := range snapshot {
		e.fn(ctx, v)
	}
}

// Len returns the number of registered handlers.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.handlers {
		if e.id == id {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Subscription removes one handler. Unsubscribe is idempotent and safe on a
// nil receiver.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe detaches the handler.
func (sub *Subscription) Unsubscribe() {
	if sub == nil {
		return
	}
	sub.once.Do(sub.cancel)
}

// Group collects subscriptions so they can be released together.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

// Add records sub in the group.
func (g *Group) Add(sub *Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs = append(g.subs, sub)
}

// Len returns the number of held subscriptions.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// UnsubscribeAll releases every subscription in the group and empties it.
func (g *Group) UnsubscribeAll() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
