package event

import (
	"reflect"
	"sync"
)

// Bus is a deferred, typed event bus. Events emitted while the owner is
// mid-mutation queue up and are delivered, in emission order, by Dispatch
// once the owner has settled.
type Bus struct {
	mu       sync.Mutex // protects handler registration only
	pending  []queued
	handlers map[reflect.Type][]func(any)
}

type queued struct {
	typ   reflect.Type
	event any
}

func NewBus() *Bus {
	return &Bus{
		pending:  make([]queued, 0, 16),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

// Emit queues an event for the next Dispatch.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.pending = append(b.pending, queued{typ: t, event: event})
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Pending returns the number of queued, undelivered events.
func (b *Bus) Pending() int {
	return len(b.pending)
}

// Dispatch delivers queued events until none remain, including events
// emitted by handlers during delivery. Returns how many were delivered.
func (b *Bus) Dispatch() int {
	delivered := 0
	for len(b.pending) > 0 {
		batch := b.pending
		b.pending = make([]queued, 0, len(batch))
		for _, q := range batch {
			b.mu.Lock()
			hs := b.handlers[q.typ]
			b.mu.Unlock()
			for _, h := range hs {
				h(q.event)
			}
			delivered++
		}
	}
	return delivered
}
