package effect

import "github.com/l1jgo/statecore/internal/core/slot"

// Kind tags a deferred action.
type Kind uint8

const (
	KindNotify  Kind = iota + 1 // entity changed, run its observers
	KindEmit                    // entity emitted Event, run its subscribers
	KindRelease                 // drop the entity's slot and handler lists
)

func (k Kind) String() string {
	switch k {
	case KindNotify:
		return "notify"
	case KindEmit:
		return "emit"
	case KindRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Effect is recorded during mutation and applied once nesting unwinds.
type Effect struct {
	Kind   Kind
	Entity slot.Key
	Event  any // KindEmit only
}

func Notify(id slot.Key) Effect          { return Effect{Kind: KindNotify, Entity: id} }
func Emit(id slot.Key, event any) Effect { return Effect{Kind: KindEmit, Entity: id, Event: event} }
func Release(id slot.Key) Effect         { return Effect{Kind: KindRelease, Entity: id} }

// Queue is a FIFO of pending effects. Not safe for concurrent use.
type Queue struct {
	items []Effect
	head  int
}

func (q *Queue) Push(e Effect) {
	q.items = append(q.items, e)
}

// Pop removes the oldest effect.
func (q *Queue) Pop() (Effect, bool) {
	if q.head >= len(q.items) {
		return Effect{}, false
	}
	e := q.items[q.head]
	q.items[q.head] = Effect{}
	q.head++
	if q.head == len(q.items) {
		// Drained: reuse the backing array.
		q.items = q.items[:0]
		q.head = 0
	}
	return e, true
}

func (q *Queue) Len() int {
	return len(q.items) - q.head
}
