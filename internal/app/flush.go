package app

import (
	"go.uber.org/zap"

	"github.com/l1jgo/statecore/internal/core/effect"
	"github.com/l1jgo/statecore/internal/core/event"
)

// Context is the capability to create and update entities. *AppContext,
// *ModelContext[T] and *WindowContext implement it, so Entity,
// UpdateEntity and friends work from the root or from inside any update.
type Context interface {
	app() *AppContext
	// window is the window whose update is in progress, or nil.
	window() *Window
}

// update is the reentrancy-counted wrapper around every mutation path.
// Effects are flushed when the outermost call returns normally. A panic
// unwinds without flushing.
func update[R any](cx *AppContext, fn func() R) R {
	cx.pendingUpdates++
	completed := false
	defer func() {
		cx.pendingUpdates--
		if completed && cx.pendingUpdates == 0 && !cx.flushing {
			cx.flush()
		}
	}()
	r := fn()
	completed = true
	return r
}

// flush drains effects to a fixed point. Updates made by handlers bring
// the counter back to zero while flushing is set; the loop picks up their
// effects instead of flushing recursively. Lifecycle events go out once
// the effect queue is empty, and anything they raise goes round again.
func (cx *AppContext) flush() {
	cx.flushing = true
	defer func() { cx.flushing = false }()

	applied := 0
	for {
		for {
			e, ok := cx.effects.Pop()
			if !ok {
				break
			}
			cx.apply(e)
			applied++
		}
		if cx.bus.Pending() == 0 {
			break
		}
		cx.bus.Dispatch()
	}
	cx.flushes++
	if applied > 0 {
		cx.log.Debug("effects flushed", zap.Int("applied", applied))
	}
}

func (cx *AppContext) apply(e effect.Effect) {
	id := EntityID(e.Entity)
	switch e.Kind {
	case effect.KindNotify:
		applyHandlers(cx, cx.observers, id, nil)
	case effect.KindEmit:
		applyHandlers(cx, cx.subscribers, id, e.Event)
	case effect.KindRelease:
		cx.release(id)
	default:
		panic("app: unknown effect kind " + e.Kind.String())
	}
}

// applyHandlers runs the handler list for id. The list is taken out of the
// registry for the pass, so handlers registered meanwhile land in a fresh
// list and are merged behind the survivors for the next delivery.
func applyHandlers(cx *AppContext, registry map[EntityID][]handler, id EntityID, ev any) {
	list, ok := registry[id]
	if !ok {
		return
	}
	delete(registry, id)

	kept := list[:0]
	for _, h := range list {
		if h(cx, ev) {
			kept = append(kept, h)
		}
	}
	clear(list[len(kept):])

	if added := registry[id]; len(added) > 0 {
		kept = append(kept, added...)
	}
	if len(kept) == 0 {
		delete(registry, id)
		return
	}
	registry[id] = kept
}

func (cx *AppContext) release(id EntityID) {
	if id == cx.unit {
		return
	}
	if _, ok := cx.entities.Remove(id.key()); !ok {
		cx.log.Debug("entity already released", zap.Stringer("entity", id))
		return
	}
	delete(cx.observers, id)
	delete(cx.subscribers, id)
	event.Emit(cx.bus, event.EntityReleased{Entity: id.key()})
	cx.log.Debug("entity released", zap.Stringer("entity", id))
}
