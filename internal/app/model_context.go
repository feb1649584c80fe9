package app

import (
	"github.com/l1jgo/statecore/internal/core/effect"
)

// ModelContext is the view of the AppContext handed to one build or
// update closure of entity T. Do not keep it past that call.
type ModelContext[T any] struct {
	cx  *AppContext
	id  EntityID
	win *Window
}

func newModelContext[T any](cx *AppContext, id EntityID, win *Window) *ModelContext[T] {
	return &ModelContext[T]{cx: cx, id: id, win: win}
}

func (mc *ModelContext[T]) app() *AppContext { return mc.cx }
func (mc *ModelContext[T]) window() *Window  { return mc.win }

func (mc *ModelContext[T]) EntityID() EntityID { return mc.id }
func (mc *ModelContext[T]) App() *AppContext   { return mc.cx }

// Handle returns a weak self-reference, safe to capture in observer
// closures without keeping the entity alive.
func (mc *ModelContext[T]) Handle() WeakHandle[T] {
	return WeakHandle[T]{id: mc.id}
}

// Notify queues a change notification. Observers run after the outermost
// update returns, never from inside this call.
func (mc *ModelContext[T]) Notify() {
	mc.cx.effects.Push(effect.Notify(mc.id.key()))
}

// Emit queues ev for the entity's subscribers, delivered like Notify.
func (mc *ModelContext[T]) Emit(ev any) {
	mc.cx.effects.Push(effect.Emit(mc.id.key(), ev))
}

// Observe runs onNotify on this entity each time target notifies. The
// registration drops itself once either entity has been released, and
// observing an already released target registers nothing.
func Observe[T, E any](mc *ModelContext[T], target Handle[E], onNotify func(value *T, target Handle[E], mc *ModelContext[T])) {
	if !mc.cx.entities.Contains(target.id.key()) {
		return
	}
	self := mc.Handle()
	observed := target.Downgrade()
	mc.cx.observers[target.id] = append(mc.cx.observers[target.id], func(cx *AppContext, _ any) bool {
		this, ok := self.Upgrade(cx)
		if !ok {
			return false
		}
		other, ok := observed.Upgrade(cx)
		if !ok {
			return false
		}
		this.Update(cx, func(value *T, mc *ModelContext[T]) {
			onNotify(value, other, mc)
		})
		return true
	})
}

// Subscribe runs onEvent on this entity for every Ev that target emits.
// Events of other types are skipped. Dropped like Observe on release.
func Subscribe[T, E, Ev any](mc *ModelContext[T], target Handle[E], onEvent func(value *T, target Handle[E], ev Ev, mc *ModelContext[T])) {
	if !mc.cx.entities.Contains(target.id.key()) {
		return
	}
	self := mc.Handle()
	emitter := target.Downgrade()
	mc.cx.subscribers[target.id] = append(mc.cx.subscribers[target.id], func(cx *AppContext, raw any) bool {
		this, ok := self.Upgrade(cx)
		if !ok {
			return false
		}
		other, ok := emitter.Upgrade(cx)
		if !ok {
			return false
		}
		ev, ok := raw.(Ev)
		if !ok {
			return true
		}
		this.Update(cx, func(value *T, mc *ModelContext[T]) {
			onEvent(value, other, ev, mc)
		})
		return true
	})
}
