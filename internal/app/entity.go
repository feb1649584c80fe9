package app

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/l1jgo/statecore/internal/core/effect"
	"github.com/l1jgo/statecore/internal/core/event"
	"github.com/l1jgo/statecore/internal/core/slot"
)

// Entity allocates a slot, runs build with a context bound to it and
// stores the result. The slot stays empty while build runs, so build may
// create or update other entities but not its own.
func Entity[T any](cx Context, build func(mc *ModelContext[T]) T) Handle[T] {
	a, win := cx.app(), cx.window()
	return update(a, func() Handle[T] {
		id := EntityID(a.entities.Reserve())
		stored := false
		defer func() {
			if !stored {
				a.entities.Remove(id.key())
			}
		}()

		value := build(newModelContext[T](a, id, win))
		if err := a.entities.Replace(id.key(), &value); err != nil {
			panic(fmt.Sprintf("app: store entity %s: %v", id, err))
		}
		stored = true
		event.Emit(a.bus, event.EntityCreated{Entity: id.key(), Type: typeName[T]()})
		return Handle[T]{id: id}
	})
}

// UpdateEntity checks the entity out, runs fn on it and restores it on
// every exit path. Updating a missing entity, or one already checked out
// higher up the call stack, panics.
func UpdateEntity[T, R any](cx Context, h Handle[T], fn func(value *T, mc *ModelContext[T]) R) R {
	a, win := cx.app(), cx.window()
	return update(a, func() R {
		value := checkout[T](a, h.id)
		defer restore(a, h.id, value)

		r := fn(value, newModelContext[T](a, h.id, win))
		if win != nil {
			win.dirty = true
		}
		return r
	})
}

// Release drops the entity once the current update chain has unwound.
// Weak handles stop upgrading from then on; strong handles to it must not
// be used again.
func Release[T any](cx Context, h Handle[T]) {
	a := cx.app()
	update(a, func() struct{} {
		a.effects.Push(effect.Release(h.id.key()))
		return struct{}{}
	})
}

func checkout[T any](a *AppContext, id EntityID) *T {
	v, err := a.entities.Take(id.key())
	switch {
	case errors.Is(err, slot.ErrCheckedOut):
		panic(fmt.Sprintf("app: entity %s (%s) is already being updated", id, typeName[T]()))
	case err != nil:
		panic(fmt.Sprintf("app: entity %s (%s) not found", id, typeName[T]()))
	}
	value, ok := v.(*T)
	if !ok {
		_ = a.entities.Replace(id.key(), v)
		panic(fmt.Sprintf("app: entity %s holds %T, not %s", id, v, typeName[T]()))
	}
	return value
}

func restore[T any](a *AppContext, id EntityID, value *T) {
	if err := a.entities.Replace(id.key(), value); err != nil {
		panic(fmt.Sprintf("app: restore entity %s: %v", id, err))
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Handle is a typed reference to an entity. Copying a Handle copies the
// reference, not the entity.
type Handle[T any] struct {
	id EntityID
}

func (h Handle[T]) ID() EntityID { return h.id }

func (h Handle[T]) Downgrade() WeakHandle[T] {
	return WeakHandle[T]{id: h.id}
}

// Update is UpdateEntity without a result.
func (h Handle[T]) Update(cx Context, fn func(value *T, mc *ModelContext[T])) {
	UpdateEntity(cx, h, func(value *T, mc *ModelContext[T]) struct{} {
		fn(value, mc)
		return struct{}{}
	})
}

// WeakHandle is a non-owning reference that checks liveness before use.
type WeakHandle[T any] struct {
	id EntityID
}

func (w WeakHandle[T]) ID() EntityID { return w.id }

// Upgrade returns a strong handle while the entity is alive, including
// while it is checked out by an update in progress.
func (w WeakHandle[T]) Upgrade(cx Context) (Handle[T], bool) {
	if !cx.app().entities.Contains(w.id.key()) {
		return Handle[T]{}, false
	}
	return Handle[T]{id: w.id}, true
}

// Update updates the entity if it is still alive, or returns
// ErrEntityReleased.
func (w WeakHandle[T]) Update(cx Context, fn func(value *T, mc *ModelContext[T])) error {
	_, err := UpdateWeak(cx, w, func(value *T, mc *ModelContext[T]) struct{} {
		fn(value, mc)
		return struct{}{}
	})
	return err
}

// UpdateWeak is UpdateEntity through a weak handle.
func UpdateWeak[T, R any](cx Context, w WeakHandle[T], fn func(value *T, mc *ModelContext[T]) R) (R, error) {
	h, ok := w.Upgrade(cx)
	if !ok {
		var zero R
		return zero, fmt.Errorf("update %s %s: %w", typeName[T](), w.id, ErrEntityReleased)
	}
	return UpdateEntity(cx, h, fn), nil
}
