package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/statecore/internal/core/event"
	"github.com/l1jgo/statecore/internal/core/slot"
	"github.com/l1jgo/statecore/internal/platform"
)

// Window is the app-side state of an open native window: a root view slot
// and a dirty flag set by every update made through it.
type Window struct {
	handle   AnyWindowHandle
	options  platform.WindowOptions
	native   platform.Window
	nativeID string
	rootView any

	dirty          bool
	closeRequested bool
}

func newWindow(handle AnyWindowHandle, options platform.WindowOptions, p platform.Platform) (*Window, error) {
	native, err := p.OpenWindow(options)
	if err != nil {
		return nil, err
	}
	return &Window{handle: handle, options: options, native: native, nativeID: native.ID()}, nil
}

func (w *Window) Handle() AnyWindowHandle         { return w.handle }
func (w *Window) Options() platform.WindowOptions { return w.options }
func (w *Window) Dirty() bool                     { return w.dirty }
func (w *Window) NativeID() string                { return w.nativeID }

// RootView returns the value stored by the window's builder.
func (w *Window) RootView() any { return w.rootView }

// AnyWindowHandle refers to a window regardless of its root view type.
type AnyWindowHandle struct {
	id WindowID
}

func (h AnyWindowHandle) ID() WindowID { return h.id }

// WindowHandle refers to a window whose root view state is S.
type WindowHandle[S any] struct {
	id WindowID
}

func (h WindowHandle[S]) ID() WindowID         { return h.id }
func (h WindowHandle[S]) Any() AnyWindowHandle { return AnyWindowHandle{id: h.id} }

// RootView ties a window to the entity holding its root view state.
type RootView[S any] struct {
	entity Handle[S]
}

func NewRootView[S any](entity Handle[S]) RootView[S] {
	return RootView[S]{entity: entity}
}

func (r RootView[S]) Entity() Handle[S] { return r.entity }

// WindowContext is the context of one window build or update. Entity
// updates made through it mark the window dirty.
type WindowContext struct {
	cx  *AppContext
	win *Window
}

func (wc *WindowContext) app() *AppContext { return wc.cx }
func (wc *WindowContext) window() *Window  { return wc.win }

func (wc *WindowContext) App() *AppContext { return wc.cx }
func (wc *WindowContext) Window() *Window  { return wc.win }

// Close closes the window once the current update returns it to its slot.
func (wc *WindowContext) Close() {
	wc.win.closeRequested = true
}

// OpenWindow reserves a window slot now and builds the window on the main
// thread. The returned task resolves with the handle once the window is
// stored. If the build cannot be dispatched the slot is freed at once and
// the task carries the error.
func OpenWindow[S any](cx Context, options platform.WindowOptions, build func(wc *WindowContext) RootView[S]) *Task[WindowHandle[S]] {
	a := cx.app()
	id := WindowID(a.windows.Reserve())
	handle := WindowHandle[S]{id: id}

	task, err := spawnOnMain(a, func(p platform.Platform, cx *AppContext) (WindowHandle[S], error) {
		w, err := newWindow(handle.Any(), options, p)
		if err != nil {
			cx.windows.Remove(id.key())
			return handle, fmt.Errorf("app: open window %q: %w", options.Title, err)
		}
		w.rootView = build(&WindowContext{cx: cx, win: w})
		w.dirty = true
		if err := cx.windows.Replace(id.key(), w); err != nil {
			panic(fmt.Sprintf("app: store window %s: %v", id, err))
		}

		w.native.OnFrame(func() { cx.withLock(func() { cx.present(id) }) })
		w.native.OnClose(func() { cx.withLock(func() { cx.closeWindow(id, false) }) })

		event.Emit(cx.bus, event.WindowOpened{Window: id.key(), Title: options.Title})
		cx.log.Debug("window opened",
			zap.Stringer("window", id),
			zap.String("native", w.native.ID()),
			zap.String("title", options.Title),
		)
		if w.closeRequested {
			cx.closeWindow(id, true)
		}
		return handle, nil
	})
	if err != nil {
		a.windows.Remove(id.key())
		a.log.Warn("window open not dispatched", zap.String("title", options.Title), zap.Error(err))
	}
	return task
}

// UpdateWindow checks the window out, runs fn and restores it, marking it
// dirty. A window that is closed or unknown yields ErrWindowNotFound; if
// the window disappears while fn runs, fn's result is returned alongside
// the error. Updating a window from inside its own update panics.
func UpdateWindow[R any](cx Context, h AnyWindowHandle, fn func(wc *WindowContext) R) (R, error) {
	a := cx.app()
	var err error
	r := update(a, func() R {
		w, takeErr := a.windows.Take(h.id.key())
		switch {
		case errors.Is(takeErr, slot.ErrCheckedOut):
			panic(fmt.Sprintf("app: window %s is already being updated", h.id))
		case takeErr != nil:
			a.log.Warn("update of missing window", zap.Stringer("window", h.id))
			err = fmt.Errorf("update window %s: %w", h.id, ErrWindowNotFound)
			var zero R
			return zero
		}
		defer func() {
			if replaceErr := a.windows.Replace(h.id.key(), w); replaceErr != nil {
				err = fmt.Errorf("update window %s: %w", h.id, ErrWindowNotFound)
				return
			}
			if w.closeRequested {
				a.closeWindow(h.id, true)
			}
		}()

		result := fn(&WindowContext{cx: a, win: w})
		w.dirty = true
		return result
	})
	return r, err
}

// UpdateRoot updates the root view entity of a window through the
// window, so the window is marked dirty.
func UpdateRoot[S, R any](cx Context, h WindowHandle[S], fn func(root *S, mc *ModelContext[S]) R) (R, error) {
	return UpdateWindow(cx, h.Any(), func(wc *WindowContext) R {
		root, ok := wc.win.rootView.(RootView[S])
		if !ok {
			panic(fmt.Sprintf("app: window %s root view is %T, not RootView[%s]", h.id, wc.win.rootView, typeName[S]()))
		}
		return UpdateEntity(wc, root.entity, fn)
	})
}

// withLock runs fn under the App lock from a platform callback.
func (cx *AppContext) withLock(fn func()) {
	app := cx.this.Value()
	if app == nil {
		return
	}
	app.Update(func(*AppContext) { fn() })
}

// present is the window's frame callback: dirty windows are presented
// and cleaned. Main thread only.
func (cx *AppContext) present(id WindowID) {
	w, ok := cx.windows.Get(id.key())
	if !ok || !w.dirty {
		return
	}
	w.native.Present()
	w.dirty = false
}

// closeWindow forgets the window. nativeOpen asks the platform to close
// the native window as well; that close is always dispatched, never run
// under the lock, since its callbacks take the lock themselves.
func (cx *AppContext) closeWindow(id WindowID, nativeOpen bool) {
	w, ok := cx.windows.Remove(id.key())
	if !ok || w == nil {
		return
	}
	event.Emit(cx.bus, event.WindowClosed{Window: id.key()})
	cx.log.Debug("window closed", zap.Stringer("window", id))
	if !nativeOpen {
		return
	}
	if err := cx.dispatcher.Dispatch(w.native.Close); err != nil {
		cx.log.Debug("native close not dispatched", zap.Stringer("window", id), zap.Error(err))
	}
}
