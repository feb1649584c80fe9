package headless

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/l1jgo/statecore/internal/platform"
)

var _ platform.Window = (*Window)(nil)

// Window is an offscreen native window. Callbacks and Close are main
// thread only; Frames and Closed may be read from anywhere.
type Window struct {
	platform *Platform
	id       string
	options  platform.WindowOptions

	onFrame []func()
	onClose []func()

	frames atomic.Int64
	closed atomic.Bool
}

func newWindow(p *Platform, options platform.WindowOptions) *Window {
	return &Window{
		platform: p,
		id:       uuid.NewString(),
		options:  options,
	}
}

func (w *Window) ID() string                      { return w.id }
func (w *Window) Options() platform.WindowOptions { return w.options }

func (w *Window) OnFrame(fn func()) {
	w.platform.mustBeMain("Window.OnFrame")
	w.onFrame = append(w.onFrame, fn)
}

func (w *Window) OnClose(fn func()) {
	w.platform.mustBeMain("Window.OnClose")
	w.onClose = append(w.onClose, fn)
}

// Present records one presented frame.
func (w *Window) Present() {
	w.platform.mustBeMain("Window.Present")
	w.frames.Add(1)
}

// Close closes the window and runs its close callbacks once.
func (w *Window) Close() {
	w.platform.mustBeMain("Window.Close")
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	for _, fn := range w.onClose {
		fn()
	}
	w.onFrame = nil
	w.onClose = nil
}

// RequestClose closes the window from the platform side, as a user
// clicking the close button would. Safe from any goroutine.
func (w *Window) RequestClose() error {
	return w.platform.dispatcher.Dispatch(w.Close)
}

func (w *Window) Frames() int64 { return w.frames.Load() }
func (w *Window) Closed() bool  { return w.closed.Load() }

func (w *Window) frame() {
	if w.closed.Load() {
		return
	}
	for _, fn := range w.onFrame {
		fn()
	}
}
