// Package platform defines the boundary between the app runtime and the
// windowing layer that owns the main thread.
package platform

// Platform is the native layer. Run and OpenWindow may only be called on
// the main thread; Dispatcher, TextSystem and Quit are safe from any
// goroutine.
type Platform interface {
	Dispatcher() Dispatcher
	TextSystem() TextSystem

	// Run starts the event loop on the calling (main) thread, invokes
	// onReady once the loop is live, and returns after Quit.
	Run(onReady func())
	// Quit stops the loop. It must not depend on dispatch queue capacity.
	Quit()

	OpenWindow(options WindowOptions) (Window, error)
}

// Dispatcher schedules closures onto the main thread. Safe for concurrent use.
type Dispatcher interface {
	IsMainThread() bool
	Dispatch(task func()) error
}

// TextSystem measures laid-out text. Safe for concurrent use.
type TextSystem interface {
	Measure(text string, fontSize float32) Size
}

type Size struct {
	Width  float32
	Height float32
}

type WindowOptions struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// Window is a native window. Main thread only.
type Window interface {
	ID() string
	Options() WindowOptions
	// OnFrame registers a callback run once per frame while the window is open.
	OnFrame(fn func())
	// OnClose registers a callback run once when the window closes, whether
	// the close came from Close or from the platform.
	OnClose(fn func())
	Present()
	Close()
}
