package platform

import (
	"fmt"
	"runtime"
)

// MainThreadOnly guards a value that may only be touched on the main thread.
// Off-main code reaches it through Read, which schedules onto the main thread.
type MainThreadOnly[T any] struct {
	value      T
	dispatcher Dispatcher
}

func NewMainThreadOnly[T any](value T, dispatcher Dispatcher) MainThreadOnly[T] {
	return MainThreadOnly[T]{value: value, dispatcher: dispatcher}
}

// Borrow returns the value. It panics when called off the main thread.
func (m MainThreadOnly[T]) Borrow() T {
	if !m.dispatcher.IsMainThread() {
		panic(fmt.Sprintf("platform: %T borrowed off the main thread", m.value))
	}
	return m.value
}

// Read runs fn with the value on the main thread, later.
func (m MainThreadOnly[T]) Read(fn func(T)) error {
	value := m.value
	return m.dispatcher.Dispatch(func() { fn(value) })
}

func (m MainThreadOnly[T]) Dispatcher() Dispatcher {
	return m.dispatcher
}

// GoroutineID returns the current goroutine's id, parsed from the
// "goroutine NNN [" stack header. Only used for main-thread identity.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
