package event

import "github.com/l1jgo/statecore/internal/core/slot"

// Lifecycle events published by the app runtime.

type EntityCreated struct {
	Entity slot.Key
	Type   string
}

type EntityReleased struct {
	Entity slot.Key
}

type WindowOpened struct {
	Window slot.Key
	Title  string
}

type WindowClosed struct {
	Window slot.Key
}
