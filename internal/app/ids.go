package app

import (
	"fmt"

	"github.com/l1jgo/statecore/internal/core/slot"
)

// EntityID names an entity slot. Never reused while the slot is alive.
type EntityID slot.Key

func (id EntityID) key() slot.Key { return slot.Key(id) }

func (id EntityID) String() string {
	k := slot.Key(id)
	return fmt.Sprintf("%dv%d", k.Index(), k.Generation())
}

// WindowID names a window slot.
type WindowID slot.Key

func (id WindowID) key() slot.Key { return slot.Key(id) }

func (id WindowID) String() string {
	k := slot.Key(id)
	return fmt.Sprintf("%dv%d", k.Index(), k.Generation())
}
