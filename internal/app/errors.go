package app

import "errors"

// Recoverable outcomes. Misuse of strong handles (missing entity, an
// entity updated while already checked out) panics instead: that state
// is a broken invariant, while a closed window or a released weak target
// is something callers are expected to run into.
var (
	ErrWindowNotFound = errors.New("app: window not found")
	ErrEntityReleased = errors.New("app: entity released")
	ErrTaskPending    = errors.New("app: task not finished")
)
