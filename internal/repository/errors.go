// Package repository persists parking sessions and the car registry.
//
// Sentinel errors let the service and handler layers distinguish failure
// modes: ErrNotFound maps to a missing session id/plate/token, ErrConflict
// to a mutation against a session already in a terminal sub-state for that
// operation (closing an already-closed session). Anything else is a storage
// fault and is propagated unchanged.
package repository

import "errors"

// ErrNotFound is returned when the referenced session or car does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a session is already closed and a second
// close is attempted.
var ErrConflict = errors.New("conflict")
