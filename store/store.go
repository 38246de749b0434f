// Package store holds the Postgres repositories. All multi-writer hazards
// are resolved here with single-statement conditional updates; callers
// never do read-then-write sequences on vendor or request status.
package store

import "errors"

var (
	// ErrNotFound means the referenced vendor or request does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrExists means a unique constraint (vendor email) was violated.
	ErrExists = errors.New("store: already exists")
	// ErrVendorUnavailable means the conditional assignment lock found the
	// vendor already busy. Nothing was written.
	ErrVendorUnavailable = errors.New("store: vendor unavailable")
	// ErrAlreadyAssigned means the request is at or past the paid stage.
	ErrAlreadyAssigned = errors.New("store: request already assigned")
	// ErrResetNotAllowed means an administrative reset was refused because
	// the request reached paid or is still pending.
	ErrResetNotAllowed = errors.New("store: reset not allowed")
)
