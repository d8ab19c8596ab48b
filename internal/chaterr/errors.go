// Package chaterr defines the error taxonomy shared by the chat core.
// Callers classify failures with errors.Is against these sentinels.
package chaterr

import "errors"

var (
	// ErrNotFound means a room, message or membership reference does not
	// resolve to an active row.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor has no active mapping to the room or is
	// not the author of the message.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a concurrent-creation race. The room directory
	// recovers it by re-fetching the winning row; it surfaces only when
	// that re-fetch itself fails.
	ErrConflict = errors.New("conflict")

	// ErrFatal means the store bootstrap retry budget is exhausted. The
	// owning process must terminate rather than run degraded.
	ErrFatal = errors.New("fatal: store unavailable")
)
