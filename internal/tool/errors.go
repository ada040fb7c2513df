package tool

import "errors"

var (
	// ErrPermissionDenied is returned when the tool provider refuses an
	// invocation on permission grounds. It is fatal for the current
	// request: the agent rolls back the pending assistant message and
	// propagates it without retry.
	ErrPermissionDenied = errors.New("tool permission denied")

	// ErrToolNotFound is returned when an invocation names a tool the
	// provider does not serve.
	ErrToolNotFound = errors.New("tool not found")
)
