package lua

import "errors"

// Errors for Lua plugin operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution times out.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNoSetup is returned when a script does not define setup().
	ErrNoSetup = errors.New("script does not define a setup function")

	// ErrBadReturn is returned when a hook function does not return a string.
	ErrBadReturn = errors.New("hook function must return a string")
)
