package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrInvalidSection indicates a section that is not a table.
	ErrInvalidSection = errors.New("config section is not a table")

	// ErrInvalidEnabled indicates a plugin "enabled" value that is not a boolean.
	ErrInvalidEnabled = errors.New("plugin enabled flag is not a boolean")
)
