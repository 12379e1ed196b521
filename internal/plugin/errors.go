package plugin

import "errors"

// Plugin system errors.
var (
	// ErrAlreadyRegistered is returned when a plugin name is registered twice.
	ErrAlreadyRegistered = errors.New("plugin is already registered")

	// ErrAlreadySetUp is returned when the manager has already run setup.
	ErrAlreadySetUp = errors.New("plugins are already set up")

	// ErrNilFactory is returned when registering a nil factory.
	ErrNilFactory = errors.New("plugin factory is nil")

	// ErrNameMismatch is returned when a plugin reports a different name
	// than the one it was registered under.
	ErrNameMismatch = errors.New("plugin name does not match registration")

	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")
)
