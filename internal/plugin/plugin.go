package plugin

import "github.com/dshills/pressgreet/internal/plugin/hook"

// Plugin is a unit of render-time behavior.
type Plugin interface {
	// Name returns the unique plugin identifier.
	Name() string

	// Setup registers the plugin's hook handlers. It is called once.
	Setup(r HookRegistrar) error
}

// HookRegistrar is the registration side of the hook registry.
type HookRegistrar interface {
	RegisterHook(name string, h hook.Handler) error
}

// Config is the plugin-scoped configuration capability.
type Config interface {
	// Get returns the value stored under key, or nil when it is absent.
	Get(key string) any
}

// Factory builds a plugin bound to its configuration.
type Factory func(cfg Config) (Plugin, error)

// ConfigMap is a fixed Config backed by a map.
type ConfigMap map[string]any

// Get implements Config.
func (c ConfigMap) Get(key string) any {
	return c[key]
}
