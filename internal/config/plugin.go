package config

import (
	"fmt"

	"github.com/dshills/pressgreet/internal/config/loader"
)

// PluginConfig holds configuration for a single plugin.
type PluginConfig struct {
	// Name is the unique plugin identifier.
	Name string

	// Enabled controls whether the plugin is set up. Defaults to true.
	Enabled bool

	// Settings contains plugin-specific settings.
	Settings map[string]any
}

func parsePluginConfig(name string, raw any) (*PluginConfig, error) {
	pc := &PluginConfig{
		Name:     name,
		Enabled:  true,
		Settings: make(map[string]any),
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("plugins.%s: %w", name, ErrInvalidSection)
	}

	if v, ok := section["enabled"]; ok {
		enabled, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("plugins.%s.enabled: %w", name, ErrInvalidEnabled)
		}
		pc.Enabled = enabled
	}

	if v, ok := section["settings"]; ok {
		settings, isMap := v.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("plugins.%s.settings: %w", name, ErrInvalidSection)
		}
		pc.Settings = loader.Clone(settings)
	}

	return pc, nil
}

// GetPluginConfig returns a copy of the plugin's loaded configuration.
func (s *Store) GetPluginConfig(name string) (*PluginConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pc, ok := s.plugins[name]
	if !ok {
		return nil, false
	}

	return &PluginConfig{
		Name:     pc.Name,
		Enabled:  pc.Enabled,
		Settings: loader.Clone(pc.Settings),
	}, true
}

// GetSetting returns a plugin setting, falling back to registered defaults.
func (s *Store) GetSetting(pluginName, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pc, ok := s.plugins[pluginName]; ok {
		if v, ok := pc.Settings[key]; ok {
			return v, true
		}
	}
	v, ok := s.defaults[pluginName][key]
	return v, ok
}

// SetSetting sets a plugin setting in the current snapshot.
// The value is lost on the next Reload unless a source also provides it.
func (s *Store) SetSetting(pluginName, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc, ok := s.plugins[pluginName]
	if !ok {
		pc = &PluginConfig{Name: pluginName, Enabled: true, Settings: make(map[string]any)}
		s.plugins[pluginName] = pc
	}
	pc.Settings[key] = value
}

// SetDefaults registers fallback settings for a plugin.
// Defaults survive Reload and are shadowed by any loaded value.
func (s *Store) SetDefaults(pluginName string, defaults map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.defaults[pluginName] = loader.Clone(defaults)
}

// IsEnabled returns whether a plugin is enabled.
// Plugins without configuration are enabled.
func (s *Store) IsEnabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pc, ok := s.plugins[name]
	return !ok || pc.Enabled
}

// Scope returns a read-only view of one plugin's settings.
func (s *Store) Scope(pluginName string) *Scope {
	return &Scope{store: s, plugin: pluginName}
}

// Scope is a plugin-scoped view of the store.
type Scope struct {
	store  *Store
	plugin string
}

// Plugin returns the plugin name this scope is bound to.
func (c *Scope) Plugin() string {
	return c.plugin
}

// Get returns the current value for key, or nil when it is absent.
func (c *Scope) Get(key string) any {
	v, _ := c.store.GetSetting(c.plugin, key)
	return v
}

// Lookup returns the current value for key and whether it was found.
func (c *Scope) Lookup(key string) (any, bool) {
	return c.store.GetSetting(c.plugin, key)
}
