// Package config provides plugin configuration storage for the renderer.
//
// Configuration is read from a TOML or YAML file and overlaid with
// environment variables, which take precedence:
//
//	[logging]
//	level = "info"
//
//	[plugins.djpress_example_plugin]
//	enabled = true
//
//	[plugins.djpress_example_plugin.settings]
//	greeting_text = "World"
//
// Each plugin sees only its own settings through a Scope. Scopes read the
// store at call time, so a Reload is visible to the next lookup.
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, YAML, environment variables)
//   - watcher: File watching for live reload
package config
