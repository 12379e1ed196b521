// Package greeting provides the example plugin that prepends a configured
// greeting to rendered content.
package greeting

import (
	"fmt"

	"github.com/dshills/pressgreet/internal/plugin"
	"github.com/dshills/pressgreet/internal/plugin/hook"
)

// Name is the plugin identifier used for registration and configuration.
const Name = "djpress_example_plugin"

// TextKey is the setting holding the greeting text.
const TextKey = "greeting_text"

// Plugin prepends "Hello, <greeting_text>!" and a blank line to content.
// It holds no state of its own and is safe for concurrent use.
type Plugin struct {
	config plugin.Config
}

// New creates the plugin bound to its configuration.
func New(cfg plugin.Config) *Plugin {
	return &Plugin{config: cfg}
}

// Factory builds the plugin for a plugin.Manager.
func Factory(cfg plugin.Config) (plugin.Plugin, error) {
	return New(cfg), nil
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return Name
}

// Setup registers AddGreeting on the pre_render_content hook.
func (p *Plugin) Setup(r plugin.HookRegistrar) error {
	return r.RegisterHook(hook.PreRenderContent, hook.Func(p.AddGreeting))
}

// AddGreeting returns content with the greeting line prepended.
//
// The configured value is read on every call and interpolated as-is. When
// the key is absent the configuration returns nil, which renders as "<nil>".
func (p *Plugin) AddGreeting(content string) string {
	return fmt.Sprintf("Hello, %v!\n\n%s", p.config.Get(TextKey), content)
}
