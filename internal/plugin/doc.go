// Package plugin provides the plugin contract and manager for the renderer.
//
// A plugin is set up exactly once. During Setup it registers handlers on
// named hooks; afterwards the manager runs those hooks as content moves
// through the render pipeline.
//
// # Writing a Plugin
//
// Plugins receive their configuration through the Config capability at
// construction time, so they never reach for global state:
//
//	type Shout struct{ cfg plugin.Config }
//
//	func (s *Shout) Name() string { return "shout" }
//
//	func (s *Shout) Setup(r plugin.HookRegistrar) error {
//	    return r.RegisterHook(hook.PreRenderContent, hook.Func(strings.ToUpper))
//	}
//
//	mgr := plugin.NewManager(store)
//	_ = mgr.Register("shout", func(cfg plugin.Config) (plugin.Plugin, error) {
//	    return &Shout{cfg: cfg}, nil
//	})
//	if err := mgr.SetupAll(); err != nil {
//	    log.Fatal(err)
//	}
//	out, err := mgr.Render("my post body")
//
// # Script Plugins
//
// Plugins can also be written in Lua (see the lua sub-package). Script
// plugins live in their own directory with a plugin.toml manifest:
//
//	plugins/
//	└── shout/
//	    ├── plugin.toml
//	    └── init.lua
//
// Discover finds these directories and returns their manifests.
package plugin
