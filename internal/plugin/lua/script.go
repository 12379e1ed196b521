package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pressgreet/internal/plugin"
	"github.com/dshills/pressgreet/internal/plugin/hook"
)

// ScriptPlugin is a plugin implemented by a Lua script.
type ScriptPlugin struct {
	manifest *plugin.Manifest
	state    *State
}

// Load creates a state for the manifest's script and executes it.
// The script must define a global setup function.
func Load(m *plugin.Manifest, cfg plugin.Config, opts ...StateOption) (*ScriptPlugin, error) {
	if m == nil {
		return nil, plugin.ErrNilManifest
	}

	state := NewState(opts...)
	state.RegisterModule("config", map[string]lua.LGFunction{
		"get": func(L *lua.LState) int {
			key := L.CheckString(1)
			L.Push(ToLuaValue(L, cfg.Get(key)))
			return 1
		},
	})

	if err := state.DoFile(m.MainPath()); err != nil {
		_ = state.Close()
		return nil, fmt.Errorf("loading %s: %w", m.MainPath(), err)
	}
	if state.GetGlobal("setup").Type() != lua.LTFunction {
		_ = state.Close()
		return nil, fmt.Errorf("%s: %w", m.MainPath(), ErrNoSetup)
	}

	return &ScriptPlugin{manifest: m, state: state}, nil
}

// Factory returns a plugin factory that loads the manifest's script.
func Factory(m *plugin.Manifest, opts ...StateOption) plugin.Factory {
	return func(cfg plugin.Config) (plugin.Plugin, error) {
		return Load(m, cfg, opts...)
	}
}

// Name returns the manifest name.
func (p *ScriptPlugin) Name() string {
	return p.manifest.Name
}

// Manifest returns the plugin manifest.
func (p *ScriptPlugin) Manifest() *plugin.Manifest {
	return p.manifest
}

// Setup calls the script's setup function with a registry table exposing
// register_hook. Both registry.register_hook(...) and
// registry:register_hook(...) are accepted.
func (p *ScriptPlugin) Setup(r plugin.HookRegistrar) error {
	var registerErr error

	registry := p.state.NewModule(map[string]lua.LGFunction{
		"register_hook": func(L *lua.LState) int {
			base := 1
			if L.Get(1).Type() == lua.LTTable {
				base = 2
			}
			name := L.CheckString(base)
			fn := L.CheckFunction(base + 1)

			if err := r.RegisterHook(name, p.handler(fn)); err != nil {
				registerErr = err
				L.RaiseError("%s", err.Error())
			}
			return 0
		},
	})

	if _, err := p.state.Call("setup", registry); err != nil {
		if registerErr != nil {
			return registerErr
		}
		return fmt.Errorf("setup: %w", err)
	}
	return nil
}

// handler adapts a Lua function into a hook handler.
func (p *ScriptPlugin) handler(fn *lua.LFunction) hook.Handler {
	return func(content string) (string, error) {
		results, err := p.state.CallFunction(fn, lua.LString(content))
		if err != nil {
			return "", fmt.Errorf("plugin %q: %w", p.Name(), err)
		}
		if len(results) == 0 {
			return "", fmt.Errorf("plugin %q: %w, got nothing", p.Name(), ErrBadReturn)
		}
		out, ok := results[0].(lua.LString)
		if !ok {
			return "", fmt.Errorf("plugin %q: %w, got %s", p.Name(), ErrBadReturn, results[0].Type())
		}
		return string(out), nil
	}
}

// Close releases the plugin's Lua state.
func (p *ScriptPlugin) Close() error {
	return p.state.Close()
}
