// Package lua runs plugins written as Lua scripts.
//
// A script plugin defines a global setup function. The host calls it once
// with a registry table, and the script binds Lua functions to hooks:
//
//	-- init.lua
//	function setup(registry)
//	    registry:register_hook("pre_render_content", function(content)
//	        return content .. (config.get("suffix") or "")
//	    end)
//	end
//
// Settings are read through the global config module; config.get returns
// nil for absent keys. Each plugin gets its own sandboxed state with only
// the base, table, string and math libraries opened.
package lua
