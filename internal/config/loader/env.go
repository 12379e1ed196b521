package loader

import (
	"os"
	"strings"
)

// pluginSeparator splits the plugin name from the setting key in
// PREFIX<PLUGIN>__<KEY> variables.
const pluginSeparator = "__"

// EnvLoader loads configuration from environment variables.
//
// Mapped variables set a fixed config path. Any other prefixed variable of
// the form PREFIX<PLUGIN>__<KEY> sets plugins.<plugin>.settings.<key>, with
// both names lower-cased. Values are kept as strings.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "PRESSGREET_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "PRESSGREET_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: map[string]string{prefix + "LOG_LEVEL": "logging.level"},
		environ: os.Environ,
	}
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		if path, mapped := l.mapping[name]; mapped {
			setByPath(config, strings.Split(path, "."), value)
			continue
		}

		plugin, key, ok := strings.Cut(strings.TrimPrefix(name, l.prefix), pluginSeparator)
		if !ok || plugin == "" || key == "" {
			continue
		}
		setByPath(config, []string{"plugins", strings.ToLower(plugin), "settings", strings.ToLower(key)}, value)
	}

	return config, nil
}

// setByPath sets a value in a nested map, creating intermediate maps.
func setByPath(data map[string]any, parts []string, value any) {
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
