package loader

import (
	"reflect"
	"testing"
)

func newTestEnvLoader(env ...string) *EnvLoader {
	l := NewEnvLoader("PRESSGREET_")
	l.environ = func() []string { return env }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	l := newTestEnvLoader(
		"PRESSGREET_LOG_LEVEL=debug",
		"PRESSGREET_DJPRESS_EXAMPLE_PLUGIN__GREETING_TEXT=From Env",
		"PRESSGREET_OTHER__EMPTY=",
		"HOME=/root",
		"PRESSGREET_NOSEPARATOR=ignored",
	)

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"plugins": map[string]any{
			"djpress_example_plugin": map[string]any{
				"settings": map[string]any{"greeting_text": "From Env"},
			},
			"other": map[string]any{
				"settings": map[string]any{"empty": ""},
			},
		},
	}
	if !reflect.DeepEqual(config, expected) {
		t.Errorf("Load() = %v, expected %v", config, expected)
	}
}

func TestEnvLoader_ValuesStayStrings(t *testing.T) {
	l := newTestEnvLoader("PRESSGREET_P__N=1.50", "PRESSGREET_P__B=true")

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	settings := config["plugins"].(map[string]any)["p"].(map[string]any)["settings"].(map[string]any)
	if settings["n"] != "1.50" {
		t.Errorf("n = %#v, expected \"1.50\"", settings["n"])
	}
	if settings["b"] != "true" {
		t.Errorf("b = %#v, expected \"true\"", settings["b"])
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := newTestEnvLoader("PRESSGREET_GREETING=Hi")
	l.AddMapping("PRESSGREET_GREETING", "plugins.djpress_example_plugin.settings.greeting_text")

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	settings := config["plugins"].(map[string]any)["djpress_example_plugin"].(map[string]any)["settings"].(map[string]any)
	if settings["greeting_text"] != "Hi" {
		t.Errorf("greeting_text = %v, expected Hi", settings["greeting_text"])
	}
}
