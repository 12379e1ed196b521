package plugin

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/pressgreet/internal/config"
	"github.com/dshills/pressgreet/internal/plugin/hook"
)

// suffixPlugin appends its configured suffix on pre_render_content.
type suffixPlugin struct {
	name     string
	cfg      Config
	setupErr error
	setups   int
	closed   bool
}

func (p *suffixPlugin) Name() string { return p.name }

func (p *suffixPlugin) Setup(r HookRegistrar) error {
	p.setups++
	if p.setupErr != nil {
		return p.setupErr
	}
	return r.RegisterHook(hook.PreRenderContent, hook.Func(func(c string) string {
		return c + p.cfg.Get("suffix").(string)
	}))
}

func (p *suffixPlugin) Close() error {
	p.closed = true
	return nil
}

func factoryFor(p *suffixPlugin) Factory {
	return func(cfg Config) (Plugin, error) {
		p.cfg = cfg
		return p, nil
	}
}

func newStore(t *testing.T, data map[string]any) *config.Store {
	t.Helper()
	s := config.NewStore()
	require.NoError(t, s.Apply(data))
	return s
}

func TestManager_SetupAndRender(t *testing.T) {
	store := newStore(t, map[string]any{
		"plugins": map[string]any{
			"a": map[string]any{"settings": map[string]any{"suffix": "-a"}},
			"b": map[string]any{"settings": map[string]any{"suffix": "-b"}},
		},
	})
	a := &suffixPlugin{name: "a"}
	b := &suffixPlugin{name: "b"}

	m := NewManager(store)
	require.NoError(t, m.Register("a", factoryFor(a)))
	require.NoError(t, m.Register("b", factoryFor(b)))
	require.NoError(t, m.SetupAll())

	out, err := m.Render("x")
	require.NoError(t, err)
	assert.Equal(t, "x-a-b", out)
	assert.Equal(t, []string{"a", "b"}, m.Plugins())
	assert.Equal(t, 1, a.setups)
	assert.Equal(t, 1, b.setups)
}

func TestManager_ConfigIsReadAtRenderTime(t *testing.T) {
	store := newStore(t, nil)
	store.SetSetting("a", "suffix", "1")
	a := &suffixPlugin{name: "a"}

	m := NewManager(store)
	require.NoError(t, m.Register("a", factoryFor(a)))
	require.NoError(t, m.SetupAll())

	store.SetSetting("a", "suffix", "2")
	out, err := m.Render("x")
	require.NoError(t, err)
	assert.Equal(t, "x2", out)
}

func TestManager_SkipsDisabled(t *testing.T) {
	store := newStore(t, map[string]any{
		"plugins": map[string]any{"a": map[string]any{"enabled": false}},
	})
	a := &suffixPlugin{name: "a"}

	var events []ManagerEvent
	m := NewManager(store)
	m.Subscribe(func(e ManagerEvent) { events = append(events, e) })
	require.NoError(t, m.Register("a", factoryFor(a)))
	require.NoError(t, m.SetupAll())

	assert.Equal(t, 0, a.setups)
	assert.Empty(t, m.Plugins())
	require.Len(t, events, 1)
	assert.Equal(t, EventPluginSkipped, events[0].Type)
	assert.Equal(t, "a", events[0].Plugin)
}

func TestManager_SetupErrorsAreCollected(t *testing.T) {
	store := newStore(t, nil)
	store.SetSetting("ok", "suffix", "!")
	boom := errors.New("boom")

	bad := &suffixPlugin{name: "bad", setupErr: boom}
	ok := &suffixPlugin{name: "ok"}

	m := NewManager(store)
	require.NoError(t, m.Register("bad", factoryFor(bad)))
	require.NoError(t, m.Register("broken", func(Config) (Plugin, error) { return nil, errors.New("no build") }))
	require.NoError(t, m.Register("ok", factoryFor(ok)))

	err := m.SetupAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to set up 2 plugins")
	assert.True(t, bad.closed, "failed plugin should be closed")

	out, rerr := m.Render("x")
	require.NoError(t, rerr)
	assert.Equal(t, "x!", out)
	assert.Equal(t, []string{"ok"}, m.Plugins())
}

func TestManager_NameMismatch(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Register("expected", factoryFor(&suffixPlugin{name: "actual"})))

	assert.ErrorIs(t, m.SetupAll(), ErrNameMismatch)
}

func TestManager_RegisterErrors(t *testing.T) {
	m := NewManager(nil)

	assert.ErrorIs(t, m.Register("a", nil), ErrNilFactory)
	require.NoError(t, m.Register("a", factoryFor(&suffixPlugin{name: "a"})))
	assert.ErrorIs(t, m.Register("a", factoryFor(&suffixPlugin{name: "a"})), ErrAlreadyRegistered)
}

func TestManager_SetupOnlyOnce(t *testing.T) {
	store := newStore(t, nil)
	store.SetSetting("a", "suffix", "")
	a := &suffixPlugin{name: "a"}

	m := NewManager(store)
	require.NoError(t, m.Register("a", factoryFor(a)))
	require.NoError(t, m.SetupAll())

	assert.ErrorIs(t, m.SetupAll(), ErrAlreadySetUp)
	assert.ErrorIs(t, m.Register("b", factoryFor(&suffixPlugin{name: "b"})), ErrAlreadySetUp)
	assert.Equal(t, 1, a.setups)
	assert.Equal(t, 1, m.Hooks().Count(hook.PreRenderContent))
}

func TestManager_Close(t *testing.T) {
	store := newStore(t, nil)
	store.SetSetting("a", "suffix", "")
	a := &suffixPlugin{name: "a"}

	m := NewManager(store)
	require.NoError(t, m.Register("a", factoryFor(a)))
	require.NoError(t, m.SetupAll())
	require.NoError(t, m.Close())

	assert.True(t, a.closed)
	assert.Empty(t, m.Plugins())
}

func TestManager_EventHandlerPanicRecovered(t *testing.T) {
	m := NewManager(nil)
	m.Subscribe(func(ManagerEvent) { panic("boom") })
	require.NoError(t, m.Register("a", func(cfg Config) (Plugin, error) {
		return &suffixPlugin{name: "a", cfg: ConfigMap{"suffix": "."}}, nil
	}))

	assert.NotPanics(t, func() { _ = m.SetupAll() })
}

func TestManager_ConcurrentRender(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Register("upper", func(Config) (Plugin, error) {
		return &upperPlugin{}, nil
	}))
	require.NoError(t, m.SetupAll())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := m.Render("abc")
			assert.NoError(t, err)
			assert.Equal(t, "ABC", out)
		}()
	}
	wg.Wait()
}

type upperPlugin struct{}

func (upperPlugin) Name() string { return "upper" }

func (upperPlugin) Setup(r HookRegistrar) error {
	return r.RegisterHook(hook.PreRenderContent, hook.Func(strings.ToUpper))
}

func TestManagerEventType_String(t *testing.T) {
	assert.Equal(t, "setup", EventPluginSetup.String())
	assert.Equal(t, "skipped", EventPluginSkipped.String())
	assert.Equal(t, "error", EventPluginError.String())
	assert.Equal(t, "unknown", ManagerEventType(99).String())
}

func TestConfigMap_Get(t *testing.T) {
	cfg := ConfigMap{"greeting_text": "World"}
	assert.Equal(t, "World", cfg.Get("greeting_text"))
	assert.Nil(t, cfg.Get("missing"))
}
