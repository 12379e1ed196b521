// Package app wires configuration, plugins and logging into the
// pressgreet application.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/pressgreet/internal/config"
	"github.com/dshills/pressgreet/internal/plugin"
	"github.com/dshills/pressgreet/internal/plugin/greeting"
	"github.com/dshills/pressgreet/internal/plugin/lua"
)

// ErrClosed is returned when using a closed App.
var ErrClosed = errors.New("app is closed")

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML or YAML configuration file. Empty means none.
	ConfigPath string

	// PluginDirs are searched for Lua script plugins.
	PluginDirs []string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput is where logs are written. Defaults to os.Stderr.
	LogOutput io.Writer

	// EnvPrefix is the environment overlay prefix.
	// Defaults to config.DefaultEnvPrefix.
	EnvPrefix string

	// DisableEnv turns off the environment overlay.
	DisableEnv bool
}

// App renders content through the plugins' pre_render_content hooks.
type App struct {
	mu     sync.RWMutex
	closed bool

	opts    Options
	store   *config.Store
	manager *plugin.Manager
	logger  *Logger
}

// New loads configuration, registers the built-in greeting plugin and any
// script plugins found in opts.PluginDirs, and sets them all up.
func New(opts Options) (*App, error) {
	envPrefix := opts.EnvPrefix
	if envPrefix == "" {
		envPrefix = config.DefaultEnvPrefix
	}
	if opts.DisableEnv {
		envPrefix = ""
	}

	store, err := config.Load(config.Options{
		Path:      opts.ConfigPath,
		EnvPrefix: envPrefix,
	})
	if err != nil {
		return nil, NewOperationError("load config", opts.ConfigPath, err)
	}

	level := opts.LogLevel
	if level == "" {
		level = store.LogLevel()
	}
	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: opts.LogOutput,
		Prefix: "pressgreet",
	})

	a := &App{
		opts:    opts,
		store:   store,
		manager: plugin.NewManager(store),
		logger:  logger,
	}
	a.manager.Subscribe(a.logPluginEvent)

	if err := a.registerPlugins(); err != nil {
		return nil, err
	}

	if err := a.manager.SetupAll(); err != nil {
		_ = a.manager.Close()
		return nil, NewOperationError("set up", "plugins", err)
	}

	logger.Info("ready with %d plugins", len(a.manager.Plugins()))
	return a, nil
}

func (a *App) registerPlugins() error {
	if err := a.manager.Register(greeting.Name, greeting.Factory); err != nil {
		return NewOperationError("register", greeting.Name, err)
	}

	if len(a.opts.PluginDirs) == 0 {
		return nil
	}

	manifests, err := plugin.Discover(a.opts.PluginDirs...)
	if err != nil {
		a.logger.Warn("plugin discovery: %v", err)
	}
	for _, m := range manifests {
		a.store.SetDefaults(m.Name, m.Config)
		if err := a.manager.Register(m.Name, lua.Factory(m)); err != nil {
			return NewOperationError("register", m.Path(), err)
		}
		a.logger.Debug("discovered %s", m)
	}
	return nil
}

func (a *App) logPluginEvent(ev plugin.ManagerEvent) {
	log := a.logger.WithField("plugin", ev.Plugin)
	switch ev.Type {
	case plugin.EventPluginSetup:
		log.Debug("plugin set up")
	case plugin.EventPluginSkipped:
		log.Info("plugin disabled, skipping")
	case plugin.EventPluginError:
		log.Error("%v", ev.Error)
	}
}

// Render runs content through the pre_render_content hook.
func (a *App) Render(content string) (string, error) {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return "", ErrClosed
	}

	log := a.logger.WithField("render", uuid.NewString())
	out, err := a.manager.Render(content)
	if err != nil {
		log.Error("render failed: %v", err)
		return "", err
	}
	log.Debug("rendered %d bytes into %d bytes", len(content), len(out))
	return out, nil
}

// RenderFile reads path and renders its contents.
func (a *App) RenderFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", NewOperationError("read", path, err)
	}
	return a.Render(string(data))
}

// RenderReader reads r to the end and renders what it read.
func (a *App) RenderReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return a.Render(string(data))
}

// Hooks returns the registered hook names with their handler counts.
func (a *App) Hooks() map[string]int {
	reg := a.manager.Hooks()
	names := reg.Hooks()
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name] = reg.Count(name)
	}
	return counts
}

// Plugins returns the names of plugins that were set up.
func (a *App) Plugins() []string {
	return a.manager.Plugins()
}

// Store returns the configuration store.
func (a *App) Store() *config.Store {
	return a.store
}

// Logger returns the application logger.
func (a *App) Logger() *Logger {
	return a.logger
}

// Close releases plugin resources. It is safe to call more than once.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	return a.manager.Close()
}
