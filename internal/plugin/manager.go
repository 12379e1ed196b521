package plugin

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dshills/pressgreet/internal/config"
	"github.com/dshills/pressgreet/internal/plugin/hook"
)

// Manager registers plugins, sets them up, and runs the render hooks.
type Manager struct {
	mu sync.RWMutex

	store *config.Store
	hooks *hook.Registry

	// Registrations in order
	registrations []registration
	names         map[string]bool

	// Plugins that completed Setup, in setup order
	plugins []Plugin
	setUp   bool

	eventHandlers []EventHandler
}

type registration struct {
	name    string
	factory Factory
}

// EventHandler handles plugin manager events.
// Handlers must be non-blocking and should not call back into the Manager.
// Panics in handlers are recovered.
type EventHandler func(event ManagerEvent)

// ManagerEvent represents a plugin manager event.
type ManagerEvent struct {
	Type   ManagerEventType
	Plugin string
	Error  error
}

// ManagerEventType is the type of manager event.
type ManagerEventType int

const (
	// EventPluginSetup is emitted when a plugin completes Setup.
	EventPluginSetup ManagerEventType = iota
	// EventPluginSkipped is emitted when a disabled plugin is skipped.
	EventPluginSkipped
	// EventPluginError is emitted when building or setting up a plugin fails.
	EventPluginError
)

// String returns a string representation of the event type.
func (t ManagerEventType) String() string {
	switch t {
	case EventPluginSetup:
		return "setup"
	case EventPluginSkipped:
		return "skipped"
	case EventPluginError:
		return "error"
	default:
		return "unknown"
	}
}

// NewManager creates a plugin manager that reads plugin settings from store.
func NewManager(store *config.Store) *Manager {
	if store == nil {
		store = config.NewStore()
	}
	return &Manager{
		store: store,
		hooks: hook.NewRegistry(),
		names: make(map[string]bool),
	}
}

// Register adds a plugin factory under name.
func (m *Manager) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("plugin %q: %w", name, ErrNilFactory)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setUp {
		return fmt.Errorf("plugin %q: %w", name, ErrAlreadySetUp)
	}
	if m.names[name] {
		return fmt.Errorf("plugin %q: %w", name, ErrAlreadyRegistered)
	}

	m.names[name] = true
	m.registrations = append(m.registrations, registration{name: name, factory: factory})
	return nil
}

// SetupAll builds every enabled plugin and calls its Setup once, in
// registration order. Disabled plugins are skipped. A failing plugin does
// not stop the others; all failures are returned together.
func (m *Manager) SetupAll() error {
	m.mu.Lock()
	if m.setUp {
		m.mu.Unlock()
		return ErrAlreadySetUp
	}
	m.setUp = true
	regs := make([]registration, len(m.registrations))
	copy(regs, m.registrations)
	m.mu.Unlock()

	var setupErrors []error
	for _, reg := range regs {
		if !m.store.IsEnabled(reg.name) {
			m.emitEvent(ManagerEvent{Type: EventPluginSkipped, Plugin: reg.name})
			continue
		}

		p, err := m.setupOne(reg)
		if err != nil {
			err = fmt.Errorf("plugin %q: %w", reg.name, err)
			setupErrors = append(setupErrors, err)
			m.emitEvent(ManagerEvent{Type: EventPluginError, Plugin: reg.name, Error: err})
			continue
		}

		m.mu.Lock()
		m.plugins = append(m.plugins, p)
		m.mu.Unlock()
		m.emitEvent(ManagerEvent{Type: EventPluginSetup, Plugin: reg.name})
	}

	if len(setupErrors) > 0 {
		return fmt.Errorf("failed to set up %d plugins: %w", len(setupErrors), errors.Join(setupErrors...))
	}
	return nil
}

func (m *Manager) setupOne(reg registration) (Plugin, error) {
	p, err := reg.factory(m.store.Scope(reg.name))
	if err != nil {
		return nil, err
	}
	if p.Name() != reg.name {
		closePlugin(p)
		return nil, fmt.Errorf("%w: got %q", ErrNameMismatch, p.Name())
	}
	if err := p.Setup(m.hooks); err != nil {
		closePlugin(p)
		return nil, err
	}
	return p, nil
}

// Render runs content through the pre_render_content hook.
func (m *Manager) Render(content string) (string, error) {
	return m.hooks.Run(hook.PreRenderContent, content)
}

// Hooks returns the hook registry plugins register on.
func (m *Manager) Hooks() *hook.Registry {
	return m.hooks
}

// Plugins returns the names of plugins that completed Setup.
func (m *Manager) Plugins() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.Name()
	}
	return names
}

// Subscribe registers a handler for manager events.
func (m *Manager) Subscribe(handler EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventHandlers = append(m.eventHandlers, handler)
}

// Close releases plugins that hold resources.
func (m *Manager) Close() error {
	m.mu.Lock()
	plugins := m.plugins
	m.plugins = nil
	m.mu.Unlock()

	var errs []error
	for _, p := range plugins {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("plugin %q: %w", p.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func closePlugin(p Plugin) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}

// emitEvent sends an event to all handlers with panic recovery.
func (m *Manager) emitEvent(event ManagerEvent) {
	m.mu.RLock()
	handlers := make([]EventHandler, len(m.eventHandlers))
	copy(handlers, m.eventHandlers)
	m.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() { _ = recover() }()
			h(event)
		}()
	}
}
