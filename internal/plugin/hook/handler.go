package hook

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// PreRenderContent is invoked immediately before final content rendering.
const PreRenderContent = "pre_render_content"

// Registry errors.
var (
	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("hook handler is nil")

	// ErrEmptyName is returned when registering a handler without a hook name.
	ErrEmptyName = errors.New("hook name is empty")
)

// Handler transforms content at a hook point.
type Handler func(content string) (string, error)

// Func adapts a plain content transformation into a Handler.
func Func(fn func(content string) string) Handler {
	if fn == nil {
		return nil
	}
	return func(content string) (string, error) {
		return fn(content), nil
	}
}

// Registry maps hook names to their handlers.
// It is safe for concurrent use; handlers run outside the lock.
type Registry struct {
	mu sync.RWMutex

	// hooks maps hook names to handlers in registration order
	hooks map[string][]Handler
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string][]Handler),
	}
}

// RegisterHook appends a handler to the named hook.
func (r *Registry) RegisterHook(name string, h Handler) error {
	if name == "" {
		return ErrEmptyName
	}
	if h == nil {
		return fmt.Errorf("hook %q: %w", name, ErrNilHandler)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[name] = append(r.hooks[name], h)
	return nil
}

// Unregister removes all handlers for a hook and returns how many were dropped.
func (r *Registry) Unregister(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.hooks[name])
	delete(r.hooks, name)
	return n
}

// Run passes content through every handler registered for name.
// With no handlers the content is returned unchanged. The first handler
// error stops the chain.
func (r *Registry) Run(name, content string) (string, error) {
	r.mu.RLock()
	handlers := make([]Handler, len(r.hooks[name]))
	copy(handlers, r.hooks[name])
	r.mu.RUnlock()

	for _, h := range handlers {
		out, err := h(content)
		if err != nil {
			return "", fmt.Errorf("hook %q: %w", name, err)
		}
		content = out
	}
	return content, nil
}

// Has returns true if at least one handler is registered for name.
func (r *Registry) Has(name string) bool {
	return r.Count(name) > 0
}

// Count returns the number of handlers registered for name.
func (r *Registry) Count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[name])
}

// Hooks returns the names of all hooks with handlers, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
