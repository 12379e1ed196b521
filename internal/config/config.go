package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/pressgreet/internal/config/loader"
)

// DefaultEnvPrefix is the prefix for configuration environment variables.
const DefaultEnvPrefix = "PRESSGREET_"

// Options configures where a Store reads its configuration.
type Options struct {
	// Path is the configuration file. Empty means no file.
	Path string

	// EnvPrefix enables the environment overlay when non-empty.
	EnvPrefix string

	// FS overrides the file system used to read Path.
	FS loader.FileSystem
}

// Store holds the configuration snapshot for all plugins.
//
// Store is safe for concurrent use. Reload replaces the snapshot atomically;
// readers see either the old or the new one, never a mix.
type Store struct {
	mu sync.RWMutex

	opts Options

	logLevel string

	// plugins maps plugin names to their loaded configuration
	plugins map[string]*PluginConfig

	// defaults holds manifest-provided settings, kept across reloads
	defaults map[string]map[string]any
}

// NewStore creates an empty store with no backing sources.
func NewStore() *Store {
	return &Store{
		plugins:  make(map[string]*PluginConfig),
		defaults: make(map[string]map[string]any),
	}
}

// Load builds a store from the configured sources.
// A missing file is not an error.
func Load(opts Options) (*Store, error) {
	s := NewStore()
	s.opts = opts
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the configuration file path, if any.
func (s *Store) Path() string {
	return s.opts.Path
}

// Reload re-reads every source. On error the previous snapshot is kept.
func (s *Store) Reload() error {
	data, err := s.read()
	if err != nil {
		return err
	}
	return s.Apply(data)
}

func (s *Store) read() (map[string]any, error) {
	data := make(map[string]any)

	if s.opts.Path != "" {
		l, err := loader.ForPath(s.opts.FS, s.opts.Path)
		if err != nil {
			return nil, err
		}
		fileData, err := l.Load()
		if err != nil {
			return nil, err
		}
		data = loader.DeepMerge(data, fileData)
	}

	if s.opts.EnvPrefix != "" {
		envData, err := loader.NewEnvLoader(s.opts.EnvPrefix).Load()
		if err != nil {
			return nil, err
		}
		data = loader.DeepMerge(data, envData)
	}

	return data, nil
}

// Apply replaces the snapshot with the contents of a raw configuration map.
func (s *Store) Apply(data map[string]any) error {
	logLevel, err := parseLogging(data["logging"])
	if err != nil {
		return err
	}
	plugins, err := parsePlugins(data["plugins"])
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logLevel = logLevel
	s.plugins = plugins
	return nil
}

func parseLogging(raw any) (string, error) {
	if raw == nil {
		return "", nil
	}
	section, ok := raw.(map[string]any)
	if !ok {
		return "", fmt.Errorf("logging: %w", ErrInvalidSection)
	}
	level, _ := section["level"].(string)
	return level, nil
}

func parsePlugins(raw any) (map[string]*PluginConfig, error) {
	plugins := make(map[string]*PluginConfig)
	if raw == nil {
		return plugins, nil
	}

	section, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("plugins: %w", ErrInvalidSection)
	}

	for name, v := range section {
		pc, err := parsePluginConfig(name, v)
		if err != nil {
			return nil, err
		}
		plugins[name] = pc
	}
	return plugins, nil
}

// LogLevel returns the configured log level, or "" when unset.
func (s *Store) LogLevel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logLevel
}

// Plugins returns the names of all configured plugins, sorted.
func (s *Store) Plugins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.plugins))
	for name := range s.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
