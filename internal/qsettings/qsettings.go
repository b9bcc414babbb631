// Package qsettings implements the one process-wide mutable key/value store
// the core relies on: number of worker processes, plugin search paths, the
// last-used directory, UI font metrics, and the update-check acknowledgement
// flag. Reading a missing key returns its declared default.
package qsettings

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a thread-safe key/value store with declared defaults, persisted
// to a YAML file between process invocations.
type Store struct {
	mu       sync.RWMutex
	values   map[string]string
	defaults map[string]string
	path     string
}

func defaultValues() map[string]string {
	return map[string]string{
		"global/mp_n_workers":     "4",
		"global/plugin_paths":     "",
		"global/last_scan_dir":    "",
		"global/font_point_size":  "10",
		"global/update_check_ack": "false",
	}
}

// New creates a Store backed by path. If path is empty, a platform default
// config directory is used (os.UserConfigDir()/pydidas/qsettings.yaml).
func New(path string) *Store {
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "pydidas", "qsettings.yaml")
		}
	}
	s := &Store{
		values:   make(map[string]string),
		defaults: defaultValues(),
		path:     path,
	}
	s.load()
	return s
}

func (s *Store) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range m {
		s.values[k] = v
	}
}

// Save persists the current values to disk.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Value returns the stored value for key, or its declared default if unset.
// Returns "" if key has neither a stored value nor a declared default.
func (s *Store) Value(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return s.defaults[key]
}

// SetValue stores value under key.
func (s *Store) SetValue(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// SetDefault registers (or overrides) the declared default for key. Useful
// for tests and for plugins that introduce their own settings keys.
func (s *Store) SetDefault(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[key] = value
}
