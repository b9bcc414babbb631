package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Factory builds a fresh Plugin instance with its default parameters; every
// call must return an independent instance so a tree can hold many nodes of
// the same plugin_name.
type Factory func() Plugin

// descriptor is the on-disk plugin search-path record: a directory of
// descriptor files tells the registry which plugin_names it should expect
// to find compiled in, allowing Collection.DiscoverDir to flag missing
// registrations without requiring Go's static linker to load arbitrary
// code at runtime (unlike the original's dynamic module import).
type descriptor struct {
	PluginName string `yaml:"plugin_name"`
	PluginType string `yaml:"plugin_type"`
}

// Collection is the process-wide plugin_name -> Factory registry.
// Concrete plugin packages call Register from an init() function; this
// mirrors the original's discovery-based registration while staying
// compatible with Go's static compilation model.
type Collection struct {
	mu    sync.RWMutex
	byKey map[string]Factory
}

var global = &Collection{byKey: make(map[string]Factory)}

// Register binds name to factory in the process-wide collection. Returns
// an error if name is already bound, unless override is true.
func Register(name string, factory Factory, override bool) error {
	return global.Register(name, factory, override)
}

// Get returns the global collection's factory for name, or nil.
func Get(name string) Factory { return global.Get(name) }

// Global returns the process-wide Collection.
func Global() *Collection { return global }

// NewCollection builds an empty, independent Collection (tests use this to
// avoid mutating process-wide state).
func NewCollection() *Collection {
	return &Collection{byKey: make(map[string]Factory)}
}

// Register binds name to factory, failing unless override is true when
// name is already bound.
func (c *Collection) Register(name string, factory Factory, override bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byKey[name]; exists && !override {
		return fmt.Errorf("plugin %q already registered", name)
	}
	c.byKey[name] = factory
	return nil
}

// Get returns the factory for name, or nil if unregistered.
func (c *Collection) Get(name string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byKey[name]
}

// Names returns every registered plugin_name.
func (c *Collection) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		out = append(out, k)
	}
	return out
}

// New constructs a fresh Plugin instance for name, or an error if
// unregistered.
func (c *Collection) New(name string) (Plugin, error) {
	f := c.Get(name)
	if f == nil {
		return nil, fmt.Errorf("plugin %q is not registered", name)
	}
	return f(), nil
}

// DiscoverDir walks dir for *.yaml plugin descriptors and reports any whose
// plugin_name has no registered Factory, matching the original's
// directory-scan discovery step as a startup consistency check rather than
// a loader (Go plugin code is registered via Register at init time, not
// discovered by reading the filesystem).
func (c *Collection) DiscoverDir(dir string) ([]string, error) {
	var missing []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var desc descriptor
		if err := yaml.Unmarshal(data, &desc); err != nil {
			return fmt.Errorf("parsing plugin descriptor %s: %w", path, err)
		}
		if c.Get(desc.PluginName) == nil {
			missing = append(missing, desc.PluginName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return missing, nil
}
