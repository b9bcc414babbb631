package results

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pydidas/pydidas-go/internal/dataset"
)

// SinkMetadata is the node-level bookkeeping a Sink persists alongside a
// composite: the original's node/label/data_label/plugin_name/node_id/
// scan_title envelope.
type SinkMetadata struct {
	NodeID     int
	Label      string
	DataLabel  string
	PluginName string
	ScanTitle  string
}

// Sink is the metaclass-driven I/O registry's capability set: every
// concrete saver/loader declares a format_name, the extensions it accepts
// on import/export, and which composite dimensionalities it supports (nil
// means "any"). The registry dispatches by extension, exactly as the
// original's metaclass-populated registry does, without relying on
// declaration order.
type Sink interface {
	FormatName() string
	ExtensionsImport() []string
	ExtensionsExport() []string
	Dimensions() []int

	ExportToFile(path string, d *dataset.Dataset, meta SinkMetadata) error
	ImportFromFile(path string) (*dataset.Dataset, SinkMetadata, error)
}

// Registry maps format names and file extensions to Sinks, auto-populated
// by Register calls from each concrete sink package's init().
type Registry struct {
	mu         sync.RWMutex
	byFormat   map[string]Sink
	byImportExt map[string]Sink
	byExportExt map[string]Sink
}

var global = NewRegistry()

// Global returns the process-wide Registry.
func Global() *Registry { return global }

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byFormat:    make(map[string]Sink),
		byImportExt: make(map[string]Sink),
		byExportExt: make(map[string]Sink),
	}
}

// Register binds sink under its FormatName and every extension it
// declares. Returns an error on a format-name or extension collision.
func (r *Registry) Register(sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFormat[sink.FormatName()]; exists {
		return fmt.Errorf("result format %q already registered", sink.FormatName())
	}
	for _, ext := range sink.ExtensionsImport() {
		if _, exists := r.byImportExt[ext]; exists {
			return fmt.Errorf("import extension %q already bound to a different format", ext)
		}
	}
	for _, ext := range sink.ExtensionsExport() {
		if _, exists := r.byExportExt[ext]; exists {
			return fmt.Errorf("export extension %q already bound to a different format", ext)
		}
	}
	r.byFormat[sink.FormatName()] = sink
	for _, ext := range sink.ExtensionsImport() {
		r.byImportExt[ext] = sink
	}
	for _, ext := range sink.ExtensionsExport() {
		r.byExportExt[ext] = sink
	}
	return nil
}

// ByFormat returns the sink registered under name, or nil.
func (r *Registry) ByFormat(name string) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byFormat[name]
}

// ByExportExtension returns the sink that exports the given extension
// (including the leading dot), or nil if none is registered for it.
func (r *Registry) ByExportExtension(ext string) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExportExt[ext]
}

// ByImportExtension returns the sink that imports the given extension, or
// nil.
func (r *Registry) ByImportExtension(ext string) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byImportExt[ext]
}

// GetStringOfFormats returns a UI file-filter string listing every
// registered format's export extensions, sorted by format name, e.g.
// "pydidas Postgres (*.pgresult);;pydidas YAML (*.yaml)".
func (r *Registry) GetStringOfFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byFormat))
	for name := range r.byFormat {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		sink := r.byFormat[name]
		exts := make([]string, len(sink.ExtensionsExport()))
		for i, e := range sink.ExtensionsExport() {
			exts[i] = "*" + e
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", name, strings.Join(exts, " ")))
	}
	return strings.Join(parts, ";;")
}
