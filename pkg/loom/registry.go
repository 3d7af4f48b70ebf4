package loom

import "sync"

// Meta is instrumentation metadata associated with a live cell.
type Meta struct {
	ID    uint64
	Kind  string
	Label string
}

// Registry is a side table associating metadata with cells by their stable
// integer ID. It holds no reference to the cell itself, so registering a
// cell never extends its lifetime; entries are removed on the explicit
// Release returned by Observe.
type Registry struct {
	mu      sync.Mutex
	entries map[uint64]Meta
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]Meta)}
}

// defaultRegistry backs the package-level Observe.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry, the one metrics
// exporters read.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Observe records metadata for a cell and returns its idempotent release.
func (r *Registry) Observe(src Source, kind, label string) func() {
	id := src.ID()
	r.mu.Lock()
	r.entries[id] = Meta{ID: id, Kind: kind, Label: label}
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.entries, id)
			r.mu.Unlock()
		})
	}
}

// Len reports the number of observed cells.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns a copy of all entries.
func (r *Registry) Snapshot() []Meta {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Meta, 0, len(r.entries))
	for _, m := range r.entries {
		out = append(out, m)
	}
	return out
}

// Observe registers a cell with the default registry.
func Observe(src Source, kind, label string) func() {
	return defaultRegistry.Observe(src, kind, label)
}
