// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"sort"
	"sync"

	"github.com/gogpu/lattice"
)

// Vertex carries the attributes of one vertex.
type Vertex struct {
	Pos [3]float32
}

// Fragment is the window-space position of a pixel center. The origin
// is the bottom-left corner of the target.
type Fragment struct {
	X, Y float32
}

// PositionFunc maps a vertex to clip space (x, y, z, w).
type PositionFunc func(v Vertex, u Uniforms) [4]float32

// PixelFunc shades one fragment. It returns false when it writes no
// color, leaving the cleared background in place.
type PixelFunc func(f Fragment, u Uniforms) (lattice.RGBA, bool)

// Layout locates uniform values inside a linked program. Location returns
// -1 for names that are absent or never read.
type Layout interface {
	Location(name string) int
}

// PositionKernel builds the position function for a linked program.
// It runs once per Link, so name lookups belong here and not in the
// returned function.
type PositionKernel func(l Layout) PositionFunc

// PixelKernel builds the pixel function for a linked program.
type PixelKernel func(l Layout) PixelFunc

type registryEntry struct {
	name     string
	kind     StageKind
	position PositionKernel
	pixel    PixelKernel
}

// globalRegistry is the default registry.
var globalRegistry = NewRegistry()

// Registry maps entry point names to kernels.
//
// Example registration:
//
//	func init() {
//	    pipeline.RegisterPixel("lattice_main", latticeKernel)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry creates an empty registry.
// Most code should use the global registry via RegisterPosition and RegisterPixel.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// RegisterPosition binds a position kernel to an entry point name in the
// global registry.
func RegisterPosition(entry string, k PositionKernel) {
	globalRegistry.RegisterPosition(entry, k)
}

// RegisterPixel binds a pixel kernel to an entry point name in the global
// registry.
func RegisterPixel(entry string, k PixelKernel) {
	globalRegistry.RegisterPixel(entry, k)
}

// RegisterPosition binds a position kernel to an entry point name.
// Registering a name again replaces the previous kernel.
func (r *Registry) RegisterPosition(entry string, k PositionKernel) {
	r.register(registryEntry{name: entry, kind: Position, position: k})
}

// RegisterPixel binds a pixel kernel to an entry point name.
func (r *Registry) RegisterPixel(entry string, k PixelKernel) {
	r.register(registryEntry{name: entry, kind: Pixel, pixel: k})
}

func (r *Registry) register(e registryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]registryEntry)
	}
	r.entries[e.name] = e
}

// Unregister removes an entry point from the registry.
func (r *Registry) Unregister(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, entry)
}

// List returns the registered entry point names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(entry string, kind StageKind) (registryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entry]
	if !ok || e.kind != kind {
		return registryEntry{}, false
	}
	return e, true
}
