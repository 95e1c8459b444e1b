// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"strconv"
	"strings"

	"github.com/gogpu/lattice"
)

// Uniforms is an immutable snapshot of a program's parameter values, taken
// once per frame so that every pixel of the frame observes the same values.
type Uniforms struct {
	values []float32
}

// Float returns the value at loc, or 0 for a negative location.
func (u Uniforms) Float(loc int) float32 {
	if loc < 0 || loc >= len(u.values) {
		return 0
	}
	return u.values[loc]
}

// Len returns the number of float components in the snapshot.
func (u Uniforms) Len() int { return len(u.values) }

// Attribute is a per-vertex input of a program's position stage.
type Attribute struct {
	Name     string
	Location int
	Type     string
}

type field struct {
	path   string
	typ    string
	offset int
	size   int
	active bool
}

// Program is a linked pair of a position stage and a pixel stage.
type Program struct {
	id       uint32
	mgr      *Manager
	linked   bool
	released bool
	log      string

	vertexEntry string
	pixelEntry  string
	attributes  []Attribute

	fields []field
	byName map[string]int
	values []float32

	position PositionFunc
	pixel    PixelFunc
}

// ID returns the program handle, unique within its Manager.
func (p *Program) ID() uint32 { return p.id }

// Linked reports whether the program linked and has not been released.
func (p *Program) Linked() bool { return p != nil && p.linked && !p.released }

// Log returns the link warnings, one per line: position outputs the pixel
// stage ignores and uniforms no stage reads. It is empty for a clean link.
func (p *Program) Log() string { return p.log }

// Attributes returns the vertex inputs of the position stage.
func (p *Program) Attributes() []Attribute {
	return append([]Attribute(nil), p.attributes...)
}

// AttributeLocation returns the location of the named vertex input, or -1.
func (p *Program) AttributeLocation(name string) int {
	for _, a := range p.attributes {
		if a.Name == name {
			return a.Location
		}
	}
	return -1
}

// Slot resolves a named parameter. See Manager.ResolveSlot.
func (p *Program) Slot(name string) Slot {
	if !p.Linked() {
		return Slot{name: name}
	}
	i, ok := p.byName[name]
	if !ok || !p.fields[i].active {
		return Slot{name: name}
	}
	f := p.fields[i]
	return Slot{prog: p, name: name, offset: f.offset, size: f.size}
}

// Snapshot copies the current parameter values.
func (p *Program) Snapshot() Uniforms {
	return Uniforms{values: append([]float32(nil), p.values...)}
}

// Position runs the position kernel.
func (p *Program) Position(v Vertex, u Uniforms) [4]float32 {
	return p.position(v, u)
}

// Shade runs the pixel kernel.
func (p *Program) Shade(f Fragment, u Uniforms) (lattice.RGBA, bool) {
	return p.pixel(f, u)
}

// Location implements Layout for the program's kernels.
func (p *Program) Location(name string) int {
	i, ok := p.byName[name]
	if !ok || !p.fields[i].active {
		return -1
	}
	return p.fields[i].offset
}

func (p *Program) release() {
	if p.released {
		return
	}
	p.released = true
	p.values = nil
	if p.mgr != nil {
		delete(p.mgr.programs, p.id)
		if p.mgr.active == p {
			p.mgr.active = nil
		}
	}
}

// Slot is a named write target inside a program. The zero Slot, and any
// slot resolved for a name the program does not read, is absent: Set on
// it does nothing.
type Slot struct {
	prog   *Program
	name   string
	offset int
	size   int
}

// Name returns the name the slot was resolved with.
func (s Slot) Name() string { return s.name }

// Present reports whether writes reach the program.
func (s Slot) Present() bool {
	return s.prog != nil && s.size > 0 && !s.prog.released
}

// Set writes up to Size components starting at the slot. Extra values
// are ignored and missing ones keep their previous value.
func (s Slot) Set(v ...float32) {
	if !s.Present() {
		return
	}
	copy(s.prog.values[s.offset:s.offset+s.size], v)
}

// Size returns the number of float components behind the slot.
func (s Slot) Size() int {
	if !s.Present() {
		return 0
	}
	return s.size
}

// components returns the number of float values a WGSL type occupies on
// the CPU side, or 0 for types a slot cannot address.
func components(typ string) int {
	typ = strings.ReplaceAll(typ, " ", "")
	switch typ {
	case "f32", "i32", "u32", "bool":
		return 1
	}
	// Shorthand aliases: vec3f, mat4x4f, ...
	if n := len(typ); n > 0 && strings.ContainsRune("fiuh", rune(typ[n-1])) && !strings.Contains(typ, "<") {
		typ = typ[:n-1]
	}
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	switch {
	case strings.HasPrefix(typ, "vec"):
		n, err := strconv.Atoi(typ[3:])
		if err != nil || n < 2 || n > 4 {
			return 0
		}
		return n
	case strings.HasPrefix(typ, "mat"):
		cols, rows, ok := strings.Cut(typ[3:], "x")
		if !ok {
			return 0
		}
		c, err1 := strconv.Atoi(cols)
		r, err2 := strconv.Atoi(rows)
		if err1 != nil || err2 != nil || c < 2 || c > 4 || r < 2 || r > 4 {
			return 0
		}
		return c * r
	}
	return 0
}
