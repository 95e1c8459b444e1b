// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import "github.com/gogpu/lattice/internal/wgsl"

// StageKind selects which half of a program a stage implements.
type StageKind int

const (
	// Position stages place vertices in clip space.
	Position StageKind = iota + 1
	// Pixel stages produce a color for every covered pixel.
	Pixel
)

func (k StageKind) String() string {
	switch k {
	case Position:
		return "position"
	case Pixel:
		return "pixel"
	default:
		return "unknown"
	}
}

func (k StageKind) wgslStage() wgsl.Stage {
	if k == Position {
		return wgsl.StageVertex
	}
	return wgsl.StageFragment
}

// Stage is a compiled unit waiting to be linked. It belongs to the Manager
// that compiled it and is released when a Link consumes it.
type Stage struct {
	id       uint32
	mgr      *Manager
	kind     StageKind
	source   string
	words    []uint32
	module   *wgsl.Module
	entry    *wgsl.EntryPoint
	kernel   registryEntry
	released bool
}

// Kind returns the stage kind.
func (s *Stage) Kind() StageKind { return s.kind }

// Source returns the stage source text.
func (s *Stage) Source() string { return s.source }

// Compiled reports whether the stage holds backend code. A stage handed
// out by CompileStage is always compiled until it is released.
func (s *Stage) Compiled() bool { return !s.released && len(s.words) > 0 }

// Released reports whether the stage has been consumed or freed.
func (s *Stage) Released() bool { return s.released }

// EntryPoint returns the name of the function the stage runs.
func (s *Stage) EntryPoint() string { return s.entry.Name }

// Code returns the compiled SPIR-V words. The slice must not be modified.
func (s *Stage) Code() []uint32 { return s.words }

func (s *Stage) release() {
	if s.released {
		return
	}
	s.released = true
	s.words = nil
	s.module = nil
	if s.mgr != nil {
		delete(s.mgr.stages, s.id)
	}
}
