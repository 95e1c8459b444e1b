// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/lattice"
	"github.com/gogpu/lattice/internal/wgsl"
)

// State is the lifecycle state of a Manager.
type State int

const (
	// Empty: nothing compiled yet, or stages compiled for one kind only.
	Empty State = iota
	// StagesCompiled: at least one position and one pixel stage are held.
	StagesCompiled
	// Linked: a program linked and none is active.
	Linked
	// Active: a program is selected for drawing.
	Active
	// Failed: a compile or link attempt failed. Terminal.
	Failed
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case StagesCompiled:
		return "stages-compiled"
	case Linked:
		return "linked"
	case Active:
		return "active"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	compiler Compiler
	registry *Registry
}

// WithCompiler replaces the naga compiler, e.g. with a stub in tests.
func WithCompiler(c Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// WithRegistry makes the Manager bind kernels from r instead of the
// global registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// Manager owns stages and programs and tracks which program is active.
type Manager struct {
	compiler Compiler
	registry *Registry

	state    State
	nextID   uint32
	stages   map[uint32]*Stage
	programs map[uint32]*Program
	active   *Program
}

// NewManager creates a Manager in the Empty state.
func NewManager(opts ...Option) *Manager {
	o := options{compiler: NagaCompiler{}, registry: globalRegistry}
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		compiler: o.compiler,
		registry: o.registry,
		stages:   make(map[uint32]*Stage),
		programs: make(map[uint32]*Program),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// LiveStages returns the number of compiled stages not yet consumed.
func (m *Manager) LiveStages() int { return len(m.stages) }

// LivePrograms returns the number of programs not yet released.
func (m *Manager) LivePrograms() int { return len(m.programs) }

// Active returns the active program, or nil.
func (m *Manager) Active() *Program { return m.active }

func (m *Manager) id() uint32 {
	m.nextID++
	return m.nextID
}

func (m *Manager) fail() {
	m.state = Failed
}

// CompileStage compiles source as a stage of the given kind.
//
// On failure the stage is released before returning, the Manager moves to
// Failed and the error is a *CompileError with a non-empty log.
func (m *Manager) CompileStage(source string, kind StageKind) (*Stage, error) {
	if m.state == Failed {
		return nil, ErrManagerFailed
	}
	if kind != Position && kind != Pixel {
		return nil, fmt.Errorf("pipeline: unknown stage kind %d", int(kind))
	}

	s, err := m.compile(source, kind)
	if err != nil {
		var ce *CompileError
		if !errors.As(err, &ce) {
			ce = &CompileError{Kind: kind, Log: err.Error(), Err: err}
		}
		if strings.TrimSpace(ce.Log) == "" {
			ce.Log = "backend rejected the source without diagnostics"
		}
		m.fail()
		lattice.Logger().Warn("pipeline: stage compile failed",
			"kind", kind.String(), "log", ce.Log)
		return nil, ce
	}

	m.stages[s.id] = s
	m.advance()
	lattice.Logger().Debug("pipeline: stage compiled",
		"kind", kind.String(), "entry", s.entry.Name, "words", len(s.words))
	return s, nil
}

func (m *Manager) compile(source string, kind StageKind) (*Stage, error) {
	words, err := m.compiler.Compile(source)
	if err != nil {
		return nil, &CompileError{Kind: kind, Log: err.Error(), Err: err}
	}
	if len(words) == 0 {
		return nil, &CompileError{Kind: kind, Log: "backend produced no code"}
	}

	mod, err := wgsl.Reflect(source)
	if err != nil {
		return nil, &CompileError{Kind: kind, Log: err.Error(), Err: err}
	}
	entry, ok := mod.EntryPoint(kind.wgslStage())
	if !ok {
		return nil, &CompileError{Kind: kind, Log: fmt.Sprintf("no @%s entry point", kind.wgslStage())}
	}
	kernel, ok := m.registry.lookup(entry.Name, kind)
	if !ok {
		return nil, &CompileError{
			Kind: kind,
			Log:  fmt.Sprintf("%v %q", ErrNoKernel, entry.Name),
			Err:  ErrNoKernel,
		}
	}

	return &Stage{
		id:     m.id(),
		mgr:    m,
		kind:   kind,
		source: source,
		words:  words,
		module: mod,
		entry:  entry,
		kernel: kernel,
	}, nil
}

// advance recomputes the non-terminal state.
func (m *Manager) advance() {
	if m.state == Failed {
		return
	}
	switch {
	case m.active != nil:
		m.state = Active
	case len(m.programs) > 0:
		m.state = Linked
	case m.holds(Position) && m.holds(Pixel):
		m.state = StagesCompiled
	default:
		m.state = Empty
	}
}

func (m *Manager) holds(kind StageKind) bool {
	for _, s := range m.stages {
		if s.kind == kind {
			return true
		}
	}
	return false
}

// Link links a position stage and a pixel stage into a program. Both
// stages are consumed whether or not the link succeeds.
//
// Link fails when either stage is missing, released, of the wrong kind or
// owned by another Manager, when the pixel stage reads a location the
// position stage does not write (or writes with another type), or when the
// stages declare the same uniform with different types.
func (m *Manager) Link(position, pixel *Stage) (*Program, error) {
	if m.state == Failed {
		m.releaseStage(position)
		m.releaseStage(pixel)
		return nil, ErrManagerFailed
	}

	prog, err := m.link(position, pixel)
	m.releaseStage(position)
	m.releaseStage(pixel)
	if err != nil {
		m.fail()
		lattice.Logger().Warn("pipeline: program link failed", "log", err.Error())
		return nil, &LinkError{Log: err.Error()}
	}

	m.programs[prog.id] = prog
	m.advance()
	lattice.Logger().Info("pipeline: program linked",
		"program", prog.id, "vertex", prog.vertexEntry, "pixel", prog.pixelEntry,
		"uniforms", len(prog.values))
	if prog.log != "" {
		lattice.Logger().Debug("pipeline: link warnings", "program", prog.id, "log", prog.log)
	}
	return prog, nil
}

func (m *Manager) releaseStage(s *Stage) {
	if s != nil && s.mgr == m {
		s.release()
	}
}

func (m *Manager) checkStage(s *Stage, kind StageKind) error {
	switch {
	case s == nil:
		return fmt.Errorf("%s stage is missing", kind)
	case s.mgr != m:
		return fmt.Errorf("%s stage belongs to another manager", kind)
	case s.released:
		return fmt.Errorf("%s stage was already released", kind)
	case s.kind != kind:
		return fmt.Errorf("expected a %s stage, got a %s stage", kind, s.kind)
	}
	return nil
}

func (m *Manager) link(position, pixel *Stage) (*Program, error) {
	if err := m.checkStage(position, Position); err != nil {
		return nil, err
	}
	if err := m.checkStage(pixel, Pixel); err != nil {
		return nil, err
	}

	if err := matchInterface(position.entry, pixel.entry); err != nil {
		return nil, err
	}

	prog := &Program{
		id:          m.id(),
		mgr:         m,
		vertexEntry: position.entry.Name,
		pixelEntry:  pixel.entry.Name,
		byName:      make(map[string]int),
	}
	for _, in := range position.entry.Inputs {
		if !in.IsBuiltin() {
			prog.attributes = append(prog.attributes, Attribute{Name: in.Name, Location: in.Location, Type: in.Type})
		}
	}

	if err := prog.mergeFields(position.module, position.entry); err != nil {
		return nil, err
	}
	if err := prog.mergeFields(pixel.module, pixel.entry); err != nil {
		return nil, err
	}
	prog.log = strings.Join(linkWarnings(position.entry, pixel.entry, prog.fields), "\n")

	prog.position = position.kernel.position(prog)
	prog.pixel = pixel.kernel.pixel(prog)
	if prog.position == nil || prog.pixel == nil {
		return nil, errors.New("kernel returned no function")
	}
	prog.linked = true
	return prog, nil
}

// matchInterface checks that every located pixel input is written by the
// position stage with the same type.
func matchInterface(vertex, fragment *wgsl.EntryPoint) error {
	outputs := make(map[int]wgsl.Binding)
	for _, out := range vertex.Outputs {
		if !out.IsBuiltin() {
			outputs[out.Location] = out
		}
	}
	var problems []string
	for _, in := range fragment.Inputs {
		if in.IsBuiltin() {
			continue
		}
		out, ok := outputs[in.Location]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf(
				"pixel input %q at location %d is not written by %s", in.Name, in.Location, vertex.Name))
		case normalizeType(out.Type) != normalizeType(in.Type):
			problems = append(problems, fmt.Sprintf(
				"location %d: %s writes %s, %s reads %s", in.Location, vertex.Name, out.Type, fragment.Name, in.Type))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// linkWarnings lists what links but is never used: located position
// outputs the pixel stage does not read and uniforms neither stage reads.
func linkWarnings(vertex, fragment *wgsl.EntryPoint, fields []field) []string {
	read := make(map[int]bool)
	for _, in := range fragment.Inputs {
		if !in.IsBuiltin() {
			read[in.Location] = true
		}
	}
	var out []string
	for _, o := range vertex.Outputs {
		if !o.IsBuiltin() && !read[o.Location] {
			out = append(out, fmt.Sprintf("warning: %s output %q at location %d is not read by %s",
				vertex.Name, o.Name, o.Location, fragment.Name))
		}
	}
	for _, f := range fields {
		if !f.active {
			out = append(out, fmt.Sprintf("warning: uniform %s is never read", f.path))
		}
	}
	return out
}

// normalizeType folds WGSL shorthand aliases onto their long form.
func normalizeType(t string) string {
	t = strings.ReplaceAll(t, " ", "")
	if strings.Contains(t, "<") {
		return t
	}
	if n := len(t); n > 0 && (strings.HasPrefix(t, "vec") || strings.HasPrefix(t, "mat")) {
		switch t[n-1] {
		case 'f':
			return t[:n-1] + "<f32>"
		case 'i':
			return t[:n-1] + "<i32>"
		case 'u':
			return t[:n-1] + "<u32>"
		case 'h':
			return t[:n-1] + "<f16>"
		}
	}
	return t
}

// mergeFields adds the uniform fields of mod to the program table. A field
// is active when entry, or a function it calls, reads it.
func (p *Program) mergeFields(mod *wgsl.Module, entry *wgsl.EntryPoint) error {
	for _, f := range mod.Fields() {
		active := entry.Reads(f)
		if i, ok := p.byName[f.Path]; ok {
			existing := &p.fields[i]
			if normalizeType(existing.typ) != normalizeType(f.Type) {
				return fmt.Errorf("uniform %s declared as %s and %s", f.Path, existing.typ, f.Type)
			}
			existing.active = existing.active || active
			continue
		}

		size := components(f.Type)
		p.fields = append(p.fields, field{
			path:   f.Path,
			typ:    f.Type,
			offset: len(p.values),
			size:   size,
			active: active && size > 0,
		})
		p.values = append(p.values, make([]float32, size)...)
		idx := len(p.fields) - 1
		p.byName[f.Path] = idx

		// Struct members are also reachable by their bare name.
		if f.Index >= 0 {
			member := f.Path[strings.LastIndexByte(f.Path, '.')+1:]
			if _, taken := p.byName[member]; !taken {
				p.byName[member] = idx
			}
		}
	}
	return nil
}

// ResolveSlot looks up a named parameter of program. It never fails: an
// unknown name, a name declared but never read, or an unusable program
// yields an absent slot.
func (m *Manager) ResolveSlot(program *Program, name string) Slot {
	if program == nil || program.mgr != m {
		return Slot{name: name}
	}
	s := program.Slot(name)
	lattice.Logger().Debug("pipeline: slot resolved",
		"program", program.id, "name", name, "present", s.Present())
	return s
}

// Activate makes program the one used by draws, replacing any previous
// active program. Activating a program that did not come out of a
// successful Link of this Manager is a usage error.
func (m *Manager) Activate(program *Program) error {
	if m.state == Failed {
		return ErrManagerFailed
	}
	if program == nil || program.mgr != m || !program.Linked() {
		return ErrInvalidProgram
	}
	m.active = program
	m.advance()
	lattice.Logger().Debug("pipeline: program activated", "program", program.id)
	return nil
}

// DeleteProgram releases a program. Deleting the active program leaves the
// Manager without an active program.
func (m *Manager) DeleteProgram(program *Program) {
	if program == nil || program.mgr != m {
		return
	}
	program.release()
	m.advance()
}

// Close releases every stage and program. A failed Manager stays failed.
func (m *Manager) Close() {
	for _, s := range m.stages {
		s.release()
	}
	for _, p := range m.programs {
		p.release()
	}
	m.active = nil
	m.advance()
}
