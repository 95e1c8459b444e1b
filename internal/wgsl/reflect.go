// Package wgsl extracts the interface of a WGSL module: entry points with
// their stage inputs and outputs, uniform declarations, and which uniform
// values each entry point actually reads.
//
// Sources are parsed and lowered by naga; everything here is read off the
// resulting IR module.
package wgsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Stage is the pipeline stage an entry point belongs to.
type Stage int

const (
	StageVertex Stage = iota + 1
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Binding is one value crossing a stage boundary. Exactly one of
// Location (>= 0) or Builtin (non-empty) identifies it.
type Binding struct {
	Name     string
	Type     string
	Location int
	Builtin  string
}

// IsBuiltin reports whether b is a built-in value such as position.
func (b Binding) IsBuiltin() bool { return b.Builtin != "" }

// EntryPoint is a function marked @vertex, @fragment or @compute.
type EntryPoint struct {
	Name    string
	Stage   Stage
	Inputs  []Binding
	Outputs []Binding

	// reads holds the field paths read by the entry point or by a
	// function it calls.
	reads map[string]bool
}

// Reads reports whether the entry point, or any function reachable from
// it, reads f.
func (e *EntryPoint) Reads(f Field) bool { return e.reads[f.Path] }

// Member is a field of a uniform struct.
type Member struct {
	Name   string
	Type   string
	Offset uint32
}

// Uniform is a module-scope var<uniform> declaration.
type Uniform struct {
	Name    string
	Type    string
	Group   int
	Binding int
	// Members is set when Type is a struct.
	Members []Member
}

// Field is one addressable uniform value: either a whole non-struct
// uniform or a member of a uniform struct.
type Field struct {
	// Path is "var" or "var.member".
	Path string
	Type string
	// Index is the member position, or -1 for a whole variable.
	Index   int
	Uniform *Uniform
}

// Module is the reflected interface of one WGSL source.
type Module struct {
	EntryPoints []EntryPoint
	Uniforms    []Uniform
}

// EntryPoint returns the first entry point of the given stage.
func (m *Module) EntryPoint(stage Stage) (*EntryPoint, bool) {
	for i := range m.EntryPoints {
		if m.EntryPoints[i].Stage == stage {
			return &m.EntryPoints[i], true
		}
	}
	return nil, false
}

// LookupField resolves a uniform by name. A bare name matches a uniform
// variable first and otherwise the first uniform struct member with that
// name, the way a flattened parameter table exposes block members.
func (m *Module) LookupField(name string) (Field, bool) {
	for _, f := range m.Fields() {
		if f.Path == name || (f.Index < 0 && f.Uniform.Name == name) {
			return f, true
		}
	}
	for _, f := range m.Fields() {
		if f.Index >= 0 && f.Uniform.Members[f.Index].Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Fields lists every addressable uniform value in declaration order.
func (m *Module) Fields() []Field {
	var out []Field
	for i := range m.Uniforms {
		u := &m.Uniforms[i]
		if len(u.Members) == 0 {
			out = append(out, Field{Path: u.Name, Type: u.Type, Index: -1, Uniform: u})
			continue
		}
		for j, mb := range u.Members {
			out = append(out, Field{Path: u.Name + "." + mb.Name, Type: mb.Type, Index: j, Uniform: u})
		}
	}
	return out
}

// Reflect parses and lowers src with naga and reads its interface off the
// IR module.
func Reflect(src string) (*Module, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, err
	}
	irm, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, err
	}
	return fromIR(irm)
}

func fromIR(irm *ir.Module) (*Module, error) {
	m := &Module{}
	uniforms := make(map[ir.GlobalVariableHandle]int)
	for h, gv := range irm.GlobalVariables {
		if gv.Space != ir.SpaceUniform {
			continue
		}
		u := Uniform{Name: gv.Name, Type: typeName(irm, gv.Type)}
		if gv.Binding != nil {
			u.Group, u.Binding = int(gv.Binding.Group), int(gv.Binding.Binding)
		}
		if st, ok := irm.Types[gv.Type].Inner.(ir.StructType); ok {
			for _, mb := range st.Members {
				u.Members = append(u.Members, Member{Name: mb.Name, Type: typeName(irm, mb.Type), Offset: mb.Offset})
			}
		}
		uniforms[ir.GlobalVariableHandle(h)] = len(m.Uniforms)
		m.Uniforms = append(m.Uniforms, u)
	}

	for i := range irm.EntryPoints {
		ep := &irm.EntryPoints[i]
		e := EntryPoint{Name: ep.Name, Stage: stage(ep.Stage), reads: make(map[string]bool)}

		for _, arg := range ep.Function.Arguments {
			b, err := bindings(irm, arg.Name, arg.Type, arg.Binding)
			if err != nil {
				return nil, fmt.Errorf("entry point %s: %w", ep.Name, err)
			}
			e.Inputs = append(e.Inputs, b...)
		}
		if res := ep.Function.Result; res != nil {
			b, err := bindings(irm, "", res.Type, res.Binding)
			if err != nil {
				return nil, fmt.Errorf("entry point %s result: %w", ep.Name, err)
			}
			e.Outputs = append(e.Outputs, b...)
		}

		for _, fn := range reachable(irm, &ep.Function) {
			markReads(fn, m, uniforms, e.reads)
		}
		m.EntryPoints = append(m.EntryPoints, e)
	}
	return m, nil
}

func stage(s ir.ShaderStage) Stage {
	switch s {
	case ir.StageVertex:
		return StageVertex
	case ir.StageFragment:
		return StageFragment
	case ir.StageCompute:
		return StageCompute
	}
	return 0
}

// bindings expands a stage argument or result into its bound values. A
// struct without a binding of its own contributes one value per member.
func bindings(irm *ir.Module, name string, th ir.TypeHandle, b *ir.Binding) ([]Binding, error) {
	if b != nil {
		out, err := binding(name, typeName(irm, th), *b)
		if err != nil {
			return nil, err
		}
		return []Binding{out}, nil
	}
	st, ok := irm.Types[th].Inner.(ir.StructType)
	if !ok {
		if name == "" {
			name = "return value"
		}
		return nil, fmt.Errorf("%s: no @location or @builtin on a non-struct value", name)
	}
	var out []Binding
	for _, mb := range st.Members {
		if mb.Binding == nil {
			return nil, fmt.Errorf("%s: missing @location or @builtin", mb.Name)
		}
		v, err := binding(mb.Name, typeName(irm, mb.Type), *mb.Binding)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func binding(name, typ string, b ir.Binding) (Binding, error) {
	switch b := b.(type) {
	case ir.LocationBinding:
		return Binding{Name: name, Type: typ, Location: int(b.Location)}, nil
	case ir.BuiltinBinding:
		return Binding{Name: name, Type: typ, Location: -1, Builtin: builtinName(b.Builtin)}, nil
	}
	return Binding{}, errors.New(name + ": unsupported binding")
}

var builtinNames = map[ir.BuiltinValue]string{
	ir.BuiltinPosition:             "position",
	ir.BuiltinVertexIndex:          "vertex_index",
	ir.BuiltinInstanceIndex:        "instance_index",
	ir.BuiltinFrontFacing:          "front_facing",
	ir.BuiltinFragDepth:            "frag_depth",
	ir.BuiltinSampleIndex:          "sample_index",
	ir.BuiltinSampleMask:           "sample_mask",
	ir.BuiltinLocalInvocationID:    "local_invocation_id",
	ir.BuiltinLocalInvocationIndex: "local_invocation_index",
	ir.BuiltinGlobalInvocationID:   "global_invocation_id",
	ir.BuiltinWorkGroupID:          "workgroup_id",
	ir.BuiltinNumWorkGroups:        "num_workgroups",
}

func builtinName(v ir.BuiltinValue) string {
	if name, ok := builtinNames[v]; ok {
		return name
	}
	return fmt.Sprintf("builtin_%d", v)
}

// reachable returns fn followed by every module function it calls,
// directly or indirectly.
func reachable(irm *ir.Module, fn *ir.Function) []*ir.Function {
	out := []*ir.Function{fn}
	seen := make(map[ir.FunctionHandle]bool)
	for i := 0; i < len(out); i++ {
		walkCalls(out[i].Body, func(h ir.FunctionHandle) {
			if seen[h] || int(h) >= len(irm.Functions) {
				return
			}
			seen[h] = true
			out = append(out, &irm.Functions[h])
		})
	}
	return out
}

func walkCalls(block ir.Block, visit func(ir.FunctionHandle)) {
	for _, st := range block {
		switch s := st.Kind.(type) {
		case ir.StmtCall:
			visit(s.Function)
		case ir.StmtBlock:
			walkCalls(s.Block, visit)
		case ir.StmtIf:
			walkCalls(s.Accept, visit)
			walkCalls(s.Reject, visit)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				walkCalls(c.Body, visit)
			}
		case ir.StmtLoop:
			walkCalls(s.Body, visit)
			walkCalls(s.Continuing, visit)
		}
	}
}

// markReads records the uniform fields fn reads. A member access on a
// uniform struct reads that member; any other use of the variable reads
// all of it.
func markReads(fn *ir.Function, m *Module, uniforms map[ir.GlobalVariableHandle]int, reads map[string]bool) {
	accessed := make(map[ir.ExpressionHandle]bool)
	for _, e := range fn.Expressions {
		ai, ok := e.Kind.(ir.ExprAccessIndex)
		if !ok {
			continue
		}
		base, gv, ok := globalRef(fn, ai.Base)
		if !ok {
			continue
		}
		i, ok := uniforms[gv]
		if !ok {
			continue
		}
		u := &m.Uniforms[i]
		if int(ai.Index) < len(u.Members) {
			accessed[base] = true
			reads[u.Name+"."+u.Members[ai.Index].Name] = true
		}
	}

	for h, e := range fn.Expressions {
		ref, ok := e.Kind.(ir.ExprGlobalVariable)
		if !ok || accessed[ir.ExpressionHandle(h)] {
			continue
		}
		i, ok := uniforms[ref.Variable]
		if !ok {
			continue
		}
		u := &m.Uniforms[i]
		reads[u.Name] = true
		for _, mb := range u.Members {
			reads[u.Name+"."+mb.Name] = true
		}
	}
}

// globalRef follows loads and aliases from h to a global variable
// reference and returns that reference's handle.
func globalRef(fn *ir.Function, h ir.ExpressionHandle) (ir.ExpressionHandle, ir.GlobalVariableHandle, bool) {
	for int(h) < len(fn.Expressions) {
		switch k := fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable:
			return h, k.Variable, true
		case ir.ExprLoad:
			h = k.Pointer
		case ir.ExprAlias:
			h = k.Source
		default:
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// typeName spells an IR type the way WGSL source writes it.
func typeName(irm *ir.Module, h ir.TypeHandle) string {
	if int(h) >= len(irm.Types) {
		return "unknown"
	}
	t := irm.Types[h]
	switch in := t.Inner.(type) {
	case ir.ScalarType:
		return scalarName(in)
	case ir.VectorType:
		return fmt.Sprintf("vec%d<%s>", in.Size, scalarName(in.Scalar))
	case ir.MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", in.Columns, in.Rows, scalarName(in.Scalar))
	case ir.AtomicType:
		return "atomic<" + scalarName(in.Scalar) + ">"
	case ir.ArrayType:
		if in.Size.Constant != nil {
			return fmt.Sprintf("array<%s, %d>", typeName(irm, in.Base), *in.Size.Constant)
		}
		return "array<" + typeName(irm, in.Base) + ">"
	}
	if t.Name != "" {
		return t.Name
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", t.Inner), "ir.")
}

func scalarName(s ir.ScalarType) string {
	bits := int(s.Width) * 8
	switch s.Kind {
	case ir.ScalarFloat, ir.ScalarAbstractFloat:
		return fmt.Sprintf("f%d", bits)
	case ir.ScalarSint, ir.ScalarAbstractInt:
		return fmt.Sprintf("i%d", bits)
	case ir.ScalarUint:
		return fmt.Sprintf("u%d", bits)
	case ir.ScalarBool:
		return "bool"
	}
	return "unknown"
}
