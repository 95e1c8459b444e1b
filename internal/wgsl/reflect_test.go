package wgsl

import "testing"

const passThrough = `
// Position stage: forwards the quad corner untouched.
@vertex
fn quad_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 1.0);
}
`

const withStructs = `
struct Frame {
    time: f32,
    unused: f32,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<uniform> tint: vec4<f32>;
var<private> scratch: array<vec4<f32>, 4>;

const RES: vec2<f32> = vec2<f32>(640.0, 480.0);

struct VsOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) @interpolate(flat) id: u32,
};

/* block comment */
@vertex
fn vs(@location(0) pos: vec3<f32>, @builtin(vertex_index) vi: u32) -> VsOut {
    var out: VsOut;
    out.position = vec4<f32>(pos, 1.0);
    out.uv = pos.xy;
    out.id = vi;
    return out;
}

@fragment
fn fs(in: VsOut) -> @location(0) vec4<f32> {
    let t = frame.time * 2.0;
    return vec4<f32>(in.uv, t, 1.0);
}
`

func TestReflect_PassThrough(t *testing.T) {
	m, err := Reflect(passThrough)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}

	ep, ok := m.EntryPoint(StageVertex)
	if !ok {
		t.Fatal("vertex entry point not found")
	}
	if ep.Name != "quad_main" {
		t.Errorf("Name = %q, want quad_main", ep.Name)
	}
	if len(ep.Inputs) != 1 || ep.Inputs[0].Location != 0 || ep.Inputs[0].Type != "vec3<f32>" {
		t.Errorf("Inputs = %+v, want one vec3<f32> at location 0", ep.Inputs)
	}
	if len(ep.Outputs) != 1 || ep.Outputs[0].Builtin != "position" {
		t.Errorf("Outputs = %+v, want builtin position", ep.Outputs)
	}
	if _, ok := m.EntryPoint(StageFragment); ok {
		t.Error("unexpected fragment entry point")
	}
}

func TestReflect_StructInterfaces(t *testing.T) {
	m, err := Reflect(withStructs)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}

	vs, ok := m.EntryPoint(StageVertex)
	if !ok {
		t.Fatal("vertex entry point not found")
	}
	if len(vs.Inputs) != 2 {
		t.Fatalf("vertex inputs = %+v, want 2", vs.Inputs)
	}
	if !vs.Inputs[1].IsBuiltin() || vs.Inputs[1].Builtin != "vertex_index" {
		t.Errorf("second input = %+v, want builtin vertex_index", vs.Inputs[1])
	}
	if len(vs.Outputs) != 3 {
		t.Fatalf("vertex outputs = %+v, want 3 expanded members", vs.Outputs)
	}
	if vs.Outputs[2].Location != 1 || vs.Outputs[2].Type != "u32" {
		t.Errorf("third output = %+v, want u32 at location 1", vs.Outputs[2])
	}

	fs, ok := m.EntryPoint(StageFragment)
	if !ok {
		t.Fatal("fragment entry point not found")
	}
	if len(fs.Inputs) != 3 || fs.Inputs[1].Name != "uv" {
		t.Errorf("fragment inputs = %+v", fs.Inputs)
	}
	if len(fs.Outputs) != 1 || fs.Outputs[0].Location != 0 {
		t.Errorf("fragment outputs = %+v", fs.Outputs)
	}
}

func TestReflect_Uniforms(t *testing.T) {
	m, err := Reflect(withStructs)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}

	if len(m.Uniforms) != 2 {
		t.Fatalf("Uniforms = %+v, want frame and tint", m.Uniforms)
	}
	if u := m.Uniforms[0]; u.Type != "Frame" || len(u.Members) != 2 || u.Members[1].Offset != 4 {
		t.Errorf("first uniform = %+v", u)
	}
	fs, ok := m.EntryPoint(StageFragment)
	if !ok {
		t.Fatal("fragment entry point not found")
	}
	if u := m.Uniforms[1]; u.Name != "tint" || u.Binding != 1 || u.Group != 0 {
		t.Errorf("second uniform = %+v", u)
	}

	tests := []struct {
		name   string
		path   string
		found  bool
		active bool
	}{
		{"member by bare name", "frame.time", true, true},
		{"member by path", "frame.time", true, true},
		{"declared but never read", "frame.unused", true, false},
		{"whole variable never read", "tint", true, false},
		{"private is not a uniform", "scratch", false, false},
		{"unknown", "nothing", false, false},
	}
	lookups := map[string]string{"member by bare name": "time", "declared but never read": "unused"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := tt.path
			if alias, ok := lookups[tt.name]; ok {
				name = alias
			}
			f, ok := m.LookupField(name)
			if ok != tt.found {
				t.Fatalf("LookupField(%q) found = %v, want %v", name, ok, tt.found)
			}
			if !ok {
				return
			}
			if f.Path != tt.path {
				t.Errorf("Path = %q, want %q", f.Path, tt.path)
			}
			if got := fs.Reads(f); got != tt.active {
				t.Errorf("Reads(%q) = %v, want %v", f.Path, got, tt.active)
			}
		})
	}

	if got := len(m.Fields()); got != 3 {
		t.Errorf("Fields() = %d entries, want 3", got)
	}
}

const withHelpers = `
struct Frame {
    time: f32,
    resolution: vec2<f32>,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<uniform> tint: vec4<f32>;

fn elapsed() -> f32 {
    return frame.time;
}

fn shade(uv: vec2<f32>) -> vec4<f32> {
    return vec4<f32>(uv, elapsed(), 1.0);
}

fn never_called() -> vec4<f32> {
    return tint * frame.resolution.x;
}

@vertex
fn vs(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 1.0);
}

@fragment
fn fs(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    if p.x > 0.0 {
        return shade(p.xy);
    }
    return vec4<f32>(0.0);
}
`

func TestEntryPoint_Reads(t *testing.T) {
	m, err := Reflect(withHelpers)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	vs, _ := m.EntryPoint(StageVertex)
	fs, ok := m.EntryPoint(StageFragment)
	if !ok || vs == nil {
		t.Fatal("entry points not found")
	}

	tests := []struct {
		path   string
		fsRead bool
	}{
		// Read two calls deep, from inside a branch.
		{"frame.time", true},
		// Only read by a function no entry point calls.
		{"frame.resolution", false},
		{"tint", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, ok := m.LookupField(tt.path)
			if !ok {
				t.Fatalf("LookupField(%q) not found", tt.path)
			}
			if got := fs.Reads(f); got != tt.fsRead {
				t.Errorf("fs.Reads(%q) = %v, want %v", tt.path, got, tt.fsRead)
			}
			if vs.Reads(f) {
				t.Errorf("vs.Reads(%q) = true, vertex stage reads no uniforms", tt.path)
			}
		})
	}
}

func TestEntryPoint_ReadsWholeVariable(t *testing.T) {
	src := `
struct Frame {
    time: f32,
    gain: f32,
}

@group(0) @binding(0) var<uniform> frame: Frame;

fn copy() -> Frame {
    return frame;
}

@fragment
fn fs() -> @location(0) vec4<f32> {
    let f = copy();
    return vec4<f32>(f.time);
}
`
	m, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	fs, _ := m.EntryPoint(StageFragment)
	for _, f := range m.Fields() {
		if !fs.Reads(f) {
			t.Errorf("Reads(%q) = false, a whole-struct load reads every member", f.Path)
		}
	}
}

func TestReflect_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated comment", "/* open"},
		{"stray token", "return 1;"},
		{"unknown identifier", "@fragment fn f() -> @location(0) vec4<f32> { return missing; }"},
		{"unterminated body", "fn f() { let a = 1;"},
		{"missing binding", "@fragment fn f(x: f32) -> @location(0) vec4<f32> { return vec4<f32>(x); }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Reflect(tt.src); err == nil {
				t.Fatal("Reflect() error = nil")
			}
		})
	}
}
