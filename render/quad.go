// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/lattice/pipeline"
)

// quadVertexStride is the size of one vertex: vec3<f32> position.
const quadVertexStride = 12

// quadCorners are the clip-space corners in triangle strip order.
var quadCorners = [4][3]float32{
	{-1, -1, 0},
	{1, -1, 0},
	{-1, 1, 0},
	{1, 1, 0},
}

// Quad is the full-screen rectangle every frame draws. Its vertices are
// fixed at creation and accessors hand out copies.
type Quad struct {
	vertices [4]pipeline.Vertex
}

// NewQuad creates the viewport-covering quad.
func NewQuad() *Quad {
	q := &Quad{}
	for i, c := range quadCorners {
		q.vertices[i] = pipeline.Vertex{Pos: c}
	}
	return q
}

// Vertices returns a copy of the four vertices in strip order.
func (q *Quad) Vertices() []pipeline.Vertex {
	out := make([]pipeline.Vertex, len(q.vertices))
	copy(out, q.vertices[:])
	return out
}

// Count returns the number of vertices to draw.
func (q *Quad) Count() int { return len(q.vertices) }

// Topology returns the primitive topology of the vertex list.
func (q *Quad) Topology() gputypes.PrimitiveTopology {
	return gputypes.PrimitiveTopologyTriangleStrip
}

// Layout describes the vertex buffer: one vec3<f32> position at location 0.
func (q *Quad) Layout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: quadVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0}, // pos
		},
	}
}

// Bytes returns the vertex buffer contents, little-endian.
func (q *Quad) Bytes() []byte {
	buf := make([]byte, 0, len(q.vertices)*quadVertexStride)
	for _, v := range q.vertices {
		for _, c := range v.Pos {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
		}
	}
	return buf
}

// triangles expands the strip into triangles with consistent winding.
func triangles(n int) [][3]int {
	if n < 3 {
		return nil
	}
	out := make([][3]int, 0, n-2)
	for i := 0; i+2 < n; i++ {
		if i%2 == 0 {
			out = append(out, [3]int{i, i + 1, i + 2})
		} else {
			out = append(out, [3]int{i + 1, i, i + 2})
		}
	}
	return out
}

// formatFor returns the vertex format that feeds a WGSL attribute type.
func formatFor(wgslType string) (format gputypes.VertexFormat, ok bool) {
	switch wgslType {
	case "f32":
		return gputypes.VertexFormatFloat32, true
	case "vec2<f32>", "vec2f":
		return gputypes.VertexFormatFloat32x2, true
	case "vec3<f32>", "vec3f":
		return gputypes.VertexFormatFloat32x3, true
	case "vec4<f32>", "vec4f":
		return gputypes.VertexFormatFloat32x4, true
	}
	return format, false
}
