package sdf

import "github.com/chewxy/math32"

// Vec4 is a four component float32 vector. The lattice is traced in four
// dimensions: the fourth lane rides along through every operation and
// ends up as the alpha channel of a hit.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Splat returns a vector with all components set to s.
func Splat(s float32) Vec4 {
	return Vec4{X: s, Y: s, Z: s, W: s}
}

// Add returns the component-wise sum.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z, W: v.W + w.W}
}

// Sub returns the component-wise difference.
func (v Vec4) Sub(w Vec4) Vec4 {
	return Vec4{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z, W: v.W - w.W}
}

// Mul returns the component-wise product.
func (v Vec4) Mul(w Vec4) Vec4 {
	return Vec4{X: v.X * w.X, Y: v.Y * w.Y, Z: v.Z * w.Z, W: v.W * w.W}
}

// Div returns the component-wise quotient.
func (v Vec4) Div(w Vec4) Vec4 {
	return Vec4{X: v.X / w.X, Y: v.Y / w.Y, Z: v.Z / w.Z, W: v.W / w.W}
}

// Scale returns v multiplied by a scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// AddScalar adds s to every component.
func (v Vec4) AddScalar(s float32) Vec4 {
	return Vec4{X: v.X + s, Y: v.Y + s, Z: v.Z + s, W: v.W + s}
}

// YZXW returns the cyclic swizzle (y, z, x, w).
func (v Vec4) YZXW() Vec4 {
	return Vec4{X: v.Y, Y: v.Z, Z: v.X, W: v.W}
}

// Abs returns the component-wise absolute value.
func (v Vec4) Abs() Vec4 {
	return Vec4{X: math32.Abs(v.X), Y: math32.Abs(v.Y), Z: math32.Abs(v.Z), W: math32.Abs(v.W)}
}

// Floor returns the component-wise floor.
func (v Vec4) Floor() Vec4 {
	return Vec4{X: math32.Floor(v.X), Y: math32.Floor(v.Y), Z: math32.Floor(v.Z), W: math32.Floor(v.W)}
}

// Sin returns the component-wise sine.
func (v Vec4) Sin() Vec4 {
	return Vec4{X: math32.Sin(v.X), Y: math32.Sin(v.Y), Z: math32.Sin(v.Z), W: math32.Sin(v.W)}
}

// Max returns the component-wise maximum.
func (v Vec4) Max(w Vec4) Vec4 {
	return Vec4{X: math32.Max(v.X, w.X), Y: math32.Max(v.Y, w.Y), Z: math32.Max(v.Z, w.Z), W: math32.Max(v.W, w.W)}
}

// Mod returns the floored modulus of every component by m, the shading
// language definition x - m*floor(x/m). Unlike math32.Mod the result
// takes the sign of m, so negative coordinates wrap into [0, m).
func (v Vec4) Mod(m float32) Vec4 {
	return Vec4{X: mod(v.X, m), Y: mod(v.Y, m), Z: mod(v.Z, m), W: mod(v.W, m)}
}

func mod(x, m float32) float32 {
	return x - m*math32.Floor(x/m)
}

// rotate turns the pair (u, v) by angle a, counter-clockwise.
func rotate(u, v, a float32) (float32, float32) {
	s, c := math32.Sincos(a)
	return u*c - v*s, u*s + v*c
}
