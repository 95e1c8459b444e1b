package sdf

import "testing"

func TestVec4_Mod(t *testing.T) {
	tests := []struct {
		in, want float32
	}{
		{0, 0},
		{3, 3},
		{8, 0},
		{9.5, 1.5},
		{-1, 7},
		{-8, 0},
		{-12.5, 3.5},
	}

	for _, tt := range tests {
		got := Splat(tt.in).Mod(8)
		if got != Splat(tt.want) {
			t.Errorf("Mod(%v, 8) = %+v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVec4_Swizzle(t *testing.T) {
	v := V4(1, 2, 3, 4)
	if got := v.YZXW(); got != V4(2, 3, 1, 4) {
		t.Errorf("YZXW() = %+v, want (2,3,1,4)", got)
	}
	if got := v.YZXW().YZXW().YZXW(); got != v {
		t.Errorf("three cyclic swizzles = %+v, want %+v", got, v)
	}
}

func TestVec4_Arithmetic(t *testing.T) {
	a := V4(1, -2, 3, -4)
	b := V4(2, 2, 2, 2)

	if got := a.Add(b); got != V4(3, 0, 5, -2) {
		t.Errorf("Add = %+v", got)
	}
	if got := a.Sub(b); got != V4(-1, -4, 1, -6) {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Mul(b); got != V4(2, -4, 6, -8) {
		t.Errorf("Mul = %+v", got)
	}
	if got := a.Div(b); got != V4(0.5, -1, 1.5, -2) {
		t.Errorf("Div = %+v", got)
	}
	if got := a.Abs(); got != V4(1, 2, 3, 4) {
		t.Errorf("Abs = %+v", got)
	}
	if got := a.Max(Splat(0)); got != V4(1, 0, 3, 0) {
		t.Errorf("Max = %+v", got)
	}
	if got := V4(1.5, -1.5, 0, -0.25).Floor(); got != V4(1, -2, 0, -1) {
		t.Errorf("Floor = %+v", got)
	}
}

func TestRotate(t *testing.T) {
	u, v := rotate(1, 0, 0)
	if u != 1 || v != 0 {
		t.Errorf("rotate by 0 = (%v, %v), want (1, 0)", u, v)
	}

	// A quarter turn maps +u onto +v.
	u, v = rotate(1, 0, 1.5707964)
	if !near(u, 0) || !near(v, 1) {
		t.Errorf("quarter turn = (%v, %v), want (0, 1)", u, v)
	}
}
