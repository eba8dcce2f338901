package sprig

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 4×4 projective transform in row-major order. Points are column
// vectors (x, y, z, 1); m.Mul(o) applies o first, then m.
type Matrix f64.Mat4

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float64) Matrix {
	return Matrix{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// Scale returns a scaling matrix.
func Scale(x, y, z float64) Matrix {
	return Matrix{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation of angle radians about the X axis.
func RotateX(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation of angle radians about the Y axis.
func RotateY(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation of angle radians about the Z axis (in the screen plane).
func RotateZ(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a projection for a viewer at distance d in front of the
// z=0 plane: points with positive z appear larger. d must be positive.
func Perspective(d float64) Matrix {
	m := Identity()
	m[14] = -1 / d
	return m
}

// Mul returns m × o.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// Apply transforms the screen point (x, y, 0) and performs the homogeneous
// divide. A point mapped to w == 0 is returned without division.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	tx := m[0]*x + m[1]*y + m[3]
	ty := m[4]*x + m[5]*y + m[7]
	tw := m[12]*x + m[13]*y + m[15]
	if tw != 0 && tw != 1 {
		tx /= tw
		ty /= tw
	}
	return tx, ty
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Mat4 returns m as an x/image matrix.
func (m Matrix) Mat4() f64.Mat4 {
	return f64.Mat4(m)
}

// Corners returns r's four corners transformed by m, clockwise from top-left.
func (m Matrix) Corners(r Rect) [4][2]float64 {
	x0, y0 := float64(r.X), float64(r.Y)
	x1, y1 := float64(r.Right()), float64(r.Bottom())
	var out [4][2]float64
	out[0][0], out[0][1] = m.Apply(x0, y0)
	out[1][0], out[1][1] = m.Apply(x1, y0)
	out[2][0], out[2][1] = m.Apply(x1, y1)
	out[3][0], out[3][1] = m.Apply(x0, y1)
	return out
}

// aabb returns the axis-aligned bounding box of r transformed by m, as floats.
func (m Matrix) aabb(r Rect) (minX, minY, maxX, maxY float64) {
	c := m.Corners(r)
	minX, minY = c[0][0], c[0][1]
	maxX, maxY = minX, minY
	for _, p := range c[1:] {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}
	return minX, minY, maxX, maxY
}

// TransformRect returns the pixel rectangle enclosing r transformed by m.
func (m Matrix) TransformRect(r Rect) Rect {
	if m.IsIdentity() {
		return r
	}
	minX, minY, maxX, maxY := m.aabb(r)
	x0, y0 := int(math.Floor(minX)), int(math.Floor(minY))
	x1, y1 := int(math.Ceil(maxX)), int(math.Ceil(maxY))
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// TransformStack is a LIFO of composed transforms. The base entry is the
// identity and can never be popped; each Push composes onto the current top.
//
// Not safe for concurrent use.
type TransformStack struct {
	stack []Matrix
}

// NewTransformStack creates a stack holding only the identity.
func NewTransformStack() *TransformStack {
	s := &TransformStack{stack: make([]Matrix, 1, 16)}
	s.stack[0] = Identity()
	return s
}

// Push composes m with the current top and makes the result the new top.
func (s *TransformStack) Push(m Matrix) {
	s.stack = append(s.stack, s.Top().Mul(m))
}

// Pop restores the previous composition.
// Panics if only the identity base remains.
func (s *TransformStack) Pop() {
	if len(s.stack) <= 1 {
		panic("sprig: transform stack underflow")
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Top returns the current composed transform.
func (s *TransformStack) Top() Matrix {
	return s.stack[len(s.stack)-1]
}

// Depth returns the number of entries, including the identity base.
func (s *TransformStack) Depth() int {
	return len(s.stack)
}

// ContainsPoint reports whether the screen point (x, y) hits r as transformed
// by the top matrix. The test uses the axis-aligned bounding box of the four
// transformed corners rather than the exact quadrilateral: accurate for
// near-axis-aligned UI transforms, too generous for strong skews or rotations
// close to 90°.
func (s *TransformStack) ContainsPoint(r Rect, x, y int) bool {
	top := s.Top()
	if top.IsIdentity() {
		return r.Contains(x, y)
	}
	minX, minY, maxX, maxY := top.aabb(r)
	px, py := float64(x), float64(y)
	return px >= minX && px < maxX && py >= minY && py < maxY
}

// reset drops everything above the identity base.
func (s *TransformStack) reset() {
	s.stack = s.stack[:1]
}
