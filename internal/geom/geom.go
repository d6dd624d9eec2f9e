// Package geom provides the 2-D primitives (points, rectangles, polygons,
// affine matrices) shared by the mask builder, rasterizer and coordinate
// conversion layers.
package geom

import "math"

// Point is a 2-D vector in detector, image or sky-tangent-plane pixels,
// depending on context.
type Point struct {
	X, Y float64
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Div returns p divided elementwise by s.
func (p Point) Div(s float64) Point { return Point{p.X / s, p.Y / s} }

// Rect is an axis-aligned bounding box: TL is the min corner, BR the max.
type Rect struct {
	TL, BR Point
}

// Contains reports whether p lies within r (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.TL.X && p.X <= r.BR.X && p.Y >= r.TL.Y && p.Y <= r.BR.Y
}

// Matrix2 is a row-major 2x2 matrix. The zero value is NOT the identity;
// use Identity() to construct one.
type Matrix2 struct {
	M00, M01, M10, M11 float64
}

// Identity returns the 2x2 identity matrix.
func Identity() Matrix2 {
	return Matrix2{1, 0, 0, 1}
}

// Rotation returns the rotation matrix for angle theta (radians), CCW.
func Rotation(theta float64) Matrix2 {
	s, c := math.Sin(theta), math.Cos(theta)
	return Matrix2{c, -s, s, c}
}

// Apply returns m*p.
func (m Matrix2) Apply(p Point) Point {
	return Point{
		X: p.X*m.M00 + p.Y*m.M01,
		Y: p.X*m.M10 + p.Y*m.M11,
	}
}

// Scale multiplies the matrix in place by a scalar.
func (m *Matrix2) Scale(s float64) {
	m.M00 *= s
	m.M01 *= s
	m.M10 *= s
	m.M11 *= s
}

// Mul returns m*o (matrix product, m applied after o).
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	return Matrix2{
		M00: m.M00*o.M00 + m.M01*o.M10,
		M01: m.M00*o.M01 + m.M01*o.M11,
		M10: m.M10*o.M00 + m.M11*o.M10,
		M11: m.M10*o.M01 + m.M11*o.M11,
	}
}

// Poly is an ordered, conventionally counter-clockwise, simple polygon.
type Poly struct {
	Pts []Point
}

// NewPoly builds a Poly from the given points.
func NewPoly(pts ...Point) Poly {
	out := make([]Point, len(pts))
	copy(out, pts)
	return Poly{Pts: out}
}

// Len returns the vertex count.
func (p Poly) Len() int { return len(p.Pts) }

// Translate returns p shifted by v.
func (p Poly) Translate(v Point) Poly {
	out := make([]Point, len(p.Pts))
	for i, pt := range p.Pts {
		out[i] = pt.Add(v)
	}
	return Poly{Pts: out}
}

// Scale returns p scaled by s about the origin.
func (p Poly) Scale(s float64) Poly {
	out := make([]Point, len(p.Pts))
	for i, pt := range p.Pts {
		out[i] = pt.Scale(s)
	}
	return Poly{Pts: out}
}

// Area returns the signed shoelace area; zero for fewer than 3 vertices.
// The sign is positive for the winding maskpoly emits and Clip expects,
// e.g. (0,0),(0,1),(1,1),(1,0) (counter-clockwise with y increasing
// downward), and negative for the opposite winding.
func (p Poly) Area() float64 {
	n := len(p.Pts)
	if n < 3 {
		return 0
	}
	var a float64
	j := n - 1
	for i := 0; i < n; i++ {
		a += (p.Pts[j].X + p.Pts[i].X) * (p.Pts[j].Y - p.Pts[i].Y)
		j = i
	}
	return a * 0.5
}

// Bounds returns the axis-aligned bounding rectangle of p.
func (p Poly) Bounds() Rect {
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Pts {
		minx = math.Min(minx, pt.X)
		maxx = math.Max(maxx, pt.X)
		miny = math.Min(miny, pt.Y)
		maxy = math.Max(maxy, pt.Y)
	}
	return Rect{TL: Point{minx, miny}, BR: Point{maxx, maxy}}
}

// Rotate returns p rotated by theta radians about the origin.
func (p Poly) Rotate(theta float64) Poly {
	s, c := math.Sin(theta), math.Cos(theta)
	out := make([]Point, len(p.Pts))
	for i, pt := range p.Pts {
		out[i] = Point{
			X: pt.X*c - pt.Y*s,
			Y: pt.X*s + pt.Y*c,
		}
	}
	return Poly{Pts: out}
}

// IsInside reports whether pt lies within p, using a bounds pre-check
// followed by horizontal ray-casting with odd-crossing parity. A
// horizontal edge (|dy| < 1e-6) whose x-range spans pt is skipped; one
// lying wholly to the right of pt counts as a crossing like any other.
func (p Poly) IsInside(pt Point) bool {
	n := len(p.Pts)
	if n < 3 {
		return false
	}
	b := p.Bounds()
	if pt.X < b.TL.X || pt.Y < b.TL.Y || pt.X > b.BR.X || pt.Y > b.BR.Y {
		return false
	}

	count := 0
	for i := 0; i < n; i++ {
		p1 := p.Pts[i]
		p2 := p.Pts[(i+1)%n]

		if pt.Y >= math.Min(p1.Y, p2.Y) && pt.Y <= math.Max(p1.Y, p2.Y) {
			switch {
			case pt.X < math.Min(p1.X, p2.X):
				count++
			case pt.X > math.Max(p1.X, p2.X):
				// can't cross
			case math.Abs(p1.Y-p2.Y) > 1e-6:
				grad := (p2.X - p1.X) / (p2.Y - p1.Y)
				lx := p1.X + grad*(pt.Y-p1.Y)
				if lx > pt.X {
					count++
				}
			}
		}
	}
	return count%2 != 0
}

// PolyVec is a sequence of polygons.
type PolyVec []Poly

// AnyContains reports whether pt lies inside any polygon in v.
func (v PolyVec) AnyContains(pt Point) bool {
	for _, p := range v {
		if p.IsInside(pt) {
			return true
		}
	}
	return false
}

// ApplyShiftRotationShift maps every vertex of every polygon in polys
// through v' = m*(v - pRot) + pImg, in place. This is the single-pass
// affine composite used to move detector-coordinate polygons into
// image-pixel coordinates.
func ApplyShiftRotationShift(polys PolyVec, m Matrix2, pRot, pImg Point) {
	for pi := range polys {
		pts := polys[pi].Pts
		for i := range pts {
			d := pts[i].Sub(pRot)
			pts[i] = m.Apply(d).Add(pImg)
		}
	}
}

func clip01(v, minv, maxv float64) float64 {
	if v < minv {
		return minv
	}
	if v > maxv {
		return maxv
	}
	return v
}

// Clip01 clamps v to [minv, maxv].
func Clip01(v, minv, maxv float64) float64 { return clip01(v, minv, maxv) }
