package geom

import "math"

// insideHalfPlane reports whether q is on the "inside" side of the
// directed edge p1->p2, per the Sutherland-Hodgman convention: inside
// is the half-plane to the right of the edge direction.
func insideHalfPlane(p1, p2, q Point) bool {
	r := (p2.X-p1.X)*(q.Y-p1.Y) - (p2.Y-p1.Y)*(q.X-p1.X)
	return r <= 0
}

// lineIntersection finds where segment p1-p2 crosses line p3-p4,
// handling near-vertical segments (|dx| < 1e-5) on either side.
func lineIntersection(p1, p2, p3, p4 Point) Point {
	var x, y float64
	switch {
	case math.Abs(p2.X-p1.X) < 1e-5:
		x = p1.X
		m2 := (p4.Y - p3.Y) / (p4.X - p3.X)
		b2 := p3.Y - m2*p3.X
		y = m2*x + b2
	case math.Abs(p4.X-p3.X) < 1e-5:
		x = p3.X
		m1 := (p2.Y - p1.Y) / (p2.X - p1.X)
		b1 := p1.Y - m1*p1.X
		y = m1*x + b1
	default:
		m1 := (p2.Y - p1.Y) / (p2.X - p1.X)
		b1 := p1.Y - m1*p1.X
		m2 := (p4.Y - p3.Y) / (p4.X - p3.X)
		b2 := p3.Y - m2*p3.X
		x = (b2 - b1) / (m1 - m2)
		y = m1*x + b1
	}
	return Point{x, y}
}

// Clip runs Sutherland-Hodgman clipping of subject against the convex
// polygon clipPoly (both wound the same, conventionally CCW), and
// returns the resulting (possibly empty) polygon. It reuses an internal
// scratch buffer only across calls on the same *Clipper; for one-shot
// use call Clip directly.
func Clip(subject, clipPoly Poly) Poly {
	var c Clipper
	return c.Clip(subject, clipPoly)
}

// Clipper holds reusable scratch buffers so repeated clips (e.g. one per
// worker, many slices) avoid reallocating on every call.
type Clipper struct {
	out Poly
	tmp Poly
}

// Clip clips subject against clipPoly, reusing c's scratch buffers.
func (c *Clipper) Clip(subject, clipPoly Poly) Poly {
	c.out.Pts = append(c.out.Pts[:0], subject.Pts...)

	nc := len(clipPoly.Pts)
	for i := 0; i < nc; i++ {
		c.tmp.Pts = append(c.tmp.Pts[:0], c.out.Pts...)
		c.out.Pts = c.out.Pts[:0]

		var cedge1 Point
		if i == 0 {
			cedge1 = clipPoly.Pts[nc-1]
		} else {
			cedge1 = clipPoly.Pts[i-1]
		}
		cedge2 := clipPoly.Pts[i]

		ns := len(c.tmp.Pts)
		for j := 0; j < ns; j++ {
			var sedge1 Point
			if j == 0 {
				sedge1 = c.tmp.Pts[ns-1]
			} else {
				sedge1 = c.tmp.Pts[j-1]
			}
			sedge2 := c.tmp.Pts[j]

			if insideHalfPlane(cedge1, cedge2, sedge2) {
				if !insideHalfPlane(cedge1, cedge2, sedge1) {
					c.out.Pts = append(c.out.Pts, lineIntersection(sedge1, sedge2, cedge1, cedge2))
				}
				c.out.Pts = append(c.out.Pts, sedge2)
			} else if insideHalfPlane(cedge1, cedge2, sedge1) {
				c.out.Pts = append(c.out.Pts, lineIntersection(sedge1, sedge2, cedge1, cedge2))
			}
		}
	}

	result := make([]Point, len(c.out.Pts))
	copy(result, c.out.Pts)
	return Poly{Pts: result}
}
