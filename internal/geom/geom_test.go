package geom

import (
	"math"
	"testing"
)

func TestPolyAreaTranslationInvariant(t *testing.T) {
	p := NewPoly(Point{0, 0}, Point{2, 0}, Point{2, 2}, Point{0, 2})
	a1 := p.Area()
	shifted := p.Translate(Point{5, -3})
	a2 := shifted.Area()
	if math.Abs(a1-a2) > 1e-9 {
		t.Errorf("area changed under translation: %g vs %g", a1, a2)
	}
	if a1 != -4 {
		t.Errorf("expected area -4, got %g", a1)
	}
}

func TestPolyBoundsContainsAllVertices(t *testing.T) {
	p := NewPoly(Point{1, 5}, Point{-2, 3}, Point{4, -1})
	b := p.Bounds()
	for _, pt := range p.Pts {
		if !b.Contains(pt) {
			t.Errorf("bounds %+v does not contain vertex %+v", b, pt)
		}
	}
}

func TestPolyRotateRoundTrip(t *testing.T) {
	p := NewPoly(Point{3, 1}, Point{-2, 4}, Point{0, -5})
	theta := 0.73
	r := p.Rotate(theta).Rotate(-theta)
	for i, pt := range p.Pts {
		if math.Abs(pt.X-r.Pts[i].X) > 1e-9 || math.Abs(pt.Y-r.Pts[i].Y) > 1e-9 {
			t.Errorf("round trip mismatch at %d: %+v vs %+v", i, pt, r.Pts[i])
		}
	}
}

func TestPolyIsInside(t *testing.T) {
	square := NewPoly(Point{0, 0}, Point{10, 0}, Point{10, 10}, Point{0, 10})
	if !square.IsInside(Point{5, 5}) {
		t.Error("expected centre point to be inside")
	}
	if square.IsInside(Point{15, 5}) {
		t.Error("expected point outside bounds to be outside")
	}
	if square.IsInside(Point{-1, 5}) {
		t.Error("expected point left of square to be outside")
	}
}

func TestClipOverlapArea(t *testing.T) {
	a := NewPoly(Point{1, 1}, Point{1, 2}, Point{2, 2}, Point{2, 1})
	b := NewPoly(Point{1, 1}, Point{1, 3}, Point{3, 3}, Point{3, 1})
	c := Clip(a, b)
	if math.Abs(math.Abs(c.Area())-math.Abs(a.Area())) > 1e-6 {
		t.Errorf("clip of fully-contained polygon should preserve area, got %g vs %g", c.Area(), a.Area())
	}
}

func TestApplyShiftRotationShift(t *testing.T) {
	polys := PolyVec{NewPoly(Point{1, 0})}
	m := Rotation(math.Pi / 2)
	ApplyShiftRotationShift(polys, m, Point{0, 0}, Point{10, 10})
	got := polys[0].Pts[0]
	if math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-11) > 1e-9 {
		t.Errorf("expected (10,11), got %+v", got)
	}
}
