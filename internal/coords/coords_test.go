package coords

import "testing"

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// TestBoresightMapsToReferencePixel grounds spec.md's concrete scenario:
// with the telescope pointing exactly at (ra, dec), that same RA/Dec
// must project to the reference pixel regardless of roll.
func TestBoresightMapsToReferencePixel(t *testing.T) {
	cc := NewCoordConv(1.0, 1.0, 192.0, 192.0)
	cc.UpdatePointing(83.63, 22.01, 0)

	x, y := cc.RADec2CCD(83.63, 22.01)
	if !approxEqual(x, 192.0, 1e-6) || !approxEqual(y, 192.0, 1e-6) {
		t.Errorf("RADec2CCD(boresight) = (%v, %v), want (192, 192)", x, y)
	}
}

func TestRollRotatesOffsetButPreservesRadius(t *testing.T) {
	cc := NewCoordConv(1.0, 1.0, 0, 0)
	cc.UpdatePointing(10, 10, 0)
	x0, y0 := cc.RADec2CCD(10.01, 10)
	r0 := x0*x0 + y0*y0

	cc.UpdatePointing(10, 10, 90)
	x1, y1 := cc.RADec2CCD(10.01, 10)
	r1 := x1*x1 + y1*y1

	if !approxEqual(r0, r1, 1e-3) {
		t.Errorf("radius not preserved under roll: %v vs %v", r0, r1)
	}
	if approxEqual(x0, x1, 1e-6) && approxEqual(y0, y1, 1e-6) {
		t.Errorf("roll of 90 degrees should change the projected offset")
	}
}

func TestPlateScaleScalesOffset(t *testing.T) {
	ccFine := NewCoordConv(1.0, 1.0, 0, 0)
	ccFine.UpdatePointing(10, 10, 0)
	xFine, _ := ccFine.RADec2CCD(10.01, 10)

	ccCoarse := NewCoordConv(2.0, 2.0, 0, 0)
	ccCoarse.UpdatePointing(10, 10, 0)
	xCoarse, _ := ccCoarse.RADec2CCD(10.01, 10)

	if !approxEqual(xFine, 2*xCoarse, 1e-2) {
		t.Errorf("doubling plate scale should halve pixel offset: fine=%v coarse=%v", xFine, xCoarse)
	}
}
