package raster

import (
	"testing"

	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
)

func TestFillTriangleApproxArea(t *testing.T) {
	poly := geom.NewPoly(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0}, geom.Point{X: 5, Y: 10})
	img := grid.New[int](16, 16)
	Fill(poly, img, 1)

	count := 0
	for _, v := range img.Arr {
		if v == 1 {
			count++
		}
	}
	if count < 49 || count > 51 {
		t.Errorf("expected ~50 pixels set, got %d", count)
	}
}

func TestFillPolysZeroesMaskedRegion(t *testing.T) {
	img := grid.NewFilled[float64](10, 10, 1.0)
	masked := geom.PolyVec{geom.NewPoly(
		geom.Point{X: 2, Y: 2}, geom.Point{X: 6, Y: 2}, geom.Point{X: 6, Y: 6}, geom.Point{X: 2, Y: 6},
	)}
	FillPolys(masked, img)

	if img.At(4, 4) != 0 {
		t.Errorf("expected centre of masked square to be zeroed")
	}
	if img.At(0, 0) != 1 {
		t.Errorf("expected corner outside mask to be untouched")
	}
}
