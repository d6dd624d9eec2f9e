// Package raster fills polygons into an image grid with a scanline
// algorithm, used by exposure mode to zero out masked regions in each
// time slice's buffer before it is added to the accumulator.
package raster

import (
	"math"
	"sort"

	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
)

func nextWrap(i, n int) int {
	if i+1 == n {
		return 0
	}
	return i + 1
}

// sortSmall sorts vals in place, using a fixed comparison-count sorting
// network for the common case of <= 6 crossings (the vast majority of
// scanlines through a convex-ish mask or detector polygon), falling
// back to sort.Float64s otherwise.
func sortSmall(vals []float64) {
	orderPair := func(i, j int) {
		if vals[i] > vals[j] {
			vals[i], vals[j] = vals[j], vals[i]
		}
	}
	switch len(vals) {
	case 0, 1:
	case 2:
		orderPair(0, 1)
	case 3:
		orderPair(0, 2)
		orderPair(0, 1)
		orderPair(1, 2)
	case 4:
		orderPair(0, 2)
		orderPair(1, 3)
		orderPair(0, 1)
		orderPair(2, 3)
		orderPair(1, 2)
	case 5:
		orderPair(0, 3)
		orderPair(1, 4)
		orderPair(0, 2)
		orderPair(1, 3)
		orderPair(0, 1)
		orderPair(2, 4)
		orderPair(1, 2)
		orderPair(3, 4)
		orderPair(2, 3)
	case 6:
		orderPair(0, 5)
		orderPair(1, 3)
		orderPair(2, 4)
		orderPair(1, 2)
		orderPair(3, 4)
		orderPair(0, 3)
		orderPair(2, 5)
		orderPair(0, 1)
		orderPair(2, 3)
		orderPair(4, 5)
		orderPair(1, 2)
		orderPair(3, 4)
	default:
		sort.Float64s(vals)
	}
}

// Fill rasterizes poly into outimg, overwriting every covered pixel
// with val. Composition across multiple polygons (e.g. detector
// footprint then masked regions) is the caller's responsibility: later
// calls simply overwrite earlier ones.
func Fill[T grid.Numeric](poly geom.Poly, outimg *grid.Image[T], val T) {
	xw, yw := outimg.XW, outimg.YW
	n := len(poly.Pts)
	if n < 3 {
		return
	}

	bounds := poly.Bounds()
	ylo := int(math.Floor(bounds.TL.Y))
	if ylo < 0 {
		ylo = 0
	}
	yhi := int(math.Ceil(bounds.BR.Y))
	if yhi > yw-1 {
		yhi = yw - 1
	}

	grads := make([]float64, n)
	for i := 0; i < n; i++ {
		j := nextWrap(i, n)
		grads[i] = (poly.Pts[j].X - poly.Pts[i].X) / (poly.Pts[j].Y - poly.Pts[i].Y)
	}

	xs := make([]float64, 0, 8)
	for y := ylo; y <= yhi; y++ {
		yf := float64(y)
		xs = xs[:0]
		for pi := 0; pi < n; pi++ {
			x1 := poly.Pts[pi].X
			y1 := poly.Pts[pi].Y
			y2 := poly.Pts[nextWrap(pi, n)].Y

			if (y1 <= yf && y2 > yf) || (y1 > yf && y2 <= yf) {
				xs = append(xs, x1+grads[pi]*(yf-y1))
			}
		}
		sortSmall(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			xlo := int(math.Ceil(xs[i]))
			if xlo < 0 {
				xlo = 0
			}
			xhi := int(math.Floor(xs[i+1]))
			if xhi > xw-1 {
				xhi = xw - 1
			}
			for x := xlo; x <= xhi; x++ {
				outimg.Set(x, y, val)
			}
		}
	}
}

// FillPolys zeroes out every polygon in masked (e.g. sky-mask regions
// reprojected into detector/image coordinates) by calling Fill with
// value 0, in the order given.
func FillPolys[T grid.Numeric](masked geom.PolyVec, outimg *grid.Image[T]) {
	var zero T
	for _, p := range masked {
		Fill(p, outimg, zero)
	}
}
