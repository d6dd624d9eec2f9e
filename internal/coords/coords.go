// Package coords converts sky coordinates (RA/Dec, degrees) to CCD pixel
// coordinates under a given telescope pointing, using the standard
// small-angle gnomonic (tangent-plane) projection.
package coords

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180.
)

// CoordConv converts RA/Dec to CCD pixel coordinates for one telescope
// module's plate scale and reference pixel. UpdatePointing must be
// called at least once before RADec2CCD is meaningful.
type CoordConv struct {
	xPlateScale, yPlateScale float64 // arcsec/pixel
	xRef, yRef               float64 // reference pixel
	rad2xpix, rad2ypix       float64

	ra0             float64
	sinDec0, cosDec0 float64
	rot             *mat.Dense // 2x2 rotation by (roll-90 deg)
}

// NewCoordConv builds a converter for the given plate scales (arcsec per
// pixel) and reference pixel.
func NewCoordConv(xPlateScale, yPlateScale, xRef, yRef float64) *CoordConv {
	return &CoordConv{
		xPlateScale: xPlateScale,
		yPlateScale: yPlateScale,
		xRef:        xRef,
		yRef:        yRef,
		rad2xpix:    1 / (xPlateScale * (deg2rad / 3600.)),
		rad2ypix:    1 / (yPlateScale * (deg2rad / 3600.)),
		rot:         mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
	}
}

// UpdatePointing sets the telescope boresight (ra0, dec0) and roll, all
// in degrees, that subsequent RADec2CCD calls project against.
func (c *CoordConv) UpdatePointing(ra0, dec0, roll0 float64) {
	c.ra0 = ra0
	c.sinDec0, c.cosDec0 = math.Sincos(dec0 * deg2rad)

	rtheta := (roll0 - 90.) * deg2rad
	rsin, rcos := math.Sincos(rtheta)
	c.rot.SetRow(0, []float64{rcos, -rsin})
	c.rot.SetRow(1, []float64{rsin, rcos})
}

// RADec2CCD projects (ra, dec), in degrees, to CCD pixel coordinates
// under the current pointing via a gnomonic projection followed by a
// roll rotation and plate-scale shift.
func (c *CoordConv) RADec2CCD(ra, dec float64) (x, y float64) {
	diffra := (ra - c.ra0) * deg2rad
	dsinra, dcosra := math.Sincos(diffra)

	sindec, cosdec := math.Sincos(dec * deg2rad)

	d1s := dsinra * cosdec
	dh := -cosdec * dcosra
	d1c := c.sinDec0*sindec - dh*c.cosDec0
	dx := math.Atan2(d1s, d1c)

	d2s := dh*c.sinDec0 + c.cosDec0*sindec
	d2c := math.Sqrt(1.0 - d2s*d2s)
	dy := -math.Atan2(d2s, d2c)

	d := mat.NewVecDense(2, []float64{dx, dy})
	var r mat.VecDense
	r.MulVec(c.rot, d)

	ccdx := r.AtVec(0)*c.rad2xpix + c.xRef
	ccdy := r.AtVec(1)*c.rad2ypix + c.yRef
	return ccdx, ccdy
}
