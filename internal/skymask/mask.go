// Package skymask builds the sky-coordinate exclusion mask: polygons
// traced out of an external mask image and reprojected through a WCS
// into sky coordinates once, plus a list of circular point masks. Per
// time slice, the stored sky polygons are reprojected into CCD pixel
// coordinates through the active attitude.
package skymask

import (
	"math"

	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/maskpoly"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// SkyCoord is a sky position in degrees.
type SkyCoord struct {
	Lon, Lat float64
}

// PixToSky is the WCS seam: converting pixel coordinates (1-indexed,
// FITS convention) to sky coordinates. A real binding (e.g. wcslib)
// would satisfy this; spec.md treats the WCS math itself as out of
// core scope.
type PixToSky interface {
	Pix2Sky(pix []geom.Point) ([]SkyCoord, error)
}

const circlePoints = 32

// Point is a circular point mask: a source at (RA, Dec) excluded out
// to RadiusPix CCD pixels, applied directly in detector coordinates
// (the radius is fixed in pixels, not propagated through the WCS).
type Point struct {
	RA, Dec   float64
	RadiusPix float64
}

// Mask holds sky-coordinate exclusion polygons plus circular point
// masks, both fixed at construction (the polygons traced from the
// external mask image, the points passed in) and reprojected into CCD
// coordinates fresh for every attitude snapshot.
type Mask struct {
	skyPolys [][]SkyCoord
	points   []Point
}

// New builds a Mask from a mask image (non-zero pixels are "good";
// zero pixels are the excluded regions, i.e. invert=true when tracing)
// and a WCS seam to project the traced polygon vertices into sky
// coordinates. If simplify is set, polygons with at least 6 vertices
// have every other vertex dropped via pairwise midpoint averaging.
func New(maskImg *grid.Image[int], wcs PixToSky, simplify bool, points []Point) (*Mask, error) {
	m := &Mask{points: points}
	if maskImg == nil {
		return m, nil
	}

	polys := maskpoly.Build(maskImg, true)
	for _, poly := range polys {
		pix := make([]geom.Point, len(poly.Pts))
		for i, p := range poly.Pts {
			pix[i] = geom.Point{X: p.X + 0.5, Y: p.Y + 0.5}
		}
		sky, err := wcs.Pix2Sky(pix)
		if err != nil {
			return nil, pipeerr.Decode("projecting mask polygon through WCS", err)
		}
		if len(sky) == 0 {
			continue
		}
		if simplify {
			sky = simplifyPoly(sky)
		}
		m.skyPolys = append(m.skyPolys, sky)
	}
	return m, nil
}

// simplifyPoly halves a polygon's vertex count by averaging adjacent
// pairs, skipping polygons with fewer than 6 vertices -- mask polygons
// are axis-aligned pixel staircases, so every other vertex is
// redundant detail the simplification discards.
func simplifyPoly(sky []SkyCoord) []SkyCoord {
	if len(sky) < 6 {
		return sky
	}
	out := make([]SkyCoord, 0, (len(sky)+1)/2)
	for i := 0; i < len(sky); i += 2 {
		j := (i + 1) % len(sky)
		out = append(out, SkyCoord{
			Lon: (sky[i].Lon + sky[j].Lon) / 2,
			Lat: (sky[i].Lat + sky[j].Lat) / 2,
		})
	}
	return out
}

// AsCCDPoly reprojects every stored sky polygon into CCD pixel
// coordinates under cc's current pointing, and appends one
// circlePoints-vertex circle per configured point mask. There is no
// caching: the result changes with every attitude snapshot.
func (m *Mask) AsCCDPoly(cc *coords.CoordConv) geom.PolyVec {
	out := make(geom.PolyVec, 0, len(m.skyPolys)+len(m.points))
	for _, sky := range m.skyPolys {
		pts := make([]geom.Point, len(sky))
		for i, c := range sky {
			x, y := cc.RADec2CCD(c.Lon, c.Lat)
			pts[i] = geom.Point{X: x, Y: y}
		}
		out = append(out, geom.NewPoly(pts...))
	}
	for _, p := range m.points {
		cx, cy := cc.RADec2CCD(p.RA, p.Dec)
		out = append(out, circlePoly(cx, cy, p.RadiusPix))
	}
	return out
}

func circlePoly(cx, cy, radius float64) geom.Poly {
	pts := make([]geom.Point, circlePoints)
	for i := 0; i < circlePoints; i++ {
		theta := 2 * math.Pi * float64(i) / float64(circlePoints)
		pts[i] = geom.Point{
			X: cx + radius*math.Cos(theta),
			Y: cy + radius*math.Sin(theta),
		}
	}
	return geom.NewPoly(pts...)
}
