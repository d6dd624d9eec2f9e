package skymask

import (
	"math"
	"testing"

	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
)

// identityWCS treats pixel coordinates as sky coordinates directly,
// enough to exercise the pipeline without a real WCS binding.
type identityWCS struct{}

func (identityWCS) Pix2Sky(pix []geom.Point) ([]SkyCoord, error) {
	out := make([]SkyCoord, len(pix))
	for i, p := range pix {
		out[i] = SkyCoord{Lon: p.X, Lat: p.Y}
	}
	return out, nil
}

func TestNewMaskTracesExcludedRegion(t *testing.T) {
	img := grid.New[int](3, 3)
	img.Set(1, 1, 1)

	m, err := New(img, identityWCS{}, false, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(m.skyPolys) == 0 {
		t.Fatal("expected at least one traced polygon from the excluded region")
	}
}

func TestSimplifyPolySkipsSmallPolygons(t *testing.T) {
	small := []SkyCoord{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if got := simplifyPoly(small); len(got) != len(small) {
		t.Errorf("polygon with %d vertices should be left unsimplified", len(small))
	}

	large := make([]SkyCoord, 8)
	for i := range large {
		large[i] = SkyCoord{Lon: float64(i), Lat: float64(i)}
	}
	got := simplifyPoly(large)
	if len(got) != 4 {
		t.Errorf("simplifyPoly(8 vertices) = %d, want 4", len(got))
	}
}

func TestAsCCDPolyIncludesPointMasks(t *testing.T) {
	img := grid.New[int](2, 2)
	img.Fill(1)
	m, err := New(img, identityWCS{}, false, []Point{{RA: 10, Dec: 10, RadiusPix: 5}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cc := coords.NewCoordConv(1, 1, 0, 0)
	cc.UpdatePointing(10, 10, 0)

	polys := m.AsCCDPoly(cc)
	if len(polys) != 1 {
		t.Fatalf("len(polys) = %d, want 1 (just the point mask)", len(polys))
	}
	if polys[0].Len() != circlePoints {
		t.Errorf("point mask polygon has %d vertices, want %d", polys[0].Len(), circlePoints)
	}

	// boresight source should project near the CCD reference pixel, so
	// the circle should be centred near (0,0) with radius ~5.
	maxR := 0.0
	for _, p := range polys[0].Pts {
		r := math.Hypot(p.X, p.Y)
		if r > maxR {
			maxR = r
		}
	}
	if math.Abs(maxR-5) > 1e-6 {
		t.Errorf("circle max radius = %v, want ~5", maxR)
	}
}
