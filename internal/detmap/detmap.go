// Package detmap builds and caches the per-time-slice detector mask:
// a float image that is zero at bad, shadowed, or edge pixels and one
// (or a static calibration weight) everywhere else, rebuilt only when
// the active set of bad-pixel entries actually changes.
package detmap

import (
	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// CCDXW and CCDYW are the fixed CCD dimensions for one telescope module.
const (
	CCDXW = 384
	CCDYW = 384

	shadowBandHeight = 15
)

// DetMap caches the current detector mask image, rebuilding it only
// when time t crosses into a new bad-pixel bracket.
type DetMap struct {
	initMap  *grid.Image[float32]
	cacheMap *grid.Image[float32]
	badpix   *timetab.BadPixSet
}

// New builds a DetMap for telescope module tm. staticMask, if non-nil,
// is a calibration weight image (e.g. a DETMAP product) used as the
// starting point instead of an all-ones image; shadowMask additionally
// zeroes the bottom shadowBandHeight rows of the readout.
func New(r fitscol.ColumnReader, tm int, staticMask *grid.Image[float32], shadowMask bool) (*DetMap, error) {
	entries, err := timetab.LoadBadPixEntries(r, tm)
	if err != nil {
		return nil, err
	}

	initMap := grid.New[float32](CCDXW, CCDYW)
	if staticMask != nil {
		if staticMask.XW != CCDXW || staticMask.YW != CCDYW {
			return nil, pipeerr.Config("static detector mask has wrong dimensions", nil)
		}
		initMap.CopyFrom(staticMask)
	} else {
		initMap.Fill(1)
	}

	for y := 0; y < CCDYW; y++ {
		initMap.Set(0, y, 0)
		initMap.Set(CCDXW-1, y, 0)
	}
	for x := 0; x < CCDXW; x++ {
		initMap.Set(x, 0, 0)
		initMap.Set(x, CCDYW-1, 0)
	}

	if shadowMask {
		for y := 0; y < shadowBandHeight; y++ {
			for x := 0; x < CCDXW; x++ {
				initMap.Set(x, y, 0)
			}
		}
	}

	return &DetMap{
		initMap:  initMap,
		cacheMap: grid.New[float32](CCDXW, CCDYW),
		badpix:   timetab.NewBadPixSet(entries),
	}, nil
}

// GetMap returns the detector mask valid at time t, rebuilding the
// cached image only if t has left the previously cached bad-pixel
// bracket.
func (d *DetMap) GetMap(t float64) *grid.Image[float32] {
	if d.badpix.EdgeChanged(t) {
		d.buildMapImage(t)
	}
	return d.cacheMap
}

// Clone returns a copy of d with its own cache image and edge cursor,
// sharing the immutable initMap and bad-pixel entry list -- the shape
// each worker needs when it receives the detector map by value.
func (d *DetMap) Clone() *DetMap {
	return &DetMap{
		initMap:  d.initMap,
		cacheMap: grid.New[float32](CCDXW, CCDYW),
		badpix:   d.badpix.Clone(),
	}
}

func (d *DetMap) buildMapImage(t float64) {
	d.cacheMap.CopyFrom(d.initMap)

	for _, e := range d.badpix.ActiveAt(t) {
		ylo := e.RawY - 1
		yhi := e.RawY - 1 + e.YExtent - 1
		x := e.RawX - 1

		for y := ylo; y <= yhi; y++ {
			d.cacheMap.Set(x, y, 0)
			if x-1 >= 0 {
				d.cacheMap.Set(x-1, y, 0)
			}
			if x+1 < CCDXW {
				d.cacheMap.Set(x+1, y, 0)
			}
			if y-1 >= 0 {
				d.cacheMap.Set(x, y-1, 0)
			}
			if y+1 < CCDYW {
				d.cacheMap.Set(x, y+1, 0)
			}
		}
	}
}
