// Package instpar loads a telescope module's geometric calibration
// (INSTPAR extension of its GEOM calibration file) and hands off to
// internal/coords for the actual projection math.
package instpar

import (
	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// InstPar holds one telescope module's detector geometry, as read from
// the INSTPAR extension of its resolved GEOM calibration file.
type InstPar struct {
	XOptAxis, YOptAxis           float64
	XPlateScale, YPlateScale     float64 // arcsec/pixel
	XCCDPix, YCCDPix             float64
	XRef, YRef                   float64
	TimeLag                      float64
	PixScaleX, PixScaleY         float64
	InvPixScaleX, InvPixScaleY   float64
}

// Load reads the single-row INSTPAR extension from r, which must
// already be positioned to read the resolved GEOM calibration file.
func Load(r fitscol.ColumnReader) (*InstPar, error) {
	if err := r.MoveHDU("INSTPAR"); err != nil {
		return nil, pipeerr.IO("moving to INSTPAR extension", err)
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading INSTPAR row count", err)
	}
	if n < 1 {
		return nil, pipeerr.Decode("INSTPAR extension has no rows", nil)
	}

	read := func(name string) (float64, error) {
		var col []float64
		if err := r.ReadColumn(name, &col); err != nil {
			return 0, pipeerr.IO("reading "+name, err)
		}
		if len(col) < 1 {
			return 0, pipeerr.Decode(name+" column is empty", nil)
		}
		return col[0], nil
	}

	ip := &InstPar{}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"X_OPTAX", &ip.XOptAxis},
		{"Y_OPTAX", &ip.YOptAxis},
		{"X_PLATESCALE", &ip.XPlateScale},
		{"Y_PLATESCALE", &ip.YPlateScale},
		{"X_CCDPIX", &ip.XCCDPix},
		{"Y_CCDPIX", &ip.YCCDPix},
		{"X_REF", &ip.XRef},
		{"Y_REF", &ip.YRef},
		{"TIMELAG", &ip.TimeLag},
	}
	for _, f := range fields {
		v, err := read(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	ip.PixScaleX = ip.XPlateScale
	ip.PixScaleY = ip.YPlateScale
	ip.InvPixScaleX = 1 / ip.PixScaleX
	ip.InvPixScaleY = 1 / ip.PixScaleY

	return ip, nil
}

// NewCoordConv builds a coords.CoordConv from this module's plate
// scale and reference pixel.
func (ip *InstPar) NewCoordConv() *coords.CoordConv {
	return coords.NewCoordConv(ip.XPlateScale, ip.YPlateScale, ip.XRef, ip.YRef)
}
