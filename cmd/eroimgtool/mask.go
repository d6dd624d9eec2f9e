package main

import (
	"strings"

	"github.com/banshee-data/eroimgtool/internal/debugplot"
	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/modes"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
	"github.com/banshee-data/eroimgtool/internal/skymask"
)

// loadSkyMask builds a sky mask from the configured point masks, plus
// the mask image at maskFile if one was given. Tracing a mask image's
// polygons into sky coordinates requires a WCS binding; this tool
// carries none (gnomonic WCS header parsing is out of scope), so a
// configured --mask file is rejected rather than silently ignored.
func loadSkyMask(maskFile string, points []skymask.Point) (*skymask.Mask, error) {
	if maskFile == "" {
		return skymask.New(nil, nil, false, points)
	}
	if _, err := fitsio.Open(maskFile); err != nil {
		return nil, err
	}
	return nil, pipeerr.Config("--mask requires a WCS binding to project mask polygons into sky coordinates, which this build does not provide; use --mask-pts for circular point masks instead", nil)
}

// plotMaskOutline reprojects in's mask at the first GTI's start time and
// writes its outline alongside debugPlotFile, if a mask is configured.
func plotMaskOutline(in *modes.Inputs, debugPlotFile string) error {
	if in.Mask == nil || in.GTI.NumIntervals() == 0 {
		return nil
	}

	cc := in.InstPar.NewCoordConv()
	att, err := in.Attitude.Interpolate(in.GTI.Start[0])
	if err != nil {
		return err
	}
	cc.UpdatePointing(att.RA, att.Dec, att.Roll)

	polys := in.Mask.AsCCDPoly(cc)
	path := strings.TrimSuffix(debugPlotFile, ".png") + "_mask.png"
	return debugplot.RenderMaskOutline(polys, in.Cfg.XW, in.Cfg.YW, "mask outline", path)
}
