package main

import (
	"github.com/banshee-data/eroimgtool/internal/debugplot"
	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/modes"
)

func runExposCmd(args []string) error {
	r, outFile, debugPlotFile := newFlagSet("expos")
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return fatalf("expos: missing event file argument")
	}
	if *outFile == "" {
		return fatalf("expos: --out is required")
	}

	cfg, err := r.buildConfig(r.fs.Arg(0), *outFile)
	if err != nil {
		return err
	}
	in, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	img, err := modes.RunExposure(in)
	if err != nil {
		return err
	}

	if *debugPlotFile != "" {
		if err := debugplot.RenderImage(img, "exposure map", *debugPlotFile); err != nil {
			return err
		}
		if err := plotMaskOutline(in, *debugPlotFile); err != nil {
			return err
		}
	}

	f32 := grid.New[float32](img.XW, img.YW)
	for i, v := range img.Arr {
		f32.Arr[i] = float32(v)
	}

	cx, cy := cfg.ImageCentre()
	wh := fitsio.WriteHeader{
		Crpix1: cx + 1, Crpix2: cy + 1,
		Cdelt1: cfg.PixSize, Cdelt2: cfg.PixSize,
	}
	return fitsio.WriteImageFloat32(cfg.OutFile, f32, cfg.Bitpix, wh)
}
