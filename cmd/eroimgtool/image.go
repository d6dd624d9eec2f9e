package main

import (
	"github.com/banshee-data/eroimgtool/internal/debugplot"
	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/modes"
)

func runImageCmd(args []string) error {
	r, outFile, debugPlotFile := newFlagSet("image")
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return fatalf("image: missing event file argument")
	}
	if *outFile == "" {
		return fatalf("image: --out is required")
	}

	cfg, err := r.buildConfig(r.fs.Arg(0), *outFile)
	if err != nil {
		return err
	}
	in, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	img, err := modes.RunImage(in)
	if err != nil {
		return err
	}

	if *debugPlotFile != "" {
		if err := debugplot.RenderIntImage(img, "image mode accumulator", *debugPlotFile); err != nil {
			return err
		}
		if err := plotMaskOutline(in, *debugPlotFile); err != nil {
			return err
		}
	}

	cx, cy := cfg.ImageCentre()
	wh := fitsio.WriteHeader{
		Crpix1: cx + 1, Crpix2: cy + 1,
		Cdelt1: cfg.PixSize, Cdelt2: cfg.PixSize,
	}
	return fitsio.WriteImageInt(cfg.OutFile, img, cfg.Bitpix, wh)
}
