package main

import (
	"github.com/banshee-data/eroimgtool/internal/debugplot"
	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/modes"
)

func runEventCmd(args []string) error {
	r, outFile, debugPlotFile := newFlagSet("event")
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return fatalf("event: missing event file argument")
	}
	if *outFile == "" {
		return fatalf("event: --out is required")
	}

	cfg, err := r.buildConfig(r.fs.Arg(0), *outFile)
	if err != nil {
		return err
	}
	in, err := loadInputs(cfg)
	if err != nil {
		return err
	}

	out, err := modes.RunEvent(in)
	if err != nil {
		return err
	}

	rows := make([]fitsio.EventRow, len(out))
	for i, e := range out {
		rows[i] = fitsio.EventRow{DX: e.DX, DY: e.DY, PI: e.PI}
	}

	if *debugPlotFile != "" {
		pts := make([]geom.Point, len(rows))
		for i, row := range rows {
			pts[i] = geom.Point{X: float64(row.DX), Y: float64(row.DY)}
		}
		if err := debugplot.RenderScatter(pts, "event positions", *debugPlotFile); err != nil {
			return err
		}
	}

	cx, cy := cfg.ImageCentre()
	wh := fitsio.WriteHeader{Crpix1: cx + 1, Crpix2: cy + 1}
	return fitsio.WriteEventTable(cfg.OutFile, rows, wh)
}
