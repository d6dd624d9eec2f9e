package modes

import (
	"math"

	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeline"
	"github.com/banshee-data/eroimgtool/internal/raster"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// RunExposure builds the source-relative exposure map: for every
// (GTI subdivision x source) whose projected position is valid for the
// configured projection mode, samples the detector map over the
// detector footprint reprojected into output image coordinates, zeroes
// masked regions, and accumulates dt-weighted contributions.
func RunExposure(in *Inputs) (*grid.Image[float64], error) {
	cfg := in.Cfg
	xw, yw := cfg.XW, cfg.YW
	imgcen := geom.Point{X: float64(xw) / 2, Y: float64(yw) / 2}

	segs, err := buildTimeSegs(in)
	if err != nil {
		return nil, err
	}

	final := grid.New[float64](xw, yw)
	if len(segs) == 0 {
		in.logf("expos: no time segments (empty GTI or no valid source positions)")
		return final, nil
	}

	if cfg.Samples > 0 && cfg.Samples < len(segs) {
		in.logf("expos: sampling %d of %d time segments", cfg.Samples, len(segs))
		segs = pipeline.ApplySampling(segs, cfg.Samples)
	}

	pool := pipeline.NewPool()
	queue := pipeline.NewQueue(&pool.Mu, segs)
	in.logf("expos: run %s, %d time segments over %d workers", pool.RunID, len(segs), cfg.Threads)

	pool.Run(cfg.Threads, func(workerIdx int) {
		cc := in.InstPar.NewCoordConv()
		dm := in.DetMap.Clone()
		att := in.Attitude.Clone()
		accum := grid.New[float64](xw, yw)
		imgt := grid.New[float64](xw, yw)

		for {
			seg, ok := queue.Pop()
			if !ok {
				break
			}
			processTimeSeg(seg, in, cc, att, dm, imgt, imgcen)
			grid.AddScaledFloat64(accum, imgt, seg.Dt)
		}

		pool.Merge(func() { grid.AddFloat64(final, accum) })
	})

	in.logf("expos: run %s complete, max exposure %.3g", pool.RunID, final.Max())
	return final, nil
}

func buildTimeSegs(in *Inputs) ([]pipeline.TimeSeg, error) {
	cc := in.InstPar.NewCoordConv()

	var segs []pipeline.TimeSeg
	for gi := 0; gi < in.GTI.NumIntervals(); gi++ {
		tstart, tstop := in.GTI.Start[gi], in.GTI.Stop[gi]
		n, deltat := pipeline.NumGTISubdivisions(tstart, tstop, in.Cfg.DeltaT)

		for ti := 0; ti < n; ti++ {
			t := tstart + (float64(ti)+0.5)*deltat

			att, err := in.Attitude.Interpolate(t)
			if err != nil {
				return nil, err
			}
			cc.UpdatePointing(att.RA, att.Dec, att.Roll)

			deadcf := float32(1)
			if in.DeadCor != nil {
				v, err := in.DeadCor.Interpolate(t)
				if err != nil {
					return nil, err
				}
				deadcf = v
			}

			for _, src := range in.Cfg.Sources {
				sx, sy := cc.RADec2CCD(src.RA, src.Dec)
				srcCCD := geom.Point{X: sx, Y: sy}
				if !in.Mode.SourceValid(srcCCD) {
					continue
				}
				segs = append(segs, pipeline.TimeSeg{
					SrcRA: src.RA, SrcDec: src.Dec,
					Idx: len(segs), T: t, Dt: deltat * float64(deadcf),
				})
			}
		}
	}
	return segs, nil
}

func min4(a, b, c, d float64) float64 {
	m := a
	for _, v := range []float64{b, c, d} {
		if v < m {
			m = v
		}
	}
	return m
}

func max4(a, b, c, d float64) float64 {
	m := a
	for _, v := range []float64{b, c, d} {
		if v > m {
			m = v
		}
	}
	return m
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rectOverlap reports whether [ax1,ax2]x[ay1,ay2] and [bx1,bx2]x[by1,by2]
// overlap (inclusive ranges).
func rectOverlap(ax1, ax2, ay1, ay2, bx1, bx2, by1, by2 int) bool {
	return ax1 <= bx2 && ax2 >= bx1 && ay2 >= by1 && ay1 <= by2
}

// processTimeSeg fills imgt (already sized to the output image) with
// the detector map sampled through this time slice's pointing and
// projection, zeroed outside the reprojected detector footprint and
// inside masked regions.
func processTimeSeg(seg pipeline.TimeSeg, in *Inputs, cc *coords.CoordConv, attTab *timetab.AttitudeTable, dm *detmap.DetMap, imgt *grid.Image[float64], imgcen geom.Point) {
	imgt.Fill(0)

	att, err := attTab.Interpolate(seg.T)
	if err != nil {
		return
	}
	cc.UpdatePointing(att.RA, att.Dec, att.Roll)

	srcX, srcY := cc.RADec2CCD(seg.SrcRA, seg.SrcDec)
	srcCCD := geom.Point{X: srcX, Y: srcY}
	delPt := srcCCD.Sub(geom.Point{X: in.InstPar.XRef, Y: in.InstPar.YRef})
	origin := in.Mode.Origin(srcCCD)

	mat := in.Mode.RotationMatrix(att.Roll, delPt)
	mat.Scale(1 / in.Cfg.PixSize)
	matrev := in.Mode.RotationMatrix(-att.Roll, delPt)
	matrev.Scale(in.Cfg.PixSize)

	corner := func(p geom.Point) geom.Point {
		return mat.Apply(p.Sub(origin)).Add(imgcen)
	}
	ic1 := corner(geom.Point{X: 0, Y: 0})
	ic2 := corner(geom.Point{X: detmap.CCDXW, Y: 0})
	ic3 := corner(geom.Point{X: 0, Y: detmap.CCDYW})
	ic4 := corner(geom.Point{X: detmap.CCDXW, Y: detmap.CCDYW})

	xlo := int(math.Floor(min4(ic1.X, ic2.X, ic3.X, ic4.X)))
	xhi := int(math.Ceil(max4(ic1.X, ic2.X, ic3.X, ic4.X)))
	ylo := int(math.Floor(min4(ic1.Y, ic2.Y, ic3.Y, ic4.Y)))
	yhi := int(math.Ceil(max4(ic1.Y, ic2.Y, ic3.Y, ic4.Y)))

	xw, yw := in.Cfg.XW, in.Cfg.YW
	if !rectOverlap(xlo, xhi, ylo, yhi, -1, xw, -1, yw) {
		return
	}

	minx := clampInt(xlo-1, 0, xw-1)
	maxx := clampInt(xhi+1, 0, xw-1)
	miny := clampInt(ylo-1, 0, yw-1)
	maxy := clampInt(yhi+1, 0, yw-1)

	dmimg := dm.GetMap(seg.T)

	for y := miny; y <= maxy; y++ {
		for x := minx; x <= maxx; x++ {
			det := matrev.Apply(geom.Point{X: float64(x), Y: float64(y)}.Sub(imgcen)).Add(origin)
			dix := detPixelIndex(det.X)
			diy := detPixelIndex(det.Y)
			if dix >= 0 && diy >= 0 && dix < detmap.CCDXW && diy < detmap.CCDYW {
				imgt.Set(x, y, float64(dmimg.At(dix, diy)))
			}
		}
	}

	if in.Mask != nil {
		maskedPolys := in.Mask.AsCCDPoly(cc)
		geom.ApplyShiftRotationShift(maskedPolys, mat, origin, imgcen)
		raster.FillPolys(maskedPolys, imgt)
	}
}

// detPixelIndex converts a continuous detector coordinate to a pixel
// index. The +16/-16 bias keeps the truncated quantity positive so
// int() truncation behaves like floor() even for v close to zero,
// where a plain int(v-0.5) would truncate toward zero instead.
func detPixelIndex(v float64) int {
	return int(v+16-0.5) - 16
}
