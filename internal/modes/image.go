package modes

import (
	"math"

	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeline"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// RunImage builds the source-relative counts image: every event is
// checked against the detector mask and sky mask, projected through
// the configured mode relative to each configured source, and
// incremented into the nearest output pixel.
func RunImage(in *Inputs) (*grid.Image[int], error) {
	cfg := in.Cfg
	xw, yw := cfg.XW, cfg.YW
	imgcen := geom.Point{X: float64(xw) / 2, Y: float64(yw) / 2}

	chunks := buildImageChunks(in)
	final := grid.New[int](xw, yw)
	if len(chunks) == 0 {
		in.logf("image: no work chunks (empty event table or source list)")
		return final, nil
	}

	pool := pipeline.NewPool()
	queue := pipeline.NewQueue(&pool.Mu, chunks)
	in.logf("image: run %s, %d chunks over %d workers", pool.RunID, len(chunks), cfg.Threads)

	pool.Run(cfg.Threads, func(workerIdx int) {
		cc := in.InstPar.NewCoordConv()
		dm := in.DetMap.Clone()
		att := in.Attitude.Clone()
		img := grid.New[int](xw, yw)

		for {
			chunk, ok := queue.Pop()
			if !ok {
				break
			}
			processImageChunk(chunk, in, cc, att, dm, img, imgcen)
		}

		pool.Merge(func() { final.Add(img) })
	})

	in.logf("image: run %s complete, max pixel %d", pool.RunID, final.Max())
	return final, nil
}

// buildImageChunks splits the event table into chunkSize-sized blocks,
// once per configured source -- a generalization of the original
// tool's single fixed source per run.
func buildImageChunks(in *Inputs) []pipeline.Chunk {
	n := in.Events.NumEntries()
	var chunks []pipeline.Chunk
	for _, src := range in.Cfg.Sources {
		for start := 0; start < n; start += chunkSize {
			size := chunkSize
			if start+size > n {
				size = n - start
			}
			chunks = append(chunks, pipeline.Chunk{
				SrcRA: src.RA, SrcDec: src.Dec,
				Idx: len(chunks), Start: start, Size: size,
			})
		}
	}
	return chunks
}

func processImageChunk(chunk pipeline.Chunk, in *Inputs, cc *coords.CoordConv, attTab *timetab.AttitudeTable, dm *detmap.DetMap, img *grid.Image[int], imgcen geom.Point) {
	events := in.Events
	end := chunk.Start + chunk.Size
	if end > events.NumEntries() {
		end = events.NumEntries()
	}

	for i := chunk.Start; i < end; i++ {
		t := events.Time[i]

		dmimg := dm.GetMap(t)
		if dmimg.At(int(events.RawX[i])-1, int(events.RawY[i])-1) == 0 {
			continue
		}

		evtpt := geom.Point{X: float64(events.CCDX[i]), Y: float64(events.CCDY[i])}

		att, err := attTab.Interpolate(t)
		if err != nil {
			continue
		}
		cc.UpdatePointing(att.RA, att.Dec, att.Roll)

		if in.Mask != nil && in.Mask.AsCCDPoly(cc).AnyContains(evtpt) {
			continue
		}

		srcX, srcY := cc.RADec2CCD(chunk.SrcRA, chunk.SrcDec)
		srcCCD := geom.Point{X: srcX, Y: srcY}
		if !in.Mode.SourceValid(srcCCD) {
			continue
		}

		origin := in.Mode.Origin(srcCCD)
		relPt := evtpt.Sub(origin)

		delPt := srcCCD.Sub(geom.Point{X: in.InstPar.XRef, Y: in.InstPar.YRef})
		mat := in.Mode.RotationMatrix(att.Roll, delPt)
		relPt = mat.Apply(relPt)

		scalePt := relPt.Div(in.Cfg.PixSize).Add(imgcen)
		px := int(math.Round(scalePt.X))
		py := int(math.Round(scalePt.Y))
		if img.InBounds(px, py) {
			img.Set(px, py, img.At(px, py)+1)
		}
	}
}
