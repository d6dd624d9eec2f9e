package modes

import (
	"github.com/banshee-data/eroimgtool/internal/coords"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/pipeline"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// EventOut is one output row of event mode: the photon's
// source-relative position after the projection mode's rotation, in
// detector pixels (not divided by the output pixel size), and its
// pulse-invariant channel.
type EventOut struct {
	DX, DY, PI float32
}

// RunEvent reprojects every event relative to each configured source,
// the same way RunImage does, but emits a (dx, dy, pi) tuple per
// surviving event instead of incrementing a pixel.
func RunEvent(in *Inputs) ([]EventOut, error) {
	chunks := buildImageChunks(in)
	if len(chunks) == 0 {
		in.logf("event: no work chunks (empty event table or source list)")
		return nil, nil
	}

	pool := pipeline.NewPool()
	queue := pipeline.NewQueue(&pool.Mu, chunks)
	in.logf("event: run %s, %d chunks over %d workers", pool.RunID, len(chunks), in.Cfg.Threads)

	var final []EventOut

	pool.Run(in.Cfg.Threads, func(workerIdx int) {
		cc := in.InstPar.NewCoordConv()
		dm := in.DetMap.Clone()
		att := in.Attitude.Clone()
		out := make([]EventOut, 0, 8192)

		for {
			chunk, ok := queue.Pop()
			if !ok {
				break
			}
			out = processEventChunk(chunk, in, cc, att, dm, out)
		}

		pool.Merge(func() { final = append(final, out...) })
	})

	in.logf("event: run %s complete, %d events emitted", pool.RunID, len(final))
	return final, nil
}

func processEventChunk(chunk pipeline.Chunk, in *Inputs, cc *coords.CoordConv, attTab *timetab.AttitudeTable, dm *detmap.DetMap, out []EventOut) []EventOut {
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

		out = append(out, EventOut{DX: float32(relPt.X), DY: float32(relPt.Y), PI: events.PI[i]})
	}

	return out
}
