package pipeline

import "math"

// TimeSeg is one (source x GTI-subdivision) unit of exposure-mode work:
// the source position, its index in the original ordering (for
// progress logging), the sampled time, and the exposure-time weight
// dt this slice contributes.
type TimeSeg struct {
	SrcRA, SrcDec float64
	Idx           int
	T             float64
	Dt            float64
}

// Chunk is one (source x event-block) unit of image/event-mode work:
// events [Start, Start+Size) of the event table, evaluated against the
// given source.
type Chunk struct {
	SrcRA, SrcDec float64
	Idx           int
	Start, Size   int
}

// ApplySampling replaces segs with exactly samples uniformly-spaced
// draws along the cumulative-exposure-time axis of segs, each carrying
// dt = total_time/samples and the original segment's (SrcRA, SrcDec, T).
// Callers should only invoke this when 0 < samples < len(segs).
func ApplySampling(segs []TimeSeg, samples int) []TimeSeg {
	var tott float64
	for _, s := range segs {
		tott += s.Dt
	}
	deltat := tott / float64(samples)

	ts := 0
	tsum := segs[0].Dt

	out := make([]TimeSeg, samples)
	for i := 0; i < samples; i++ {
		t := (float64(i) + 0.5) * deltat
		for t > tsum {
			ts++
			tsum += segs[ts].Dt
		}
		out[i] = TimeSeg{
			SrcRA:  segs[ts].SrcRA,
			SrcDec: segs[ts].SrcDec,
			Idx:    i,
			T:      segs[ts].T,
			Dt:     deltat,
		}
	}
	return out
}

// NumGTISubdivisions returns how many equal-width slices of width at
// most deltat are needed to cover [tstart, tstop), and the exact width
// of each slice (tstop-tstart)/n.
func NumGTISubdivisions(tstart, tstop, deltat float64) (n int, width float64) {
	n = int(math.Ceil((tstop - tstart) / deltat))
	if n < 1 {
		n = 1
	}
	return n, (tstop - tstart) / float64(n)
}
