package timetab

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// EventTable holds the EVENTS extension: one row per recorded photon.
// CCDX/CCDY are derived (RawX+SubX, RawY+SubY) and recomputed whenever
// the underlying columns are permuted by a filter.
type EventTable struct {
	RawX, RawY, TMNr  []int16
	RA, Dec, Time     []float64
	PI, SubX, SubY    []float32
	CCDX, CCDY        []float32
}

// LoadEventTable reads the EVENTS extension from r.
func LoadEventTable(r fitscol.ColumnReader) (*EventTable, error) {
	if err := r.MoveHDU("EVENTS"); err != nil {
		return nil, pipeerr.IO("opening EVENTS extension", err)
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading row count for EVENTS", err)
	}

	e := &EventTable{
		RawX: make([]int16, n), RawY: make([]int16, n), TMNr: make([]int16, n),
		RA: make([]float64, n), Dec: make([]float64, n), Time: make([]float64, n),
		PI: make([]float32, n), SubX: make([]float32, n), SubY: make([]float32, n),
	}
	cols := []struct {
		name string
		dst  any
	}{
		{"RAWX", &e.RawX}, {"RAWY", &e.RawY}, {"TM_NR", &e.TMNr},
		{"RA", &e.RA}, {"DEC", &e.Dec}, {"TIME", &e.Time},
		{"PI", &e.PI}, {"SUBX", &e.SubX}, {"SUBY", &e.SubY},
	}
	for _, c := range cols {
		if err := r.ReadColumn(c.name, c.dst); err != nil {
			return nil, pipeerr.IO("reading event column "+c.name, err)
		}
	}
	e.deriveCCD()
	return e, nil
}

func (e *EventTable) deriveCCD() {
	n := len(e.RawX)
	e.CCDX = make([]float32, n)
	e.CCDY = make([]float32, n)
	for i := 0; i < n; i++ {
		e.CCDX[i] = float32(e.RawX[i]) + e.SubX[i]
		e.CCDY[i] = float32(e.RawY[i]) + e.SubY[i]
	}
}

// NumEntries returns the number of events.
func (e *EventTable) NumEntries() int { return len(e.RawX) }

// applyIndices permutes every column in lockstep to keep[i].
func (e *EventTable) applyIndices(keep []int) {
	n := len(keep)
	rawx := make([]int16, n)
	rawy := make([]int16, n)
	tmnr := make([]int16, n)
	ra := make([]float64, n)
	dec := make([]float64, n)
	tm := make([]float64, n)
	pi := make([]float32, n)
	subx := make([]float32, n)
	suby := make([]float32, n)
	for i, j := range keep {
		rawx[i] = e.RawX[j]
		rawy[i] = e.RawY[j]
		tmnr[i] = e.TMNr[j]
		ra[i] = e.RA[j]
		dec[i] = e.Dec[j]
		tm[i] = e.Time[j]
		pi[i] = e.PI[j]
		subx[i] = e.SubX[j]
		suby[i] = e.SubY[j]
	}
	e.RawX, e.RawY, e.TMNr = rawx, rawy, tmnr
	e.RA, e.Dec, e.Time = ra, dec, tm
	e.PI, e.SubX, e.SubY = pi, subx, suby
	e.deriveCCD()
}

// FilterTM keeps only events recorded by telescope module tm.
func (e *EventTable) FilterTM(tm int16) {
	keep := make([]int, 0, len(e.TMNr))
	for i, v := range e.TMNr {
		if v == tm {
			keep = append(keep, i)
		}
	}
	e.applyIndices(keep)
}

// FilterPI keeps only events with PI in [lo, hi].
func (e *EventTable) FilterPI(lo, hi float32) {
	keep := make([]int, 0, len(e.PI))
	for i, v := range e.PI {
		if v >= lo && v <= hi {
			keep = append(keep, i)
		}
	}
	e.applyIndices(keep)
}

// FilterGTI keeps only events whose Time falls within gti, assuming
// Time is already sorted (the invariant this method itself preserves).
// It uses a merge-style sweep against the GTI intervals rather than a
// per-event binary search.
func (e *EventTable) FilterGTI(gti *GTITable) error {
	if !sort.Float64sAreSorted(e.Time) {
		return pipeerr.Domain("FilterGTI requires a time-sorted event table", nil)
	}
	keep := make([]int, 0, len(e.Time))
	gi := 0
	ng := len(gti.Start)
	for i, t := range e.Time {
		for gi < ng && t >= gti.Stop[gi] {
			gi++
		}
		if gi < ng && t >= gti.Start[gi] && t < gti.Stop[gi] {
			keep = append(keep, i)
		}
	}
	e.applyIndices(keep)
	return nil
}

// BadPixEntry is one row of a TM's BADPIX extension: the pixel column
// rawx, rows [rawy, rawy+yextent), bad during [timemin, timemax).
type BadPixEntry struct {
	RawX, RawY, YExtent int
	TimeMin, TimeMax    float64
}

// LoadBadPixEntries reads the BADPIX<tm> extension from r, normalizing
// non-finite TIMEMIN/TIMEMAX to -Inf/+Inf.
func LoadBadPixEntries(r fitscol.ColumnReader, tm int) ([]BadPixEntry, error) {
	hdu := fmt.Sprintf("BADPIX%d", tm)
	if err := r.MoveHDU(hdu); err != nil {
		return nil, pipeerr.IO("opening bad pixel extension "+hdu, err)
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading row count for "+hdu, err)
	}

	var rawx, rawy, yext []int32
	var tmin, tmax []float64
	for _, c := range []struct {
		name string
		dst  any
	}{
		{"RAWX", &rawx}, {"RAWY", &rawy}, {"YEXTENT", &yext},
		{"TIMEMIN", &tmin}, {"TIMEMAX", &tmax},
	} {
		if err := r.ReadColumn(c.name, c.dst); err != nil {
			return nil, pipeerr.IO("reading bad pixel column "+c.name, err)
		}
	}

	entries := make([]BadPixEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = BadPixEntry{
			RawX: int(rawx[i]), RawY: int(rawy[i]), YExtent: int(yext[i]),
			TimeMin: normalizeTimeMin(tmin[i]),
			TimeMax: normalizeTimeMax(tmax[i]),
		}
	}
	return entries, nil
}

// normalizeTimeMin maps a non-finite (typically NaN, meaning "no lower
// bound") TIMEMIN to -Inf so range comparisons need no special case.
func normalizeTimeMin(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return math.Inf(-1)
	}
	return t
}

// normalizeTimeMax maps a non-finite TIMEMAX (no upper bound) to +Inf.
func normalizeTimeMax(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return math.Inf(1)
	}
	return t
}
