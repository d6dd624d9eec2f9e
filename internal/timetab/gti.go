package timetab

import (
	"fmt"
	"sort"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// GTITable holds a TM's good-time intervals: parallel Start/Stop
// arrays with Start[i] < Stop[i] <= Start[i+1].
type GTITable struct {
	Start, Stop []float64
}

// LoadGTITable reads the GTI<tm> (falling back to STDGTI) extension
// from r.
func LoadGTITable(r fitscol.ColumnReader, tm int) (*GTITable, error) {
	hdu := fmt.Sprintf("GTI%d", tm)
	err := r.MoveHDU(hdu)
	if err != nil {
		hdu = "STDGTI"
		if err2 := r.MoveHDU(hdu); err2 != nil {
			return nil, pipeerr.IO(fmt.Sprintf("opening GTI extension (tried GTI%d and STDGTI)", tm), err)
		}
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading row count for "+hdu, err)
	}

	g := &GTITable{Start: make([]float64, n), Stop: make([]float64, n)}
	if err := r.ReadColumn("START", &g.Start); err != nil {
		return nil, pipeerr.IO("reading START column", err)
	}
	if err := r.ReadColumn("STOP", &g.Stop); err != nil {
		return nil, pipeerr.IO("reading STOP column", err)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks Start[i] < Stop[i] for every interval, returning a
// domain error on the first violation (a zero-length or inverted GTI
// slice is a domain error, not silently dropped).
func (g *GTITable) Validate() error {
	for i := range g.Start {
		if g.Stop[i] <= g.Start[i] {
			return pipeerr.Domain(fmt.Sprintf("invalid GTI at index %d: start=%g stop=%g", i, g.Start[i], g.Stop[i]), nil)
		}
	}
	return nil
}

// NumIntervals returns the number of GTI intervals.
func (g *GTITable) NumIntervals() int { return len(g.Start) }

type gtiEvent struct {
	t     float64
	delta int
	// stops sort before starts at equal time
	isStop bool
}

// Intersect returns the intersection of a and b: the merged set of
// time ranges during which both tables consider the time "good". The
// two tables' start/stop events are merged by timestamp and swept with
// a counter incremented on a start and decremented on a stop; a new
// output interval opens when the counter first reaches 2 and closes
// when it falls below 2. Adjacent identical endpoints are collapsed.
func Intersect(a, b *GTITable) *GTITable {
	events := make([]gtiEvent, 0, 2*(len(a.Start)+len(b.Start)))
	for _, g := range []*GTITable{a, b} {
		for i := range g.Start {
			events = append(events, gtiEvent{t: g.Start[i], delta: 1, isStop: false})
			events = append(events, gtiEvent{t: g.Stop[i], delta: -1, isStop: true})
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].t != events[j].t {
			return events[i].t < events[j].t
		}
		// process stops before starts at equal time, so two GTIs that
		// only touch (one ending where the other starts) never count
		// as overlapping and yield no zero-width output interval; an
		// output interval split this way at a shared endpoint is
		// rejoined by the collapse step below.
		return events[i].isStop && !events[j].isStop
	})

	out := &GTITable{}
	counter := 0
	var openAt float64
	for _, ev := range events {
		old := counter
		counter += ev.delta
		if old < 2 && counter >= 2 {
			openAt = ev.t
		} else if old >= 2 && counter < 2 {
			out.Start = append(out.Start, openAt)
			out.Stop = append(out.Stop, ev.t)
		}
	}

	// collapse adjacent identical endpoints
	merged := &GTITable{}
	for i := range out.Start {
		if len(merged.Start) > 0 && merged.Stop[len(merged.Stop)-1] == out.Start[i] {
			merged.Stop[len(merged.Stop)-1] = out.Stop[i]
			continue
		}
		merged.Start = append(merged.Start, out.Start[i])
		merged.Stop = append(merged.Stop, out.Stop[i])
	}

	return merged
}

// IntersectInPlace replaces g's contents with Intersect(g, o).
func (g *GTITable) IntersectInPlace(o *GTITable) {
	merged := Intersect(g, o)
	g.Start = merged.Start
	g.Stop = merged.Stop
}

// Equal reports whether g and o have identical intervals.
func (g *GTITable) Equal(o *GTITable) bool {
	if len(g.Start) != len(o.Start) {
		return false
	}
	for i := range g.Start {
		if g.Start[i] != o.Start[i] || g.Stop[i] != o.Stop[i] {
			return false
		}
	}
	return true
}
