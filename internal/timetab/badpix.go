package timetab

import (
	"math"
	"sort"
)

// BadPixSet bundles a TM's bad pixel entries with the sorted, de-duplicated
// set of times at which the active entry set can change (tedge): -Inf,
// every entry's TimeMin and TimeMax, and +Inf. A caller holding the last
// edge index only needs to check whether t has left [tedge[i], tedge[i+1])
// before rescanning, rather than rescanning every query.
type BadPixSet struct {
	Entries []BadPixEntry
	TEdge   []float64

	edgeIdx int
}

// NewBadPixSet builds the tedge bookkeeping for entries.
func NewBadPixSet(entries []BadPixEntry) *BadPixSet {
	edges := make([]float64, 0, 2*len(entries)+2)
	edges = append(edges, negInf)
	for _, e := range entries {
		edges = append(edges, e.TimeMin, e.TimeMax)
	}
	edges = append(edges, posInf)
	sort.Float64s(edges)
	edges = dedupSorted(edges)

	return &BadPixSet{Entries: entries, TEdge: edges, edgeIdx: -1}
}

func dedupSorted(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// EdgeChanged reports whether t has moved outside the edge bracket found
// by the previous call (or this is the first call), updating the cached
// bracket index either way. A caller rebuilding a derived image only
// needs to do so when this returns true.
func (b *BadPixSet) EdgeChanged(t float64) bool {
	if b.edgeIdx >= 0 && t >= b.TEdge[b.edgeIdx] && t < b.TEdge[b.edgeIdx+1] {
		return false
	}
	i := 0
	for i+2 < len(b.TEdge) && b.TEdge[i+1] <= t {
		i++
	}
	b.edgeIdx = i
	return true
}

// Clone returns a copy of b with its own, independent edge cache -- the
// shape each worker needs when it receives the detector map by value.
func (b *BadPixSet) Clone() *BadPixSet {
	return &BadPixSet{Entries: b.Entries, TEdge: b.TEdge, edgeIdx: -1}
}

// ActiveAt returns the entries whose [TimeMin, TimeMax) contains t.
func (b *BadPixSet) ActiveAt(t float64) []BadPixEntry {
	active := make([]BadPixEntry, 0)
	for _, e := range b.Entries {
		if t >= e.TimeMin && t < e.TimeMax {
			active = append(active, e)
		}
	}
	return active
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
