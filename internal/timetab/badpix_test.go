package timetab

import (
	"math"
	"testing"
)

func TestNewBadPixSetNormalizesAndDedupsEdges(t *testing.T) {
	entries := []BadPixEntry{
		{RawX: 1, RawY: 1, YExtent: 1, TimeMin: negInf, TimeMax: 100},
		{RawX: 2, RawY: 2, YExtent: 1, TimeMin: 100, TimeMax: posInf},
	}
	bp := NewBadPixSet(entries)

	want := []float64{math.Inf(-1), 100, math.Inf(1)}
	if len(bp.TEdge) != len(want) {
		t.Fatalf("TEdge = %v, want %v", bp.TEdge, want)
	}
	for i := range want {
		if bp.TEdge[i] != want[i] {
			t.Errorf("TEdge[%d] = %v, want %v", i, bp.TEdge[i], want[i])
		}
	}
}

func TestBadPixSetEdgeChangedOnlyOnBracketExit(t *testing.T) {
	entries := []BadPixEntry{
		{RawX: 1, RawY: 1, YExtent: 1, TimeMin: 0, TimeMax: 100},
	}
	bp := NewBadPixSet(entries)

	if !bp.EdgeChanged(10) {
		t.Fatal("first call should report a change")
	}
	if bp.EdgeChanged(20) {
		t.Fatal("second call within the same bracket should not report a change")
	}
	if !bp.EdgeChanged(150) {
		t.Fatal("call outside the bracket should report a change")
	}
}

func TestBadPixSetActiveAt(t *testing.T) {
	entries := []BadPixEntry{
		{RawX: 1, RawY: 1, YExtent: 1, TimeMin: 0, TimeMax: 100},
		{RawX: 2, RawY: 2, YExtent: 1, TimeMin: 100, TimeMax: 200},
	}
	bp := NewBadPixSet(entries)

	active := bp.ActiveAt(50)
	if len(active) != 1 || active[0].RawX != 1 {
		t.Errorf("ActiveAt(50) = %v, want just the first entry", active)
	}
	active = bp.ActiveAt(150)
	if len(active) != 1 || active[0].RawX != 2 {
		t.Errorf("ActiveAt(150) = %v, want just the second entry", active)
	}
}

func TestNormalizeTimeMinMax(t *testing.T) {
	if v := normalizeTimeMin(math.NaN()); v != negInf {
		t.Errorf("normalizeTimeMin(NaN) = %v, want -Inf", v)
	}
	if v := normalizeTimeMax(math.NaN()); v != posInf {
		t.Errorf("normalizeTimeMax(NaN) = %v, want +Inf", v)
	}
	if v := normalizeTimeMin(42); v != 42 {
		t.Errorf("normalizeTimeMin(42) = %v, want 42", v)
	}
}
