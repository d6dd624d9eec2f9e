package timetab

import (
	"math"
	"testing"
)

func TestAttitudeInterpolateIdentityRoll(t *testing.T) {
	at := &AttitudeTable{
		Time: []float64{0, 1},
		RA:   []float64{0, 0},
		Dec:  []float64{0, 0},
		Roll: []float64{90, 90},
	}
	att, err := at.Interpolate(0.5)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if att.RA != 0 || att.Dec != 0 {
		t.Errorf("RA/Dec = %v/%v, want 0/0", att.RA, att.Dec)
	}
	if math.Abs(att.Roll-90) > 1e-9 {
		t.Errorf("Roll = %v, want 90", att.Roll)
	}
}

func TestAttitudeInterpolateLerpsRADec(t *testing.T) {
	at := &AttitudeTable{
		Time: []float64{0, 10},
		RA:   []float64{0, 10},
		Dec:  []float64{0, 20},
		Roll: []float64{0, 0},
	}
	att, err := at.Interpolate(5)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if att.RA != 5 || att.Dec != 10 {
		t.Errorf("RA/Dec = %v/%v, want 5/10", att.RA, att.Dec)
	}
}

func TestAttitudeCloneHasIndependentCursor(t *testing.T) {
	at := &AttitudeTable{
		Time: []float64{0, 1, 2},
		RA:   []float64{0, 1, 2},
		Dec:  []float64{0, 0, 0},
		Roll: []float64{0, 0, 0},
	}
	if _, err := at.Interpolate(1.5); err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	clone := at.Clone()
	if _, err := clone.Interpolate(0.5); err != nil {
		t.Fatalf("Interpolate on clone: %v", err)
	}
	if at.cur.idx != 1 {
		t.Errorf("original cursor = %d after clone query, want 1", at.cur.idx)
	}
}
