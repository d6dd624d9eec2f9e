package fitscol

import "testing"

func TestMemTableReaderRoundTrip(t *testing.T) {
	r := NewMemTableReader(map[string]map[string]any{
		"GTI1": {
			"START": []float64{0, 20},
			"STOP":  []float64{10, 30},
		},
	})

	if err := r.MoveHDU("GTI1"); err != nil {
		t.Fatalf("MoveHDU: %v", err)
	}
	n, err := r.NumRows()
	if err != nil {
		t.Fatalf("NumRows: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}

	var start []float64
	if err := r.ReadColumn("START", &start); err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	if len(start) != 2 || start[0] != 0 || start[1] != 20 {
		t.Errorf("unexpected START column: %v", start)
	}
}

func TestMemTableReaderMissingHDU(t *testing.T) {
	r := NewMemTableReader(map[string]map[string]any{})
	if err := r.MoveHDU("EVENTS"); err == nil {
		t.Fatal("expected error for missing extension")
	}
}

func TestMemTableReaderStringColumn(t *testing.T) {
	r := NewMemTableReader(map[string]map[string]any{
		"CIF": {
			"CAL_CNAM": []string{"GEOM", "DETMAP"},
			"CAL_FILE": []string{"geom_001.fits", "detmap_001.fits"},
			"CAL_QUAL": []int32{0, 0},
		},
	})
	if err := r.MoveHDU("CIF"); err != nil {
		t.Fatalf("MoveHDU: %v", err)
	}
	var names []string
	if err := r.ReadColumn("CAL_CNAM", &names); err != nil {
		t.Fatalf("ReadColumn: %v", err)
	}
	if len(names) != 2 || names[0] != "GEOM" || names[1] != "DETMAP" {
		t.Errorf("unexpected CAL_CNAM column: %v", names)
	}
}
