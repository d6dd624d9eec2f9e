package modes

import (
	"testing"

	"github.com/banshee-data/eroimgtool/internal/config"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/instpar"
	"github.com/banshee-data/eroimgtool/internal/projmode"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

func emptyBadPixReader() fitscol.ColumnReader {
	return fitscol.NewMemTableReader(map[string]map[string]any{
		"BADPIX0": {
			"RAWX":    []int32{},
			"RAWY":    []int32{},
			"YEXTENT": []int32{},
			"TIMEMIN": []float64{},
			"TIMEMAX": []float64{},
		},
	})
}

// testInputs builds a minimal, internally consistent Inputs with no
// bad pixels, no sky mask, a single source whose RA/Dec exactly
// matches a fixed boresight (so it lands on the reference pixel), and
// the "full" projection mode (identity rotation, unrestricted).
func testInputs(t *testing.T, events *timetab.EventTable, gti *timetab.GTITable, threads int) *Inputs {
	t.Helper()

	dm, err := detmap.New(emptyBadPixReader(), 0, nil, false)
	if err != nil {
		t.Fatalf("detmap.New: %v", err)
	}

	return &Inputs{
		Cfg: &config.Config{
			XW: 10, YW: 10, PixSize: 1, Threads: threads, DeltaT: 50,
			Sources: []config.SourcePos{{RA: 10, Dec: 10}},
		},
		Events:   events,
		Attitude: &timetab.AttitudeTable{Time: []float64{0, 1000}, RA: []float64{10, 10}, Dec: []float64{10, 10}, Roll: []float64{0, 0}},
		GTI:      gti,
		DetMap:   dm,
		Mask:     nil,
		InstPar:  &instpar.InstPar{XPlateScale: 1, YPlateScale: 1, XRef: 5, YRef: 5},
		Mode:     projmode.AverageFull{},
	}
}

func oneEventTable(t float64, x, y float32) *timetab.EventTable {
	return &timetab.EventTable{
		RawX: []int16{100}, RawY: []int16{100}, TMNr: []int16{1},
		RA: []float64{10}, Dec: []float64{10}, Time: []float64{t},
		PI: []float32{100}, SubX: []float32{0}, SubY: []float32{0},
		CCDX: []float32{x}, CCDY: []float32{y},
	}
}

func TestRunImageIncrementsNearestPixelAtBoresight(t *testing.T) {
	in := testInputs(t, oneEventTable(5, 5, 5), nil, 1)

	img, err := RunImage(in)
	if err != nil {
		t.Fatalf("RunImage: %v", err)
	}
	if img.At(5, 5) != 1 {
		t.Errorf("img.At(5,5) = %d, want 1", img.At(5, 5))
	}
	total := 0
	for _, v := range img.Arr {
		total += v
	}
	if total != 1 {
		t.Errorf("total counts = %d, want 1", total)
	}
}

func TestRunImageSkipsBadPixel(t *testing.T) {
	in := testInputs(t, oneEventTable(5, 5, 5), nil, 1)
	// RawX=1,RawY=1 -> zero-indexed (0,0), which is always zeroed as a
	// CCD edge pixel.
	in.Events.RawX[0] = 1
	in.Events.RawY[0] = 1

	img, err := RunImage(in)
	if err != nil {
		t.Fatalf("RunImage: %v", err)
	}
	for _, v := range img.Arr {
		if v != 0 {
			t.Fatalf("expected no counts, found %d", v)
		}
	}
}

func manyEventTable(n int) *timetab.EventTable {
	e := &timetab.EventTable{
		RawX: make([]int16, n), RawY: make([]int16, n), TMNr: make([]int16, n),
		RA: make([]float64, n), Dec: make([]float64, n), Time: make([]float64, n),
		PI: make([]float32, n), SubX: make([]float32, n), SubY: make([]float32, n),
		CCDX: make([]float32, n), CCDY: make([]float32, n),
	}
	for i := 0; i < n; i++ {
		e.RawX[i], e.RawY[i] = 100, 100
		e.RA[i], e.Dec[i] = 10, 10
		e.Time[i] = float64(i % 900)
		e.PI[i] = 100
		e.CCDX[i] = float32(i%10) + 0.5
		e.CCDY[i] = float32((i / 10) % 10)
	}
	return e
}

// TestRunImageReproducibleAcrossThreadCounts grounds the reproducibility
// property: the total pixel sum of the accumulated image must not
// depend on how the work was split across worker threads.
func TestRunImageReproducibleAcrossThreadCounts(t *testing.T) {
	events := manyEventTable(2000)

	run := func(threads int) *testingImageTotal {
		in := testInputs(t, events, nil, threads)
		img, err := RunImage(in)
		if err != nil {
			t.Fatalf("RunImage(threads=%d): %v", threads, err)
		}
		return &testingImageTotal{sum(img.Arr)}
	}

	want := run(1)
	for _, threads := range []int{2, 4, 8} {
		got := run(threads)
		if got.total != want.total {
			t.Errorf("threads=%d total=%d, want %d", threads, got.total, want.total)
		}
	}
}

type testingImageTotal struct{ total int }

func sum(xs []int) int {
	s := 0
	for _, v := range xs {
		s += v
	}
	return s
}

func TestRunEventEmitsSourceRelativeOffsets(t *testing.T) {
	in := testInputs(t, oneEventTable(5, 7, 5), nil, 1)

	out, err := RunEvent(in)
	if err != nil {
		t.Fatalf("RunEvent: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].DX != 2 || out[0].DY != 0 {
		t.Errorf("got (dx,dy)=(%v,%v), want (2,0)", out[0].DX, out[0].DY)
	}
	if out[0].PI != 100 {
		t.Errorf("PI = %v, want 100", out[0].PI)
	}
}

func TestRunExposureEmptyGTIYieldsZeroExposure(t *testing.T) {
	in := testInputs(t, oneEventTable(5, 5, 5), &timetab.GTITable{Start: []float64{}, Stop: []float64{}}, 1)

	img, err := RunExposure(in)
	if err != nil {
		t.Fatalf("RunExposure: %v", err)
	}
	for _, v := range img.Arr {
		if v != 0 {
			t.Fatalf("expected zero exposure, found %v", v)
		}
	}
}

func TestRunExposureAccumulatesPositiveTime(t *testing.T) {
	in := testInputs(t, oneEventTable(5, 5, 5), &timetab.GTITable{Start: []float64{0}, Stop: []float64{100}}, 1)
	in.Cfg.DeltaT = 100

	img, err := RunExposure(in)
	if err != nil {
		t.Fatalf("RunExposure: %v", err)
	}
	if img.At(5, 5) <= 0 {
		t.Errorf("img.At(5,5) = %v, want > 0", img.At(5, 5))
	}
}

// TestRunExposureReproducibleAcrossThreadCounts is spec.md's concrete
// exposure-map reproducibility scenario: the same GTIs and sources
// must sum to the same total exposure regardless of thread count.
func TestRunExposureReproducibleAcrossThreadCounts(t *testing.T) {
	gti := &timetab.GTITable{Start: []float64{0, 500}, Stop: []float64{200, 900}}

	run := func(threads int) float64 {
		in := testInputs(t, oneEventTable(5, 5, 5), gti, threads)
		img, err := RunExposure(in)
		if err != nil {
			t.Fatalf("RunExposure(threads=%d): %v", threads, err)
		}
		total := 0.0
		for _, v := range img.Arr {
			total += v
		}
		return total
	}

	want := run(1)
	for _, threads := range []int{2, 8} {
		if got := run(threads); got != want {
			t.Errorf("threads=%d total=%v, want %v", threads, got, want)
		}
	}
}
