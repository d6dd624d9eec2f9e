package grid

import "testing"

func TestFillAndAt(t *testing.T) {
	im := New[float64](4, 3)
	im.Fill(2.5)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if im.At(x, y) != 2.5 {
				t.Fatalf("at(%d,%d)=%g, want 2.5", x, y, im.At(x, y))
			}
		}
	}
}

func TestSubrectClips(t *testing.T) {
	im := New[int](3, 3)
	for i := range im.Arr {
		im.Arr[i] = i
	}
	sub := im.Subrect(-1, -1, 2, 2)
	// only (0,0) of the original overlaps -> out pixel (1,1)
	if sub.At(1, 1) != im.At(0, 0) {
		t.Errorf("expected clipped subrect to preserve overlapping pixel")
	}
	if sub.At(0, 0) != 0 {
		t.Errorf("expected out-of-bounds pixel to stay zero")
	}
}

func TestAddScaledCommutative(t *testing.T) {
	a := NewFilled[float64](2, 2, 1.0)
	b := NewFilled[float64](2, 2, 2.0)
	c := NewFilled[float64](2, 2, 3.0)

	sum1 := New[float64](2, 2)
	sum1.AddScaled(a, 1)
	sum1.AddScaled(b, 1)
	sum1.AddScaled(c, 1)

	sum2 := New[float64](2, 2)
	sum2.AddScaled(c, 1)
	sum2.AddScaled(a, 1)
	sum2.AddScaled(b, 1)

	for i := range sum1.Arr {
		if sum1.Arr[i] != sum2.Arr[i] {
			t.Fatalf("reduction order changed result: %g vs %g", sum1.Arr[i], sum2.Arr[i])
		}
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	im := New[int](3, 2)
	for i := range im.Arr {
		im.Arr[i] = i
	}
	tt := im.Transpose().Transpose()
	if tt.XW != im.XW || tt.YW != im.YW {
		t.Fatalf("dims changed: got %dx%d want %dx%d", tt.XW, tt.YW, im.XW, im.YW)
	}
	for i := range im.Arr {
		if tt.Arr[i] != im.Arr[i] {
			t.Errorf("mismatch at %d: %d vs %d", i, tt.Arr[i], im.Arr[i])
		}
	}
}
