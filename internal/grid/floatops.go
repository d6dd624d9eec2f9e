package grid

import "gonum.org/v1/gonum/floats"

// AddFloat64 adds src into dst elementwise, in place, via gonum/floats
// -- the vectorized counterpart of Add for the float64 accumulators
// exposure mode reduces per worker.
func AddFloat64(dst, src *Image[float64]) {
	floats.Add(dst.Arr, src.Arr)
}

// AddScaledFloat64 adds src*scale into dst elementwise, in place, via
// gonum/floats.
func AddScaledFloat64(dst, src *Image[float64], scale float64) {
	floats.AddScaled(dst.Arr, scale, src.Arr)
}
