// Package timetab implements the time-keyed tables shared by every mode
// driver: attitude, dead-time correction, good-time intervals, the
// event table itself, and the bad-pixel time-edge bookkeeping that
// backs the detector-map cache. The shared discipline is a monotonic
// cursor into a strictly non-decreasing time array, giving amortized
// O(1) lookup when queries arrive in (roughly) time order; a query far
// from the previous one walks the cursor there step by step (see
// cursor.go). Added to that is linear
// interpolation of RA/Dec and of roll via its sine/cosine so wrap at
// +/-180 degrees never biases the result.
package timetab

import (
	"fmt"
	"math"

	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// cursor maintains an index i into a strictly non-decreasing time array
// such that time[i] <= t < time[i+1], moving monotonically from its
// last position rather than re-searching from scratch.
type cursor struct {
	idx int
}

// locate advances (or retreats) c.idx to bracket t in times, returning
// a domain error if t falls outside [times[0], times[len-1]].
func (c *cursor) locate(times []float64, t float64) error {
	n := len(times)
	if n == 0 {
		return pipeerr.Domain("empty time table", nil)
	}
	if t < times[0] || t > times[n-1] {
		return pipeerr.Domain(fmt.Sprintf("time %g out of range [%g, %g]", t, times[0], times[n-1]), nil)
	}
	if c.idx < 0 {
		c.idx = 0
	}
	if c.idx > n-2 {
		c.idx = n - 2
	}
	for c.idx+1 < n-1 && t > times[c.idx+1] {
		c.idx++
	}
	for c.idx > 0 && t < times[c.idx] {
		c.idx--
	}
	return nil
}

// lerp linearly interpolates between (t0,v0) and (t1,v1) at t.
func lerp(t, t0, t1, v0, v1 float64) float64 {
	if t1 == t0 {
		return v0
	}
	frac := (t - t0) / (t1 - t0)
	return v0 + frac*(v1-v0)
}

// lerpAngleDeg interpolates an angle given in degrees via its
// sine/cosine components, so the result does not wrap badly across
// +/-180 degrees.
func lerpAngleDeg(t, t0, t1, a0, a1 float64) float64 {
	s0, c0 := math.Sincos(a0 * math.Pi / 180)
	s1, c1 := math.Sincos(a1 * math.Pi / 180)
	s := lerp(t, t0, t1, s0, s1)
	c := lerp(t, t0, t1, c0, c1)
	return math.Atan2(s, c) * 180 / math.Pi
}

// binarySearchIdx returns the index i such that times[i] <= t <
// times[i+1], using a fresh binary search: a reference lookup that is
// independent of prior query history. Nothing in the package calls it.
func binarySearchIdx(times []float64, t float64) int {
	lo, hi := 0, len(times)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if times[mid] <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
