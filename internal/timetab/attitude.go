package timetab

import (
	"fmt"
	"sort"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// Attitude is the satellite pointing at a moment in time.
type Attitude struct {
	RA, Dec, Roll float64 // degrees
}

// AttitudeTable holds a TM's CORRATT<n> extension: parallel arrays of
// time, RA, Dec, roll, strictly non-decreasing in time. It is
// immutable after construction except for its interpolation cursor,
// which each copy owns independently (each worker takes its own Clone,
// so each gets its own cursor -- see internal/modes).
type AttitudeTable struct {
	Time, RA, Dec, Roll []float64
	cur                 cursor
}

// LoadAttitudeTable reads the CORRATT<tm> extension from r.
func LoadAttitudeTable(r fitscol.ColumnReader, tm int) (*AttitudeTable, error) {
	hdu := fmt.Sprintf("CORRATT%d", tm)
	if err := r.MoveHDU(hdu); err != nil {
		return nil, pipeerr.IO("opening attitude extension "+hdu, err)
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading row count for "+hdu, err)
	}

	at := &AttitudeTable{}
	for _, col := range []struct {
		name string
		dst  *[]float64
	}{
		{"TIME", &at.Time},
		{"RA", &at.RA},
		{"DEC", &at.Dec},
		{"ROLL", &at.Roll},
	} {
		*col.dst = make([]float64, n)
		if err := r.ReadColumn(col.name, col.dst); err != nil {
			return nil, pipeerr.IO("reading attitude column "+col.name, err)
		}
	}

	if !sort.Float64sAreSorted(at.Time) {
		return nil, pipeerr.Decode("attitude table time column is not sorted", nil)
	}

	return at, nil
}

// Interpolate returns the attitude at time t, using a monotonic cursor
// cached on the table. RA/Dec are interpolated linearly; roll is
// interpolated via its sine/cosine so it does not wrap badly near
// +/-180 degrees.
func (a *AttitudeTable) Interpolate(t float64) (Attitude, error) {
	if err := a.cur.locate(a.Time, t); err != nil {
		return Attitude{}, err
	}
	i := a.cur.idx
	t0, t1 := a.Time[i], a.Time[i+1]
	return Attitude{
		RA:   lerp(t, t0, t1, a.RA[i], a.RA[i+1]),
		Dec:  lerp(t, t0, t1, a.Dec[i], a.Dec[i+1]),
		Roll: lerpAngleDeg(t, t0, t1, a.Roll[i], a.Roll[i+1]),
	}, nil
}

// Clone returns a copy of a with its own, independent interpolation
// cursor -- the shape each worker needs when it receives the table by
// value.
func (a *AttitudeTable) Clone() *AttitudeTable {
	return &AttitudeTable{
		Time: a.Time,
		RA:   a.RA,
		Dec:  a.Dec,
		Roll: a.Roll,
	}
}
