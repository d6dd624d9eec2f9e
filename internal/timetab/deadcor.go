package timetab

import (
	"fmt"
	"sort"

	"github.com/banshee-data/eroimgtool/internal/fitscol"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// DeadCorTable holds a TM's DEADCOR<n> extension: dead-time correction
// fraction as a function of time.
type DeadCorTable struct {
	Time  []float64
	Deadc []float32
	cur   cursor
}

// LoadDeadCorTable reads the DEADCOR<tm> extension from r.
func LoadDeadCorTable(r fitscol.ColumnReader, tm int) (*DeadCorTable, error) {
	hdu := fmt.Sprintf("DEADCOR%d", tm)
	if err := r.MoveHDU(hdu); err != nil {
		return nil, pipeerr.IO("opening dead-time extension "+hdu, err)
	}
	n, err := r.NumRows()
	if err != nil {
		return nil, pipeerr.IO("reading row count for "+hdu, err)
	}

	d := &DeadCorTable{Time: make([]float64, n), Deadc: make([]float32, n)}
	if err := r.ReadColumn("TIME", &d.Time); err != nil {
		return nil, pipeerr.IO("reading TIME column", err)
	}
	if err := r.ReadColumn("DEADC", &d.Deadc); err != nil {
		return nil, pipeerr.IO("reading DEADC column", err)
	}
	if !sort.Float64sAreSorted(d.Time) {
		return nil, pipeerr.Decode("dead-time table time column is not sorted", nil)
	}
	return d, nil
}

// Interpolate returns the dead-time correction fraction at time t.
func (d *DeadCorTable) Interpolate(t float64) (float32, error) {
	if err := d.cur.locate(d.Time, t); err != nil {
		return 0, err
	}
	i := d.cur.idx
	t0, t1 := d.Time[i], d.Time[i+1]
	return float32(lerp(t, t0, t1, float64(d.Deadc[i]), float64(d.Deadc[i+1]))), nil
}

// Clone returns a copy of d with its own interpolation cursor.
func (d *DeadCorTable) Clone() *DeadCorTable {
	return &DeadCorTable{Time: d.Time, Deadc: d.Deadc}
}
