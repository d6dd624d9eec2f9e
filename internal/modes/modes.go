// Package modes assembles the time-keyed tables, coordinate converter,
// detector map, sky mask and projection mode into the three run modes
// spec.md's mode drivers describe: image, exposure and event. Each
// driver builds a work list, dispatches it over internal/pipeline's
// worker pool, and reduces per-worker accumulators into a final result.
package modes

import (
	"log"

	"github.com/banshee-data/eroimgtool/internal/config"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/instpar"
	"github.com/banshee-data/eroimgtool/internal/projmode"
	"github.com/banshee-data/eroimgtool/internal/skymask"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// Inputs bundles every table and calibration object a mode driver
// needs, already loaded and filtered by the caller (the cmd/eroimgtool
// subcommand). Workers never mutate Inputs -- each clones the
// mutable pieces (AttitudeTable, DetMap) it needs its own cursor/cache
// for; GTITable, EventTable, Mask, InstPar and Mode are read-only after
// construction and safe to share.
type Inputs struct {
	Cfg      *config.Config
	Events   *timetab.EventTable
	Attitude *timetab.AttitudeTable
	DeadCor  *timetab.DeadCorTable
	GTI      *timetab.GTITable
	DetMap   *detmap.DetMap
	Mask     *skymask.Mask
	InstPar  *instpar.InstPar
	Mode     projmode.Mode

	// Logger receives per-run progress messages. A nil Logger disables
	// logging, matching internal/lidar/background_flusher.go's
	// *log.Logger field convention.
	Logger *log.Logger
}

// logf logs to in.Logger if one is configured, a no-op otherwise.
func (in *Inputs) logf(format string, args ...any) {
	if in.Logger != nil {
		in.Logger.Printf(format, args...)
	}
}

// chunkSize is the number of events grouped into one unit of image/event
// mode work, matching the original tool's fixed chunking constant.
const chunkSize = 400
