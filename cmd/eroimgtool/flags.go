package main

import (
	"flag"
	"os"

	"github.com/banshee-data/eroimgtool/internal/caldb"
	"github.com/banshee-data/eroimgtool/internal/config"
	"github.com/banshee-data/eroimgtool/internal/detmap"
	"github.com/banshee-data/eroimgtool/internal/fitsio"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/instpar"
	"github.com/banshee-data/eroimgtool/internal/modes"
	"github.com/banshee-data/eroimgtool/internal/projmode"
	"github.com/banshee-data/eroimgtool/internal/skymask"
	"github.com/banshee-data/eroimgtool/internal/timetab"
)

// rawFlags holds every subcommand's flag values before validation, as
// filled in by the flag package's typed Var bindings (list-valued flags
// stay raw strings until buildConfig parses them).
type rawFlags struct {
	fs *flag.FlagSet

	tm         int
	sources    string
	projName   string
	projArgs   string
	pixsize    float64
	maskFile   string
	maskPts    string
	useDetMap  bool
	shadowMask bool
	gtiFile    string
	xw, yw     int
	piMin      float64
	piMax      float64
	deltaT     float64
	samples    int
	threads    int
	bitpix     int
}

func newFlagSet(name string) (*rawFlags, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	r := &rawFlags{fs: fs}

	fs.IntVar(&r.tm, "tm", 1, "telescope module (1..7)")
	fs.StringVar(&r.sources, "sources", "", "ra,dec,ra,dec,... source positions")
	fs.StringVar(&r.projName, "proj", "full", "projection mode")
	fs.StringVar(&r.projArgs, "proj-args", "", "projection-mode arguments")
	fs.Float64Var(&r.pixsize, "pixsize", config.DefaultPixSize, "output pixel size")
	fs.StringVar(&r.maskFile, "mask", "", "sky mask image")
	fs.StringVar(&r.maskPts, "mask-pts", "", "ra,dec,rad,... circular point masks")
	fs.BoolVar(&r.useDetMap, "detmap", false, "use the CALDB DETMAP calibration weight")
	fs.BoolVar(&r.shadowMask, "shadowmask", false, "zero the bottom readout rows")
	fs.StringVar(&r.gtiFile, "gti", "", "external GTI file (defaults to the event file)")
	fs.IntVar(&r.xw, "xw", config.DefaultXW, "output image width")
	fs.IntVar(&r.yw, "yw", config.DefaultYW, "output image height")
	fs.Float64Var(&r.piMin, "pi-min", 0, "PI filter lower bound")
	fs.Float64Var(&r.piMax, "pi-max", 0, "PI filter upper bound")
	fs.Float64Var(&r.deltaT, "delta-t", config.DefaultDeltaT, "GTI subdivision width (seconds)")
	fs.IntVar(&r.samples, "samples", 0, "cap the number of exposure-map time samples")
	fs.IntVar(&r.threads, "threads", config.DefaultThreads, "worker thread count")
	fs.IntVar(&r.bitpix, "bitpix", config.DefaultBitpix, "output bitpix")

	outFile := fs.String("out", "", "output file path")
	debugPlot := fs.String("debug-plot", "", "write a PNG visualization of the result to this path")
	return r, outFile, debugPlot
}

// buildConfig validates positional event/out files plus the parsed
// flags into a config.Config.
func (r *rawFlags) buildConfig(eventFile, outFile string) (*config.Config, error) {
	sources, err := config.ParseSources(r.sources)
	if err != nil {
		return nil, err
	}
	maskPts, err := config.ParseMaskPts(r.maskPts)
	if err != nil {
		return nil, err
	}
	projArgs, err := config.ParseFloats(r.projArgs)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		EventFile: eventFile, OutFile: outFile,
		TM: r.tm, Sources: sources,
		ProjName: r.projName, ProjArgs: projArgs,
		PixSize:    r.pixsize,
		MaskFile:   r.maskFile,
		MaskPts:    maskPts,
		UseDetMap:  r.useDetMap,
		ShadowMask: r.shadowMask,
		GTIFile:    r.gtiFile,
		XW:         r.xw, YW: r.yw,
		PIMin: r.piMin, PIMax: r.piMax,
		DeltaT: r.deltaT, Samples: r.samples, Threads: r.threads,
		Bitpix: r.bitpix,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadInputs resolves calibration, loads and filters every time-keyed
// table off the event file, and assembles a modes.Inputs ready to hand
// to a driver.
func loadInputs(cfg *config.Config) (*modes.Inputs, error) {
	reader, err := fitsio.Open(cfg.EventFile)
	if err != nil {
		return nil, err
	}

	store, err := caldb.Open(caldbCachePath())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	indexReader, err := fitsio.Open(caldb.IndexPath(os.Getenv("CALDB"), cfg.TM))
	if err != nil {
		return nil, err
	}

	geomPath, err := store.Resolve(indexReader, cfg.TM, "GEOM")
	if err != nil {
		return nil, err
	}
	geomReader, err := fitsio.Open(geomPath)
	if err != nil {
		return nil, err
	}
	ip, err := instpar.Load(geomReader)
	if err != nil {
		return nil, err
	}

	var staticDetMapImg *grid.Image[float32]
	if cfg.UseDetMap {
		detmapPath, err := store.Resolve(indexReader, cfg.TM, "DETMAP")
		if err != nil {
			return nil, err
		}
		detmapReader, err := fitsio.Open(detmapPath)
		if err != nil {
			return nil, err
		}
		img, err := detmapReader.ReadImageFloat32("")
		if err != nil {
			return nil, err
		}
		staticDetMapImg = img
	}

	dm, err := detmap.New(reader, cfg.TM, staticDetMapImg, cfg.ShadowMask)
	if err != nil {
		return nil, err
	}

	events, err := timetab.LoadEventTable(reader)
	if err != nil {
		return nil, err
	}
	events.FilterTM(int16(cfg.TM))
	if cfg.PIMax != 0 {
		events.FilterPI(float32(cfg.PIMin), float32(cfg.PIMax))
	}

	gtiSource := reader
	if cfg.GTIFile != "" {
		gtiSource, err = fitsio.Open(cfg.GTIFile)
		if err != nil {
			return nil, err
		}
	}
	gti, err := timetab.LoadGTITable(gtiSource, cfg.TM)
	if err != nil {
		return nil, err
	}
	if err := events.FilterGTI(gti); err != nil {
		return nil, err
	}

	attitude, err := timetab.LoadAttitudeTable(reader, cfg.TM)
	if err != nil {
		return nil, err
	}

	var deadcor *timetab.DeadCorTable
	if d, err := timetab.LoadDeadCorTable(reader, cfg.TM); err == nil {
		deadcor = d
	}

	var mask *skymask.Mask
	if cfg.MaskFile != "" || len(cfg.MaskPts) > 0 {
		var points []skymask.Point
		for _, p := range cfg.MaskPts {
			points = append(points, skymask.Point{RA: p.RA, Dec: p.Dec, RadiusPix: p.RadiusPix})
		}
		mask, err = loadSkyMask(cfg.MaskFile, points)
		if err != nil {
			return nil, err
		}
	}

	mode, err := projmode.New(cfg.ProjName, cfg.ProjArgs)
	if err != nil {
		return nil, err
	}

	return &modes.Inputs{
		Cfg: cfg, Events: events, Attitude: attitude, DeadCor: deadcor,
		GTI: gti, DetMap: dm, Mask: mask, InstPar: ip, Mode: mode,
		Logger: logger,
	}, nil
}

func caldbCachePath() string {
	if p := os.Getenv("CALDB"); p != "" {
		return p + "/caldb_cache.db"
	}
	return "caldb_cache.db"
}
