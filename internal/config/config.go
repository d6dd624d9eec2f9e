// Package config holds the parsed, validated run configuration shared
// by all three eroimgtool subcommands -- the Go equivalent of the
// original tool's Pars class, following the same self-validating shape
// the teacher's tuning config uses.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// SourcePos is one (RA, Dec) source position, in degrees.
type SourcePos struct {
	RA, Dec float64
}

// MaskPoint is a circular point-mask argument: centre in degrees, radius
// in CCD pixels.
type MaskPoint struct {
	RA, Dec, RadiusPix float64
}

// Config is the fully parsed and validated configuration for one
// eroimgtool run (image, expos, or event subcommand).
type Config struct {
	EventFile string
	OutFile   string

	TM      int
	Sources []SourcePos

	ProjName string
	ProjArgs []float64

	PixSize float64

	MaskFile string
	MaskPts  []MaskPoint

	UseDetMap  bool
	ShadowMask bool

	GTIFile string

	XW, YW int

	PIMin, PIMax float64

	DeltaT  float64
	Samples int
	Threads int

	Bitpix int
}

// Default dimensions and sampling matching the original tool's CLI
// defaults.
const (
	DefaultXW      = 400
	DefaultYW      = 400
	DefaultPixSize = 1.0
	DefaultDeltaT  = 10.0
	DefaultThreads = 1
	DefaultBitpix  = -32
)

// Validate checks the configuration for internally-inconsistent or
// out-of-range values that flag parsing itself cannot catch.
func (c *Config) Validate() error {
	if c.TM < 1 || c.TM > 7 {
		return pipeerr.Config(fmt.Sprintf("tm must be in 1..7, got %d", c.TM), nil)
	}
	if c.XW <= 0 || c.YW <= 0 {
		return pipeerr.Config(fmt.Sprintf("xw/yw must be positive, got %d/%d", c.XW, c.YW), nil)
	}
	if c.PixSize <= 0 {
		return pipeerr.Config(fmt.Sprintf("pixsize must be positive, got %g", c.PixSize), nil)
	}
	if c.PIMax != 0 && c.PIMin > c.PIMax {
		return pipeerr.Config(fmt.Sprintf("pi-min (%g) must not exceed pi-max (%g)", c.PIMin, c.PIMax), nil)
	}
	if c.Threads < 1 {
		return pipeerr.Config(fmt.Sprintf("threads must be at least 1, got %d", c.Threads), nil)
	}
	if c.Samples < 0 {
		return pipeerr.Config(fmt.Sprintf("samples must be non-negative, got %d", c.Samples), nil)
	}
	switch c.Bitpix {
	case -32, 8, 16:
	default:
		return pipeerr.Config(fmt.Sprintf("bitpix must be one of -32, 8, 16, got %d", c.Bitpix), nil)
	}
	if len(c.Sources) == 0 {
		return pipeerr.Config("at least one source position is required", nil)
	}
	return nil
}

// ImageCentre returns the pixel position the output image is centred
// on: the midpoint of the output image.
func (c *Config) ImageCentre() (x, y float64) {
	return float64(c.XW) / 2, float64(c.YW) / 2
}

// ParseSources parses a comma-separated "ra,dec,ra,dec,..." list into
// SourcePos values.
func ParseSources(s string) ([]SourcePos, error) {
	fields, err := parseFloats(s)
	if err != nil {
		return nil, pipeerr.Config("parsing --sources", err)
	}
	if len(fields)%2 != 0 {
		return nil, pipeerr.Config("--sources requires an even number of ra,dec values", nil)
	}
	out := make([]SourcePos, len(fields)/2)
	for i := range out {
		out[i] = SourcePos{RA: fields[2*i], Dec: fields[2*i+1]}
	}
	return out, nil
}

// ParseMaskPts parses a comma-separated "ra,dec,rad,ra,dec,rad,..." list
// into MaskPoint values.
func ParseMaskPts(s string) ([]MaskPoint, error) {
	if s == "" {
		return nil, nil
	}
	fields, err := parseFloats(s)
	if err != nil {
		return nil, pipeerr.Config("parsing --mask-pts", err)
	}
	if len(fields)%3 != 0 {
		return nil, pipeerr.Config("--mask-pts requires groups of ra,dec,rad", nil)
	}
	out := make([]MaskPoint, len(fields)/3)
	for i := range out {
		out[i] = MaskPoint{RA: fields[3*i], Dec: fields[3*i+1], RadiusPix: fields[3*i+2]}
	}
	return out, nil
}

// ParseFloats parses a comma-separated list of floats, used for
// --proj-args.
func ParseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	fields, err := parseFloats(s)
	if err != nil {
		return nil, pipeerr.Config("parsing float list", err)
	}
	return fields, nil
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
