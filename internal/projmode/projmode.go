// Package projmode implements the pluggable projection modes that
// define the reference frame of an output image, exposure map, or
// event list: each answers whether a source position is valid for the
// current pointing, what rotation to apply to detector-relative
// offsets, and what origin those offsets are measured from.
package projmode

import (
	"fmt"
	"math"

	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
)

// ccdCentre is the nominal optical-axis pixel shared by every mode that
// needs a fixed detector centre, per the original tool's hard-coded
// assumption.
const ccdCentre = 192.0

// Mode is one projection mode variant.
type Mode interface {
	// SourceValid reports whether a source projected to ccdpt should be
	// accumulated at all under this mode.
	SourceValid(ccdpt geom.Point) bool
	// RotationMatrix returns the rotation to apply to detector-relative
	// offsets given the current roll (degrees) and delccd, the source's
	// CCD position relative to the reference pixel.
	RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2
	// Origin returns the point detector-relative offsets are measured
	// from, given the source's current CCD position.
	Origin(ccdpt geom.Point) geom.Point
	// Name describes the mode for banner/log output.
	Name() string
}

func sqr(x float64) float64 { return x * x }

func identityRotation(roll float64, delccd geom.Point) geom.Matrix2 {
	return geom.Matrix2{M00: 1, M01: 0, M10: 0, M11: 1}
}

func identityOrigin(ccdpt geom.Point) geom.Point { return ccdpt }

// AverageFoV accumulates in source-relative detector coordinates,
// restricted to the standard circular field of view.
type AverageFoV struct{}

func (AverageFoV) SourceValid(p geom.Point) bool {
	return sqr(p.X-ccdCentre)+sqr(p.Y-ccdCentre) < sqr(ccdCentre)
}
func (AverageFoV) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	return identityRotation(roll, delccd)
}
func (AverageFoV) Origin(p geom.Point) geom.Point { return identityOrigin(p) }
func (AverageFoV) Name() string                   { return "fov: source-relative detector coordinates for std FoV" }

// AverageFoVSky is AverageFoV but with offsets rotated so the result is
// sky-aligned rather than detector-aligned.
type AverageFoVSky struct{}

func (AverageFoVSky) SourceValid(p geom.Point) bool {
	return sqr(p.X-ccdCentre)+sqr(p.Y-ccdCentre) < sqr(ccdCentre)
}
func (AverageFoVSky) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	c, s := math.Cos((270-roll)*math.Pi/180), math.Sin((270-roll)*math.Pi/180)
	return geom.Matrix2{M00: c, M01: -s, M10: s, M11: c}
}
func (AverageFoVSky) Origin(p geom.Point) geom.Point { return identityOrigin(p) }
func (AverageFoVSky) Name() string {
	return "fov_sky: source-relative sky-rotated detector coordinates for std FoV"
}

// AverageFull is AverageFoV without the field-of-view radius cut.
type AverageFull struct{}

func (AverageFull) SourceValid(p geom.Point) bool { return true }
func (AverageFull) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	return identityRotation(roll, delccd)
}
func (AverageFull) Origin(p geom.Point) geom.Point { return identityOrigin(p) }
func (AverageFull) Name() string                   { return "full: source-relative detector coordinates, unrestricted" }

// WholeDet accumulates in fixed, non-source-relative detector
// coordinates -- useful for diagnostics, ignoring source tracking.
type WholeDet struct{}

func (WholeDet) SourceValid(p geom.Point) bool { return true }
func (WholeDet) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	return identityRotation(roll, delccd)
}
func (WholeDet) Origin(p geom.Point) geom.Point { return geom.Point{X: ccdCentre, Y: ccdCentre} }
func (WholeDet) Name() string                   { return "det: non-relative detector coordinates" }

// Radial keeps sources within an annulus [Rin, Rout) around (Cx, Cy).
type Radial struct {
	Rin, Rout float64
	Cx, Cy    float64
}

// NewRadial builds a Radial mode from its two required parameters
// (rin, rout), centred on the nominal CCD centre.
func NewRadial(args []float64) (*Radial, error) {
	if len(args) != 2 {
		return nil, pipeerr.Config(fmt.Sprintf("radial projection requires 2 parameters (rin,rout), got %d", len(args)), nil)
	}
	return &Radial{Rin: args[0], Rout: args[1], Cx: ccdCentre, Cy: ccdCentre}, nil
}

func (r *Radial) SourceValid(p geom.Point) bool {
	rad := math.Sqrt(sqr(p.X-r.Cx) + sqr(p.Y-r.Cy))
	return rad >= r.Rin && rad < r.Rout
}
func (r *Radial) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	return identityRotation(roll, delccd)
}
func (r *Radial) Origin(p geom.Point) geom.Point { return identityOrigin(p) }
func (r *Radial) Name() string {
	return fmt.Sprintf("radial: radial range of detector (%g to %g pix)", r.Rin, r.Rout)
}

// RadialSym is Radial but additionally rotates offsets so the source
// always lies on the +x axis, symmetrizing the accumulated image.
type RadialSym struct {
	Radial
}

// NewRadialSym builds a RadialSym mode sharing Radial's two parameters.
func NewRadialSym(args []float64) (*RadialSym, error) {
	r, err := NewRadial(args)
	if err != nil {
		return nil, err
	}
	return &RadialSym{Radial: *r}, nil
}

func (r *RadialSym) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	theta := -math.Atan2(delccd.Y, delccd.X)
	c, s := math.Cos(theta), math.Sin(theta)
	return geom.Matrix2{M00: c, M01: -s, M10: s, M11: c}
}
func (r *RadialSym) Name() string {
	return fmt.Sprintf("radial symmetric: radial range of detector (%g to %g pix)", r.Rin, r.Rout)
}

// Box keeps sources within the axis-aligned box [X1,X2) x [Y1,Y2).
type Box struct {
	X1, Y1, X2, Y2 float64
}

// NewBox builds a Box mode from its four required parameters
// (x1, y1, x2, y2).
func NewBox(args []float64) (*Box, error) {
	if len(args) != 4 {
		return nil, pipeerr.Config(fmt.Sprintf("box projection requires 4 parameters (x1,y1,x2,y2), got %d", len(args)), nil)
	}
	return &Box{X1: args[0], Y1: args[1], X2: args[2], Y2: args[3]}, nil
}

func (b *Box) SourceValid(p geom.Point) bool {
	return p.X >= b.X1 && p.Y >= b.Y1 && p.X < b.X2 && p.Y < b.Y2
}
func (b *Box) RotationMatrix(roll float64, delccd geom.Point) geom.Matrix2 {
	return identityRotation(roll, delccd)
}
func (b *Box) Origin(p geom.Point) geom.Point { return identityOrigin(p) }
func (b *Box) Name() string {
	return fmt.Sprintf("box: range (x=%g:%g,y=%g:%g pix)", b.X1, b.X2, b.Y1, b.Y2)
}

// New constructs a Mode by its CLI name (fov, fov_sky, full, det,
// radial, radial_sym, box), parsing args for the modes that need them.
func New(name string, args []float64) (Mode, error) {
	switch name {
	case "fov":
		return AverageFoV{}, nil
	case "fov_sky":
		return AverageFoVSky{}, nil
	case "full":
		return AverageFull{}, nil
	case "det":
		return WholeDet{}, nil
	case "radial":
		return NewRadial(args)
	case "radial_sym":
		return NewRadialSym(args)
	case "box":
		return NewBox(args)
	default:
		return nil, pipeerr.Config(fmt.Sprintf("unknown projection mode %q", name), nil)
	}
}
