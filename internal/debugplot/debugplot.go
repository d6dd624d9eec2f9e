// Package debugplot renders optional PNG visualizations of an
// accumulated image/exposure map or a mask's polygon outlines, for the
// --debug-plot flag. It mirrors the monitoring role the teacher's
// internal/lidar/monitor/gridplotter.go plays for grid state, applied
// here to a single accumulated Image rather than a time series.
package debugplot

import (
	"fmt"
	"image/color"

	"github.com/banshee-data/eroimgtool/internal/geom"
	"github.com/banshee-data/eroimgtool/internal/grid"
	"github.com/banshee-data/eroimgtool/internal/pipeerr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// imageGrid adapts an Image[float64] to plotter.GridXYZ, row (c,r)
// indexing pixel (c,r) directly -- debug plots are in pixel space, not
// sky or detector coordinates.
type imageGrid struct {
	img *grid.Image[float64]
}

func (g imageGrid) Dims() (c, r int) { return g.img.XW, g.img.YW }
func (g imageGrid) X(c int) float64  { return float64(c) }
func (g imageGrid) Y(r int) float64  { return float64(r) }
func (g imageGrid) Z(c, r int) float64 {
	return g.img.At(c, r)
}

// RenderImage writes a heatmap PNG of img to path, for visualizing an
// accumulated image or exposure map.
func RenderImage(img *grid.Image[float64], title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (pix)"
	p.Y.Label.Text = "y (pix)"

	pal := palette.Heat(255, 1)
	hm, err := plotter.NewHeatMap(imageGrid{img: img}, pal)
	if err != nil {
		return pipeerr.IO(fmt.Sprintf("building heatmap for %s", path), err)
	}
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return pipeerr.IO(fmt.Sprintf("saving debug plot %s", path), err)
	}
	return nil
}

// RenderIntImage is RenderImage for integer-valued images (the image
// mode accumulator), converting to float64 for display.
func RenderIntImage(img *grid.Image[int], title, path string) error {
	f := grid.New[float64](img.XW, img.YW)
	for i, v := range img.Arr {
		f.Arr[i] = float64(v)
	}
	return RenderImage(f, title, path)
}

// RenderMaskOutline writes a PNG of polys' outlines over an xw x yw
// canvas, for visualizing a resolved sky mask's reprojected polygons.
func RenderMaskOutline(polys geom.PolyVec, xw, yw int, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (pix)"
	p.Y.Label.Text = "y (pix)"
	p.X.Min, p.X.Max = 0, float64(xw)
	p.Y.Min, p.Y.Max = 0, float64(yw)

	for _, poly := range polys {
		if len(poly.Pts) < 2 {
			continue
		}
		pts := make(plotter.XYs, len(poly.Pts)+1)
		for i, pt := range poly.Pts {
			pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		pts[len(poly.Pts)] = plotter.XY{X: poly.Pts[0].X, Y: poly.Pts[0].Y}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return pipeerr.IO(fmt.Sprintf("building mask outline for %s", path), err)
		}
		line.Color = color.RGBA{R: 200, A: 255}
		p.Add(line)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return pipeerr.IO(fmt.Sprintf("saving debug plot %s", path), err)
	}
	return nil
}

// RenderScatter writes a PNG scatter plot of pts, for visualizing event
// mode's output (dx, dy) photon positions.
func RenderScatter(pts []geom.Point, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "dx (pix)"
	p.Y.Label.Text = "dy (pix)"

	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return pipeerr.IO(fmt.Sprintf("building scatter plot for %s", path), err)
	}
	sc.GlyphStyle.Radius = vg.Points(0.5)
	sc.GlyphStyle.Color = color.RGBA{B: 200, A: 255}
	p.Add(sc)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return pipeerr.IO(fmt.Sprintf("saving debug plot %s", path), err)
	}
	return nil
}
