// Package render draws a choropleth PNG of the aggregated regions using a
// continuous single-hue ramp, in the style of an embeddable figure: no
// title, no frame, legend outside the map area.
package render

import (
	"image/color"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gridpop/popmap/internal/spatial"
)

// Options controls the output canvas. The defaults produce a 2400x1500 px
// PNG (8"x5" at 300 dpi).
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          float64
}

// DefaultOptions returns the standard canvas geometry.
func DefaultOptions() Options {
	return Options{WidthInches: 8, HeightInches: 5, DPI: 300}
}

// legendWidth is the horizontal slice of the canvas reserved for the legend.
const legendWidth = 1.2 * vg.Inch

// Render draws the region set as a choropleth and writes a PNG to path.
// Regions without an aggregated population are dropped before rendering;
// after zonal aggregation there should be none, but a stale collection must
// not poison the color scale.
func Render(regions spatial.RegionSet, path string, opts Options) error {
	if opts.WidthInches <= 0 || opts.HeightInches <= 0 || opts.DPI <= 0 {
		opts = DefaultOptions()
	}

	var drawable spatial.RegionSet
	for _, r := range regions {
		if r.HasPopulation {
			drawable = append(drawable, r)
		}
	}
	if dropped := len(regions) - len(drawable); dropped > 0 {
		zap.L().Warn("render: dropping regions without population", zap.Int("dropped", dropped))
	}
	if len(drawable) == 0 {
		return eris.New("render: no regions with population to draw")
	}

	min, max, _ := drawable.PopulationRange()
	scale := NewScale(min, max)

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthInches)*vg.Inch, vg.Length(opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(int(opts.DPI)),
	)
	dc := draw.New(img)

	// White page; the map itself has no frame or background of its own.
	dc.SetColor(color.White)
	dc.Fill(rectPath(dc.Rectangle))

	mapc := draw.Crop(dc, 0.25*vg.Inch, -legendWidth, 0.25*vg.Inch, -0.25*vg.Inch)
	legendc := draw.Crop(dc, dc.Rectangle.Max.X-dc.Rectangle.Min.X-legendWidth, 0, 0.25*vg.Inch, -0.25*vg.Inch)

	drawRegions(&mapc, drawable, scale)
	drawLegend(&legendc, scale)

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return eris.Wrap(err, "render: write png")
	}

	zap.L().Info("map written", zap.String("path", path))
	return nil
}

// drawRegions fills every polygon with its ramp color and strokes a muted
// translucent gray border.
func drawRegions(c *draw.Canvas, regions spatial.RegionSet, scale Scale) {
	minX, minY, maxX, maxY, _ := regions.Bounds()
	fit := newFit(minX, minY, maxX, maxY, c)

	border := color.NRGBA{R: 110, G: 110, B: 110, A: 120}

	for _, r := range regions {
		fill := scale.Color(r.Population)
		for pi := 0; pi < r.Geom.NumPolygons(); pi++ {
			poly := r.Geom.Polygon(pi)
			var p vg.Path
			for ri := 0; ri < poly.NumLinearRings(); ri++ {
				appendRing(&p, poly.LinearRing(ri).FlatCoords(), fit)
			}
			c.SetColor(fill)
			c.Fill(p)
			c.SetColor(border)
			c.SetLineWidth(vg.Points(0.6))
			c.Stroke(p)
		}
	}
}

// drawLegend draws a vertical gradient bar with min/mid/max labels, no
// frame and no background fill.
func drawLegend(c *draw.Canvas, scale Scale) {
	const steps = 120

	barX := c.Rectangle.Min.X + 0.15*vg.Inch
	barW := 0.22 * vg.Inch
	barBottom := c.Rectangle.Min.Y + 0.35*vg.Inch
	barTop := c.Rectangle.Max.Y - 0.35*vg.Inch
	barH := barTop - barBottom

	for i := 0; i < steps; i++ {
		frac := float64(i) / float64(steps-1)
		y0 := barBottom + vg.Length(float64(i)/steps)*barH
		y1 := barBottom + vg.Length(float64(i+1)/steps)*barH

		var p vg.Path
		p.Move(vg.Point{X: barX, Y: y0})
		p.Line(vg.Point{X: barX + barW, Y: y0})
		p.Line(vg.Point{X: barX + barW, Y: y1})
		p.Line(vg.Point{X: barX, Y: y1})
		p.Close()
		c.SetColor(scale.ColorAt(frac))
		c.Fill(p)
	}

	face := legendFace()
	c.SetColor(color.Black)
	labelX := barX + barW + 0.08*vg.Inch
	for _, tick := range []struct {
		frac  float64
		value float64
	}{
		{0, scale.Min},
		{0.5, scale.Min + (scale.Max-scale.Min)/2},
		{1, scale.Max},
	} {
		y := barBottom + vg.Length(tick.frac)*barH - 0.04*vg.Inch
		c.FillString(face, vg.Point{X: labelX, Y: y}, FormatPopulation(tick.value))
	}

	title := "Population"
	c.FillString(face, vg.Point{X: barX, Y: barTop + 0.12*vg.Inch}, title)
}

func legendFace() font.Face {
	cache := font.NewCache(liberation.Collection())
	return cache.Lookup(font.Font{Typeface: "Liberation", Variant: "Sans"}, vg.Points(9))
}

// fit maps data coordinates into a canvas, preserving aspect ratio.
type fit struct {
	scale        float64
	minX, minY   float64
	offX, offY   vg.Length
	originX, orY vg.Length
}

func newFit(minX, minY, maxX, maxY float64, c *draw.Canvas) fit {
	dw := maxX - minX
	dh := maxY - minY
	cw := float64(c.Rectangle.Max.X - c.Rectangle.Min.X)
	ch := float64(c.Rectangle.Max.Y - c.Rectangle.Min.Y)

	s := cw / dw
	if alt := ch / dh; alt < s {
		s = alt
	}

	// Center the map within the canvas.
	offX := vg.Length((cw - dw*s) / 2)
	offY := vg.Length((ch - dh*s) / 2)

	return fit{
		scale: s, minX: minX, minY: minY,
		offX: offX, offY: offY,
		originX: c.Rectangle.Min.X, orY: c.Rectangle.Min.Y,
	}
}

func (f fit) point(x, y float64) vg.Point {
	return vg.Point{
		X: f.originX + f.offX + vg.Length((x-f.minX)*f.scale),
		Y: f.orY + f.offY + vg.Length((y-f.minY)*f.scale),
	}
}

// appendRing appends a closed subpath for one ring.
func appendRing(p *vg.Path, flat []float64, f fit) {
	n := len(flat) / 2
	if n == 0 {
		return
	}
	p.Move(f.point(flat[0], flat[1]))
	for i := 1; i < n; i++ {
		p.Line(f.point(flat[2*i], flat[2*i+1]))
	}
	p.Close()
}

func rectPath(r vg.Rectangle) vg.Path {
	var p vg.Path
	p.Move(r.Min)
	p.Line(vg.Point{X: r.Max.X, Y: r.Min.Y})
	p.Line(r.Max)
	p.Line(vg.Point{X: r.Min.X, Y: r.Max.Y})
	p.Close()
	return p
}
