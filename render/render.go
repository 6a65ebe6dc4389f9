// Package render turns traceplot loggers into charts using gonum/plot.
// Each logger becomes one subplot drawing, per variable, a solid mean line
// and a shaded min/max envelope produced by the logger's downsampling.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/traceplot/traceplot"
)

// DefaultMaxPoints is the display budget applied when Options.MaxPoints is
// left zero.
const DefaultMaxPoints = 200

// Layout arranges subplots in a grid. The zero value lays loggers out in a
// single row. When Rows and Cols are set, Rows*Cols must equal the number of
// loggers or plotting fails with a LayoutError.
type Layout struct {
	Rows, Cols int
}

// LayoutError reports a subplot grid whose cell count does not match the
// number of loggers provided.
type LayoutError struct {
	Rows, Cols, Loggers int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout of %dx%d cells cannot hold %d loggers", e.Rows, e.Cols, e.Loggers)
}

// Options controls rendering.
type Options struct {
	// MaxPoints is the display budget per variable. Loggers holding more
	// samples than this are downsampled into mean/min/max buckets.
	// Zero means DefaultMaxPoints.
	MaxPoints int
	// Layout optionally arranges the subplot grid.
	Layout Layout
	// Colormap names the palette used for every subplot, overriding each
	// logger's own colormap. Known names: "default", "dark", "soft".
	Colormap string
}

// Chart is a rendered set of subplots whose series data can be replaced in
// place by Update.
type Chart struct {
	plots      []*plot.Plot
	series     [][]chartSeries
	logScale   []bool
	rows, cols int
	maxPoints  int
}

type chartSeries struct {
	line *plotter.Line
	band *plotter.Polygon
}

// Plots exposes the underlying gonum plots for caller-side styling. The
// slice is indexed in logger order.
func (c *Chart) Plots() []*plot.Plot { return c.plots }

func paletteFor(name string) ([]color.Color, error) {
	switch name {
	case "", "default":
		return plotutil.DefaultColors, nil
	case "dark":
		return plotutil.DarkColors, nil
	case "soft":
		return plotutil.SoftColors, nil
	default:
		return nil, &traceplot.ConfigError{Reason: fmt.Sprintf("unknown colormap %q", name)}
	}
}

// checkLogRange rejects data a log10 axis cannot draw. gonum's log ticker
// panics on values <= 0, so the renderer refuses them up front.
func checkLogRange[T, V traceplot.Real](lg *traceplot.Logger[T, V]) error {
	if minV, _, ok := lg.Range(); ok && minV <= 0 {
		return &traceplot.ConfigError{Reason: fmt.Sprintf("log10 axis requires positive values, observed minimum %g", minV)}
	}
	return nil
}

func resolveLayout(l Layout, loggers int) (rows, cols int, err error) {
	if l.Rows == 0 && l.Cols == 0 {
		return 1, loggers, nil
	}
	rows, cols = l.Rows, l.Cols
	if rows < 1 || cols < 1 || rows*cols != loggers {
		return 0, 0, &LayoutError{Rows: l.Rows, Cols: l.Cols, Loggers: loggers}
	}
	return rows, cols, nil
}

func bandColor(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 70}
}

func lineXYs(p traceplot.Points) plotter.XYs {
	xys := make(plotter.XYs, len(p.X))
	for i := range p.X {
		xys[i] = plotter.XY{X: p.X[i], Y: p.Mean[i]}
	}
	return xys
}

// bandRing builds the closed polygon tracing the max edge forward and the
// min edge backward. Single-sample buckets contribute coincident vertices,
// collapsing the band to zero width at that point.
func bandRing(p traceplot.Points) plotter.XYs {
	ring := make(plotter.XYs, 0, 2*len(p.X))
	for i := range p.X {
		ring = append(ring, plotter.XY{X: p.X[i], Y: p.Max[i]})
	}
	for i := len(p.X) - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: p.X[i], Y: p.Min[i]})
	}
	return ring
}

// Plot renders one subplot per logger, composed row-major into the layout
// from opts. A logger holding no samples fails with traceplot.ErrEmptyLogger,
// a layout whose cell count differs from the logger count fails with a
// LayoutError, and a logger marked for a log10 axis whose values include zero
// or negatives fails with a ConfigError. The loggers are read, never mutated,
// and the returned chart holds copies of their data: appending afterwards
// does not change it.
func Plot[T, V traceplot.Real](opts Options, loggers ...*traceplot.Logger[T, V]) (*Chart, error) {
	if len(loggers) == 0 {
		return nil, &traceplot.ConfigError{Reason: "no loggers to plot"}
	}
	maxPoints := opts.MaxPoints
	if maxPoints == 0 {
		maxPoints = DefaultMaxPoints
	}
	rows, cols, err := resolveLayout(opts.Layout, len(loggers))
	if err != nil {
		return nil, err
	}
	c := &Chart{
		rows:      rows,
		cols:      cols,
		maxPoints: maxPoints,
	}
	for _, lg := range loggers {
		pts, err := lg.Downsample(maxPoints)
		if err != nil {
			return nil, err
		}
		colormap := opts.Colormap
		if colormap == "" {
			colormap = lg.Colormap()
		}
		palette, err := paletteFor(colormap)
		if err != nil {
			return nil, err
		}
		logY := lg.YScale() == traceplot.Log10
		if logY {
			if err := checkLogRange(lg); err != nil {
				return nil, err
			}
		}
		p := plot.New()
		p.X.Label.Text = lg.XLabel()
		p.Y.Label.Text = lg.YLabel()
		if logY {
			p.Y.Scale = plot.LogScale{}
			p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		}
		legend := lg.Legend()
		variables := make([]chartSeries, lg.Variables())
		for v := range variables {
			col := palette[v%len(palette)]
			band, err := plotter.NewPolygon(bandRing(pts[v]))
			if err != nil {
				return nil, fmt.Errorf("building envelope for variable %d: %w", v, err)
			}
			band.Color = bandColor(col)
			band.LineStyle.Color = color.NRGBA{}
			line, err := plotter.NewLine(lineXYs(pts[v]))
			if err != nil {
				return nil, fmt.Errorf("building mean line for variable %d: %w", v, err)
			}
			line.LineStyle.Color = col
			line.LineStyle.Width = vg.Points(1.5)
			p.Add(band, line)
			if legend[v] != "" {
				p.Legend.Add(legend[v], line)
			}
			variables[v] = chartSeries{line: line, band: band}
		}
		c.plots = append(c.plots, p)
		c.series = append(c.series, variables)
		c.logScale = append(c.logScale, logY)
	}
	return c, nil
}

// Update replaces the chart's series data in place with freshly downsampled
// data from the given loggers, which must match the chart's subplot count
// and per-subplot variable counts. All replacement data is computed before
// any series is touched, so a failed update leaves the chart as it was.
func Update[T, V traceplot.Real](c *Chart, loggers ...*traceplot.Logger[T, V]) error {
	if len(loggers) != len(c.plots) {
		return &LayoutError{Rows: c.rows, Cols: c.cols, Loggers: len(loggers)}
	}
	type replacement struct {
		line plotter.XYs
		ring plotter.XYs
	}
	staged := make([][]replacement, len(loggers))
	for i, lg := range loggers {
		if lg.Variables() != len(c.series[i]) {
			return &traceplot.ShapeError{Want: len(c.series[i]), Got: lg.Variables()}
		}
		if c.logScale[i] {
			if err := checkLogRange(lg); err != nil {
				return err
			}
		}
		pts, err := lg.Downsample(c.maxPoints)
		if err != nil {
			return err
		}
		staged[i] = make([]replacement, len(pts))
		for v := range pts {
			staged[i][v] = replacement{line: lineXYs(pts[v]), ring: bandRing(pts[v])}
		}
	}
	for i := range staged {
		for v := range staged[i] {
			c.series[i][v].line.XYs = staged[i][v].line
			c.series[i][v].band.XYs = []plotter.XYs{staged[i][v].ring}
		}
	}
	return nil
}
