package main

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/traceplot/traceplot"
	"github.com/traceplot/traceplot/source"
)

var pauseIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPause)
	return icon
}()

var playIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPlayArrow)
	return icon
}()

var colors = []color.NRGBA{
	{R: 0xa4, G: 0x63, B: 0x3a, A: 0xff},
	{R: 0x85, G: 0x76, B: 0x25, A: 0xff}, //#857625
	{R: 0x51, G: 0x85, B: 0x4d, A: 0xff}, //#51854d
	{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff}, //#2b7fa8
	{R: 0x72, G: 0x6c, B: 0xae, A: 0xff}, //#726cae
	{R: 0x97, G: 0x5f, B: 0x91, A: 0xff}, //975f91
	{R: 0xff, A: 0xff},
	{G: 0xff, A: 0xff},
	{B: 0xff, A: 0xff},
	{R: 0xf0, G: 0xf0, A: 0xff},
}

// ChartData draws one logger's variables as a mean line with a shaded
// min/max envelope per plotted point. While unpaused it re-snapshots the
// shared logger every frame, so charts animate as the trace grows.
type ChartData struct {
	src       *source.SharedLogger
	maxPoints int
	logY      bool

	points             []traceplot.Points
	legend             []string
	xlabel             string
	rangeMin, rangeMax float64

	Enabled   []*widget.Bool
	pauseBtn  widget.Clickable
	paused    bool
	keyTable  component.GridState
	pos       f32.Point
	isHovered bool
}

func NewChart(maxPoints int, logY bool) *ChartData {
	return &ChartData{
		maxPoints: maxPoints,
		logY:      logY,
	}
}

// SetSource points the chart at a new shared logger. Stale plotted points
// are discarded so the next frame reflects the new trace.
func (c *ChartData) SetSource(src *source.SharedLogger) {
	if c.src == src {
		return
	}
	c.src = src
	c.points = nil
	c.Enabled = c.Enabled[:0]
}

func (c *ChartData) Update(gtx C) {
	if c.src == nil {
		return
	}
	for len(c.Enabled) < c.src.Variables() {
		c.Enabled = append(c.Enabled, &widget.Bool{Value: true})
	}
	if c.pauseBtn.Clicked(gtx) {
		c.paused = !c.paused
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move,
		})
		if !ok {
			break
		}
		switch ev := ev.(type) {
		case pointer.Event:
			switch ev.Kind {
			case pointer.Enter:
				c.isHovered = true
				c.pos = ev.Position
			case pointer.Leave, pointer.Cancel:
				c.isHovered = false
			case pointer.Move:
				c.pos = ev.Position
			}
		}
	}
	if !c.paused || c.points == nil {
		pts, err := c.src.Snapshot(c.maxPoints)
		if err != nil {
			// Empty loggers stay on the waiting screen.
			return
		}
		c.points = pts
		c.legend = c.src.Legend()
		c.xlabel = c.src.XLabel()
		c.rangeMin, c.rangeMax, _ = c.src.Range()
	}
}

// useLog reports whether the y axis can actually be logarithmic this frame.
// A non-positive range forces linear.
func (c *ChartData) useLog() bool {
	return c.logY && c.rangeMin > 0
}

func (c *ChartData) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	if len(c.points) == 0 {
		return layout.Center.Layout(gtx, material.Body1(th, "Waiting for samples...").Layout)
	}
	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}

	// Reserve space for axis labels using a representative label.
	macro := op.Record(gtx.Ops)
	axisLabelDims := material.Body1(th, strconv.FormatFloat(0, 'f', 3, 64)).Layout(gtx)
	_ = macro.Stop()

	macro = op.Record(gtx.Ops)
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	keyDims := c.layoutKey(gtx, th)
	keyCall := macro.Stop()

	gtx.Constraints = origConstraints.SubMax(image.Point{
		X: axisLabelDims.Size.Y * 2,
		Y: axisLabelDims.Size.Y,
	}.Add(image.Pt(0, keyDims.Size.Y)))
	macro = op.Record(gtx.Ops)
	dims, domainMin, domainMax := c.layoutPlot(gtx, th)
	plotCall := macro.Stop()
	gtx.Constraints = origConstraints

	minDomainLabel := material.Body1(th, strconv.FormatFloat(domainMin, 'f', -1, 64))
	maxDomainLabel := material.Body1(th, strconv.FormatFloat(domainMax, 'f', -1, 64))
	xAxisLabel := material.Body2(th, c.xlabel)
	xAxisLabel.MaxLines = 1
	xAxisLabel.Alignment = text.Middle
	minRangeLabel := material.Body1(th, strconv.FormatFloat(c.rangeMin, 'g', 4, 64))
	maxRangeLabel := material.Body1(th, strconv.FormatFloat(c.rangeMax, 'g', 4, 64))

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					return layout.Flex{Axis: layout.Vertical, Spacing: layout.SpaceBetween}.Layout(gtx,
						layout.Rigid(func(gtx C) D {
							gtx.Constraints.Min = image.Point{}
							return maxRangeLabel.Layout(gtx)
						}),
						layout.Rigid(func(gtx C) D {
							gtx.Constraints.Min = image.Point{}
							return minRangeLabel.Layout(gtx)
						}),
						layout.Rigid(func(gtx C) D {
							gtx.Constraints = layout.Exact(image.Point{
								X: axisLabelDims.Size.Y * 2,
								Y: axisLabelDims.Size.Y,
							})
							icon := pauseIcon
							if c.paused {
								icon = playIcon
							}
							return material.Clickable(gtx, &c.pauseBtn, func(gtx C) D {
								return layout.Center.Layout(gtx, func(gtx C) D {
									return icon.Layout(gtx, th.Fg)
								})
							})
						}),
					)
				}),
				layout.Flexed(1, func(gtx C) D {
					return layout.Flex{Axis: layout.Vertical, Spacing: layout.SpaceBetween}.Layout(gtx,
						layout.Flexed(1, func(gtx C) D {
							plotCall.Add(gtx.Ops)
							return dims
						}),
						layout.Rigid(func(gtx C) D {
							return layout.Flex{
								Axis:      layout.Horizontal,
								Alignment: layout.Baseline,
							}.Layout(gtx,
								layout.Rigid(minDomainLabel.Layout),
								layout.Flexed(1, xAxisLabel.Layout),
								layout.Rigid(maxDomainLabel.Layout),
							)
						}),
					)
				}),
			)
		}),
		layout.Rigid(func(gtx C) D {
			keyCall.Add(gtx.Ops)
			return keyDims
		}),
	)
}

// variableName returns the legend entry for a variable, falling back to its
// index when the trace header named fewer columns.
func (c *ChartData) variableName(i int) string {
	if i < len(c.legend) && c.legend[i] != "" {
		return c.legend[i]
	}
	return "v" + strconv.Itoa(i)
}

func (c *ChartData) layoutKey(gtx C, th *material.Theme) D {
	table := component.Table(th, &c.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	colorColWidth := gtx.Dp(50)
	statColWidth := gtx.Dp(100)
	nameColWidth := gtx.Constraints.Max.X - colorColWidth - 3*statColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	const (
		colorCol = iota
		nameCol
		lastCol
		minCol
		maxCol
		numCols
	)
	return table.Layout(gtx, len(c.points), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			var size int
			switch index {
			case colorCol:
				size = colorColWidth
			case nameCol:
				size = nameColWidth
			default:
				size = statColWidth
			}
			return min(size, constraint)
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case colorCol:
				l = material.Body1(th, "Color")
			case nameCol:
				l = material.Body1(th, "Variable")
				l.Alignment = text.Middle
			case lastCol:
				l = material.Body1(th, "Last")
				l.Alignment = text.End
			case minCol:
				l = material.Body1(th, "Min")
				l.Alignment = text.End
			case maxCol:
				l = material.Body1(th, "Max")
				l.Alignment = text.End
			default:
				l = material.Body1(th, "???")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					return l.Layout(gtx)
				},
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			dims = layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				c.Enabled[row].Update(gtx)
				enabled := c.Enabled[row].Value
				disabledAlpha := uint8(100)
				last, minV, maxV := variableStats(c.points[row])
				switch col {
				case colorCol:
					return c.Enabled[row].Layout(gtx, func(gtx C) D {
						return layout.Center.Layout(gtx, func(gtx C) D {
							sideLen := gtx.Dp(10)
							sz := image.Pt(sideLen, sideLen)
							fullColor := colors[row%len(colors)]
							if !enabled {
								fullColor.A = disabledAlpha
							}
							paint.FillShape(gtx.Ops, fullColor, clip.Rect{Max: sz}.Op())
							return D{Size: sz}
						})
					})
				case nameCol:
					l := material.Body2(th, c.variableName(row))
					if !enabled {
						l.Color.A = disabledAlpha
					}
					return l.Layout(gtx)
				case lastCol, minCol, maxCol:
					v := last
					if col == minCol {
						v = minV
					} else if col == maxCol {
						v = maxV
					}
					l := material.Body2(th, strconv.FormatFloat(v, 'g', 5, 64))
					if !enabled {
						l.Color.A = disabledAlpha
					}
					l.Alignment = text.End
					return l.Layout(gtx)
				default:
					return D{Size: gtx.Constraints.Max}
				}
			})
			if row&1 != 0 {
				col := colors[row%len(colors)]
				col.A = 50
				paint.FillShape(gtx.Ops, col, clip.Rect{Max: gtx.Constraints.Max}.Op())
			}
			return dims
		})
}

// variableStats summarizes one variable's plotted points for the key table.
func variableStats(pts traceplot.Points) (last, minV, maxV float64) {
	if len(pts.Mean) == 0 {
		return 0, 0, 0
	}
	last = pts.Mean[len(pts.Mean)-1]
	minV = pts.Min[0]
	maxV = pts.Max[0]
	for i := range pts.Min {
		minV = min(minV, pts.Min[i])
		maxV = max(maxV, pts.Max[i])
	}
	return last, minV, maxV
}

func (c *ChartData) layoutPlot(gtx C, th *material.Theme) (dims D, domainMin, domainMax float64) {
	domainMin, domainMax = domainOf(c.points)
	domainInterval := domainMax - domainMin
	if domainInterval == 0 {
		domainInterval = 1
	}
	yFor := c.rangeMapper(gtx.Constraints.Max.Y - gtx.Dp(1))
	xFor := func(x float64) float32 {
		return float32((x - domainMin) / domainInterval * float64(gtx.Constraints.Max.X))
	}

	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, c)

	for i, pts := range c.points {
		if !c.Enabled[i].Value {
			continue
		}
		c.layoutEnvelope(gtx, pts, xFor, yFor, colors[i%len(colors)])
	}
	for i, pts := range c.points {
		if !c.Enabled[i].Value {
			continue
		}
		c.layoutMeanLine(gtx, pts, xFor, yFor, colors[i%len(colors)])
	}
	if c.isHovered {
		c.layoutHover(gtx, th, xFor)
	}
	return D{Size: gtx.Constraints.Max}, domainMin, domainMax
}

// rangeMapper returns the value-to-pixel mapping for the current frame,
// honoring the log axis when the observed range allows it.
func (c *ChartData) rangeMapper(maxY int) func(v float64) float32 {
	lo, hi := c.rangeMin, c.rangeMax
	if c.useLog() {
		lo, hi = math.Log10(lo), math.Log10(hi)
	}
	interval := hi - lo
	if interval == 0 {
		interval = 1
	}
	log := c.useLog()
	return func(v float64) float32 {
		if log {
			if v <= 0 {
				return float32(maxY)
			}
			v = math.Log10(v)
		}
		return float32(maxY) - float32((v-lo)/interval)*float32(maxY)
	}
}

// layoutEnvelope fills the region between each point's min and max. Buckets
// holding a single sample collapse the envelope onto the mean line there.
func (c *ChartData) layoutEnvelope(gtx C, pts traceplot.Points, xFor func(float64) float32, yFor func(float64) float32, fill color.NRGBA) {
	if len(pts.X) < 2 {
		return
	}
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(xFor(pts.X[0]), yFor(pts.Max[0])))
	for i := 1; i < len(pts.X); i++ {
		p.LineTo(f32.Pt(xFor(pts.X[i]), yFor(pts.Max[i])))
	}
	for i := len(pts.X) - 1; i >= 0; i-- {
		p.LineTo(f32.Pt(xFor(pts.X[i]), yFor(pts.Min[i])))
	}
	p.Close()
	fill.A = 70
	stack := clip.Outline{Path: p.End()}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, fill)
	stack.Pop()
}

func (c *ChartData) layoutMeanLine(gtx C, pts traceplot.Points, xFor func(float64) float32, yFor func(float64) float32, col color.NRGBA) {
	if len(pts.X) == 0 {
		return
	}
	oneDp := float32(gtx.Dp(1))
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(xFor(pts.X[0]), yFor(pts.Mean[0])))
	for i := 1; i < len(pts.X); i++ {
		p.LineTo(f32.Pt(xFor(pts.X[i]), yFor(pts.Mean[i])))
	}
	stack := clip.Stroke{Path: p.End(), Width: oneDp}.Op().Push(gtx.Ops)
	paint.Fill(gtx.Ops, col)
	stack.Pop()
}

func (c *ChartData) layoutHover(gtx C, th *material.Theme, xFor func(float64) float32) {
	// Plotted points can interleave several runs, so X is not guaranteed to
	// be sorted and the nearest bucket is found by scanning. The scan is
	// bounded by the display budget.
	idx := -1
	best := float32(math.MaxFloat32)
	for i, x := range c.points[0].X {
		if d := abs32(xFor(x) - c.pos.X); d < best {
			best = d
			idx = i
		}
	}
	if idx < 0 {
		return
	}
	ruleX := xFor(c.points[0].X[idx])

	children := []layout.FlexChild{}
	for i := range c.points {
		i := i
		if !c.Enabled[i].Value || idx >= len(c.points[i].Mean) {
			continue
		}
		pts := c.points[i]
		txt := c.variableName(i) + ": " + strconv.FormatFloat(pts.Mean[idx], 'g', 5, 64)
		if pts.Min[idx] != pts.Max[idx] {
			txt += " [" + strconv.FormatFloat(pts.Min[idx], 'g', 5, 64) +
				", " + strconv.FormatFloat(pts.Max[idx], 'g', 5, 64) + "]"
		}
		children = append(children, layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(material.Body2(th, txt).Layout),
				layout.Rigid(layout.Spacer{Width: 8}.Layout),
				layout.Rigid(func(gtx C) D {
					size := image.Pt(gtx.Dp(8), gtx.Dp(8))
					paint.FillShape(gtx.Ops, colors[i%len(colors)], clip.Ellipse{Max: size}.Op(gtx.Ops))
					return D{Size: size}
				}),
			)
		}))
	}

	origConstraints := gtx.Constraints
	gtx.Constraints.Min = image.Point{}
	hoverInfoMacro := op.Record(gtx.Ops)
	hoverInfoDims := layout.Background{}.Layout(gtx,
		func(gtx C) D {
			paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 150}, clip.Rect{Max: gtx.Constraints.Min}.Op())
			return D{Size: gtx.Constraints.Min}
		},
		func(gtx C) D {
			return layout.UniformInset(10).Layout(gtx, func(gtx C) D {
				return layout.Flex{
					Axis:      layout.Vertical,
					Alignment: layout.End,
				}.Layout(gtx, children...)
			})
		},
	)
	hoverInfoCall := hoverInfoMacro.Stop()
	gtx.Constraints = origConstraints

	paint.FillShape(gtx.Ops, color.NRGBA{A: 255}, clip.Rect{
		Min: image.Point{X: int(ruleX)},
		Max: image.Point{
			X: int(ruleX) + gtx.Dp(1),
			Y: gtx.Constraints.Max.Y,
		},
	}.Op())

	pos := image.Point{}
	if int(ruleX) > gtx.Constraints.Max.X-int(ruleX) {
		pos.X = max(int(ruleX)-hoverInfoDims.Size.X, 0)
	} else {
		pos.X = min(int(ruleX)+gtx.Dp(1), gtx.Constraints.Max.X-hoverInfoDims.Size.X)
	}
	if offscreenY := gtx.Constraints.Max.Y - (int(c.pos.Y) + hoverInfoDims.Size.Y); offscreenY < 0 {
		pos.Y = int(c.pos.Y) + offscreenY
	} else {
		pos.Y = int(c.pos.Y)
	}
	transform := op.Offset(pos).Push(gtx.Ops)
	hoverInfoCall.Add(gtx.Ops)
	transform.Pop()
}

// domainOf scans the shared timestamp column for its extent. X is scanned
// rather than indexed because interleaved runs make it non-monotonic.
func domainOf(points []traceplot.Points) (lo, hi float64) {
	lo, hi = points[0].X[0], points[0].X[0]
	for _, x := range points[0].X {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
