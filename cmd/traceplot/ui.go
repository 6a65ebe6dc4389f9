package main

import (
	"image"
	"image/color"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"

	"github.com/traceplot/traceplot/internal/config"
	"github.com/traceplot/traceplot/source"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   source.WindowState
	expl *explorer.Explorer
	th   *material.Theme

	chart   *ChartData
	openBtn widget.Clickable
	loadErr string

	sessionStream *stream.Stream[source.Session]
	session       source.Session
}

func NewUI(ws source.WindowState, expl *explorer.Explorer, cfg *config.Config) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := &UI{
		ws:            ws,
		th:            th,
		expl:          expl,
		chart:         NewChart(cfg.MaxPoints, cfg.LogY),
		sessionStream: stream.New(ws.Controller, ws.Bundle.Datasource.Sessions),
	}
	return ui
}

// Update the state of the UI and generate events.
func (ui *UI) Update(gtx C) {
	ui.sessionStream.ReadInto(gtx, &ui.session, source.Session{})
	if ui.session.Data != nil {
		ui.chart.SetSource(ui.session.Data)
	}
	if ui.session.Err != nil {
		ui.loadErr = ui.session.Err.Error()
	}
	if ui.openBtn.Clicked(gtx) {
		if _, err := ui.ws.Bundle.Datasource.LoadFromFile(ui.expl); err != nil {
			ui.loadErr = err.Error()
		}
	}
}

func (ui *UI) layoutStartScreen(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body1(ui.th, "No trace loaded yet.").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.openBtn, "Open Trace").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body2(ui.th, ui.loadErr).Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.session.Data == nil {
		return ui.layoutStartScreen(gtx)
	}
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			if len(ui.loadErr) == 0 {
				return D{}
			}
			l := material.Body1(ui.th, ui.loadErr)
			l.Color = color.NRGBA{R: 150, A: 255}
			return l.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx C) D {
			return ui.chart.Layout(gtx, ui.th)
		}),
	)
}
