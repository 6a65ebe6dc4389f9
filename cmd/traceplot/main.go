// Command traceplot displays live-updating charts of scalar time-series
// traces: a mean curve per tracked variable with a shaded min/max envelope
// once the data outgrows the display budget.
//
// Traces are CSV files produced by traceplot-sim or any process that writes
// the same format. Pass file paths as arguments, pipe a trace on stdin, or
// open one from the UI. Files still being written are tailed as they grow.
package main

import (
	"context"
	"io"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/rs/zerolog"

	"github.com/traceplot/traceplot/internal/config"
	"github.com/traceplot/traceplot/source"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	cfg, files, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mutator := stream.NewMutator(appCtx)
	bundle, err := source.NewBundle(mutator, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing data source")
	}

	var traces []io.ReadCloser
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("opening trace")
		}
		traces = append(traces, f)
	}
	if len(traces) == 0 {
		if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			traces = append(traces, os.Stdin)
		}
	}
	if len(traces) > 0 {
		bundle.Datasource.LoadFromStream(traces...)
	}

	go func() {
		w := app.NewWindow(app.Title("traceplot"))
		ws := source.NewWindowState(appCtx, bundle, w)
		if err := loop(w, ws, cfg); err != nil {
			log.Fatal().Err(err).Msg("window loop failed")
		}
		cancel()
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, ws source.WindowState, cfg *config.Config) error {
	expl := explorer.NewExplorer(w)
	ui := NewUI(ws, expl, cfg)
	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
