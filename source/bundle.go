package source

import (
	"context"

	"gioui.org/app"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/rs/zerolog"
)

// WindowState carries the per-window stream controller alongside the
// app-global bundle.
type WindowState struct {
	Bundle
	Controller *stream.Controller
}

func NewWindowState(ctx context.Context, bundle Bundle, win *app.Window) WindowState {
	return WindowState{
		Bundle:     bundle,
		Controller: stream.NewController(ctx, win.Invalidate),
	}
}

// Bundle holds the application's non-UI state.
type Bundle struct {
	Datasource *Datasource
}

func NewBundle(mutator *stream.Mutator, log zerolog.Logger) (Bundle, error) {
	ds, err := NewDatasource(mutator, log)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Datasource: ds}, nil
}
