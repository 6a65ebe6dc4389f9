// Package source loads traceplot traces into loggers shared with a UI. It
// supports replaying finished trace files as well as tailing files that are
// still being written by a live run.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/traceplot/traceplot"
)

// Session is one loaded trace (or set of traces) and its recording state.
// Data is nil until the first trace header has been parsed.
type Session struct {
	ID   string
	Data *SharedLogger
	Err  error
}

// Datasource owns trace-loading sessions. Each session reads one or more
// trace streams into a shared logger and republishes its state through a
// skel mutation pool, so any number of UI streams can follow it.
type Datasource struct {
	pool    *stream.MutationPool[string, Session]
	watcher *fsnotify.Watcher
	log     zerolog.Logger
}

func NewDatasource(mutator *stream.Mutator, log zerolog.Logger) (*Datasource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	return &Datasource{
		pool:    stream.NewMutationPool[string, Session](mutator),
		watcher: watcher,
		log:     log,
	}, nil
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

// Sessions streams the state of the most recently started session. Session
// IDs sort chronologically, so the lexically greatest ID wins.
func (d *Datasource) Sessions(ctx context.Context) <-chan Session {
	return stream.Multiplex(d.pool.Stream(ctx), func(ctx context.Context, state string, mutations map[string]*stream.Mutation[Session]) (<-chan Session, string) {
		newest := state
		var chosen *stream.Mutation[Session]
		for id, m := range mutations {
			if id > newest {
				newest = id
				chosen = m
			}
		}
		if chosen == nil {
			return nil, state
		}
		return chosen.Stream(ctx), newest
	})
}

// LoadFromFile asks the user for a trace file and starts a session reading
// it.
func (d *Datasource) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile()
	if err != nil {
		return "", err
	}
	return d.LoadFromStream(file), nil
}

// LoadFromStream starts a session reading the given traces in order.
func (d *Datasource) LoadFromStream(files ...io.ReadCloser) string {
	id := generateSessionID()
	d.recordSession(id, files...)
	return id
}

func (d *Datasource) recordSession(sessionID string, files ...io.ReadCloser) *stream.Mutation[Session] {
	box, _ := stream.Mutate(d.pool, sessionID, func(ctx context.Context) (values <-chan Session) {
		out := make(chan Session, 1)
		go func() {
			defer close(out)
			session := Session{ID: sessionID}
			emit := func() {
				select {
				case out <- session:
				case <-ctx.Done():
				}
			}
			emit()
			for _, file := range files {
				if err := d.readTrace(ctx, file, &session, emit); err != nil {
					d.log.Error().Err(err).Str("session", sessionID).Msg("trace read failed")
					session.Err = err
					emit()
					return
				}
			}
		}()
		return out
	})
	return box
}

// readTrace parses one trace stream into the session's logger, emitting the
// session state as data arrives. Named files are tailed: at EOF the read
// resumes when the file watcher reports a write.
func (d *Datasource) readTrace(ctx context.Context, src io.ReadCloser, session *Session, emit func()) error {
	defer src.Close()
	tail := false
	if f, ok := src.(interface{ Name() string }); ok {
		if err := d.watcher.Add(f.Name()); err != nil {
			d.log.Warn().Err(err).Str("file", f.Name()).Msg("cannot watch file, reading without tailing")
		} else {
			tail = true
			defer d.watcher.Remove(f.Name())
		}
	}
	csvReader := csv.NewReader(NewLineReader(src))
	csvReader.TrimLeadingSpace = true

	var legend []string
	var xlabel string
	for {
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) && tail {
				if !d.awaitWrite(ctx) {
					return nil
				}
				continue
			}
			return fmt.Errorf("reading trace header: %w", err)
		}
		if xlabel, legend, err = decodeHeader(rec); err != nil {
			return err
		}
		break
	}
	if session.Data == nil {
		lg, err := traceplot.New[float64, float64](len(legend),
			traceplot.WithLegend(legend...),
			traceplot.WithXLabel(xlabel),
		)
		if err != nil {
			return err
		}
		session.Data = NewSharedLogger(lg)
		emit()
	} else if want := session.Data.Variables(); want != len(legend) {
		// A follow-up trace must describe the same variables as the first.
		return &traceplot.ShapeError{Want: want, Got: len(legend)}
	}

	values := make([]float64, len(legend))
	for {
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !tail {
					return nil
				}
				if !d.awaitWrite(ctx) {
					return nil
				}
				continue
			}
			return fmt.Errorf("reading trace data: %w", err)
		}
		t, err := decodeRecord(rec, values)
		if err != nil {
			d.log.Warn().Err(err).Msg("skipping malformed trace row")
			continue
		}
		if err := session.Data.Append(t, values...); err != nil {
			return err
		}
		emit()
	}
}

func (d *Datasource) awaitWrite(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return false
			}
			if ev.Op.Has(fsnotify.Write) {
				return true
			}
		}
	}
}
