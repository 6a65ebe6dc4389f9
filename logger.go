// Package traceplot records scalar time-series emitted by iterative numerical
// processes (training losses, episode rewards, benchmark sweeps) and prepares
// them for plotting. A Logger is an append-only store of timestamped value
// vectors; Downsample reduces any number of stored samples to a bounded
// number of plotted points, each carrying a mean and a min/max envelope.
package traceplot

import (
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

// Real covers the numeric types a logger can record and plot.
type Real interface {
	constraints.Integer | constraints.Float
}

// Sample is one observation: a timestamp plus one value per tracked variable.
type Sample[T, V Real] struct {
	Time   T
	Values []V
}

// Scale selects the y-axis scale a renderer should apply to a logger's data.
type Scale uint8

const (
	Linear Scale = iota
	Log10
)

// Logger accumulates samples for a fixed set of variables. Timestamps are
// not required to be sorted or unique: appending several runs back to back
// is how cross-run spread becomes visible in the rendered envelope.
//
// A Logger is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type Logger[T, V Real] struct {
	variables int
	legend    []string
	xlabel    string
	ylabel    string
	yscale    Scale
	colormap  string

	samples            []Sample[T, V]
	rangeMin, rangeMax float64
}

type settings struct {
	legend   []string
	xlabel   string
	ylabel   string
	yscale   Scale
	colormap string
}

// Option configures a logger at construction time.
type Option func(*settings)

// WithLegend names the tracked variables. The number of names must equal the
// logger's variable count.
func WithLegend(names ...string) Option {
	return func(s *settings) { s.legend = names }
}

// WithXLabel sets the x-axis label attached to the logger's data.
func WithXLabel(label string) Option {
	return func(s *settings) { s.xlabel = label }
}

// WithYLabel sets the y-axis label attached to the logger's data.
func WithYLabel(label string) Option {
	return func(s *settings) { s.ylabel = label }
}

// WithLog10 marks the logger's values for display on a log10 y axis.
func WithLog10() Option {
	return func(s *settings) { s.yscale = Log10 }
}

// WithColormap records the name of the palette a renderer should use.
func WithColormap(name string) Option {
	return func(s *settings) { s.colormap = name }
}

// New constructs a logger tracking the given number of variables. The
// variable count is fixed for the lifetime of the logger.
func New[T, V Real](variables int, opts ...Option) (*Logger[T, V], error) {
	if variables < 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("variable count must be positive, got %d", variables)}
	}
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.legend == nil {
		s.legend = make([]string, variables)
	} else if len(s.legend) != variables {
		return nil, &ConfigError{Reason: fmt.Sprintf("legend has %d entries for %d variables", len(s.legend), variables)}
	}
	return &Logger[T, V]{
		variables: variables,
		legend:    slices.Clone(s.legend),
		xlabel:    s.xlabel,
		ylabel:    s.ylabel,
		yscale:    s.yscale,
		colormap:  s.colormap,
	}, nil
}

// Append adds a sample at the given timestamp. The variadic form covers both
// the scalar convenience case (one variable) and the vector case; the number
// of values must equal the logger's variable count. On error the logger is
// unchanged.
func (l *Logger[T, V]) Append(t T, values ...V) error {
	if len(values) != l.variables {
		return &ShapeError{Want: l.variables, Got: len(values)}
	}
	if len(l.samples) == 0 {
		l.rangeMin = float64(values[0])
		l.rangeMax = float64(values[0])
	}
	for _, v := range values {
		l.rangeMin = min(l.rangeMin, float64(v))
		l.rangeMax = max(l.rangeMax, float64(v))
	}
	l.samples = append(l.samples, Sample[T, V]{Time: t, Values: slices.Clone(values)})
	return nil
}

// Len reports the number of appended samples.
func (l *Logger[T, V]) Len() int { return len(l.samples) }

// Variables reports the number of tracked variables.
func (l *Logger[T, V]) Variables() int { return l.variables }

// Legend returns the variable names. Unset entries are empty strings.
func (l *Logger[T, V]) Legend() []string { return slices.Clone(l.legend) }

// XLabel returns the x-axis label.
func (l *Logger[T, V]) XLabel() string { return l.xlabel }

// YLabel returns the y-axis label.
func (l *Logger[T, V]) YLabel() string { return l.ylabel }

// YScale returns the y-axis scale.
func (l *Logger[T, V]) YScale() Scale { return l.yscale }

// Colormap returns the palette name set at construction, or "".
func (l *Logger[T, V]) Colormap() string { return l.colormap }

// Range reports the minimum and maximum value observed across all variables
// and samples. ok is false until the first sample is appended.
func (l *Logger[T, V]) Range() (minV, maxV float64, ok bool) {
	if len(l.samples) == 0 {
		return 0, 0, false
	}
	return l.rangeMin, l.rangeMax, true
}
