package traceplot

import (
	"errors"
	"fmt"
)

// ErrEmptyLogger is returned when a logger with zero samples is downsampled
// or plotted. There is nothing to draw, and the caller almost certainly
// forgot to append data first.
var ErrEmptyLogger = errors.New("logger holds no samples")

// ShapeError reports an append whose value vector does not match the
// logger's variable count. The logger is unchanged when this is returned.
type ShapeError struct {
	Want, Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("expected %d values per sample, got %d", e.Want, e.Got)
}

// ConfigError reports malformed construction or rendering options.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}
