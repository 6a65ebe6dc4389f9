package source

import (
	"sync"

	"github.com/traceplot/traceplot"
)

// Run is the concrete logger type the viewer records traces into.
type Run = traceplot.Logger[float64, float64]

// SharedLogger serializes access to a logger that is appended to by a
// reader goroutine while UI frames snapshot it. The logger itself is
// single-threaded by contract, so every access goes through the lock.
type SharedLogger struct {
	mu sync.RWMutex
	l  *Run
}

// NewSharedLogger wraps a logger for shared use. The caller must not retain
// its own reference to the logger.
func NewSharedLogger(l *Run) *SharedLogger {
	return &SharedLogger{l: l}
}

// Append adds a sample under the write lock.
func (s *SharedLogger) Append(t float64, values ...float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.l.Append(t, values...)
}

// Snapshot downsamples the current contents to at most maxPoints plotted
// points per variable. The result is a private copy safe to use after the
// lock is released.
func (s *SharedLogger) Snapshot(maxPoints int) ([]traceplot.Points, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.Downsample(maxPoints)
}

// Len reports the number of recorded samples.
func (s *SharedLogger) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.Len()
}

// Variables reports the number of tracked variables.
func (s *SharedLogger) Variables() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.Variables()
}

// Legend returns the variable names parsed from the trace header.
func (s *SharedLogger) Legend() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.Legend()
}

// XLabel returns the timestamp column's name.
func (s *SharedLogger) XLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.XLabel()
}

// Range reports the observed value range across all variables.
func (s *SharedLogger) Range() (minV, maxV float64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l.Range()
}
