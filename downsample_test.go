package traceplot

import (
	"errors"
	"math"
	"testing"
)

func makeTestLogger(t *testing.T, sampleCount int) *Logger[int, float64] {
	t.Helper()
	l, err := New[int, float64](1)
	if err != nil {
		t.Fatalf("constructing logger: %v", err)
	}
	for i := 1; i <= sampleCount; i++ {
		if err := l.Append(i, 1/float64(i)); err != nil {
			t.Fatalf("appending sample %d: %v", i, err)
		}
	}
	return l
}

func TestDownsamplePassthrough(t *testing.T) {
	const n = 50
	l := makeTestLogger(t, n)
	pts, err := l.Downsample(200)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	if len(pts) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(pts))
	}
	p := pts[0]
	if len(p.X) != n {
		t.Fatalf("expected %d points below budget, got %d", n, len(p.X))
	}
	for i := 0; i < n; i++ {
		want := 1 / float64(i+1)
		if p.X[i] != float64(i+1) {
			t.Errorf("point %d: expected x %v, got %v", i, float64(i+1), p.X[i])
		}
		if p.Mean[i] != want || p.Min[i] != want || p.Max[i] != want {
			t.Errorf("point %d: expected mean=min=max=%v, got %v %v %v", i, want, p.Mean[i], p.Min[i], p.Max[i])
		}
	}
}

func TestDownsampleBuckets(t *testing.T) {
	const (
		n         = 1000
		maxPoints = 200
		size      = 5
	)
	l := makeTestLogger(t, n)
	pts, err := l.Downsample(maxPoints)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	p := pts[0]
	if len(p.X) != maxPoints {
		t.Fatalf("expected %d bucketed points, got %d", maxPoints, len(p.X))
	}
	for i := range p.X {
		// The representative timestamp is the bucket's first sample.
		if expected := float64(i*size + 1); p.X[i] != expected {
			t.Errorf("bucket %d: expected x %v, got %v", i, expected, p.X[i])
		}
		if p.Mean[i] < p.Min[i] || p.Mean[i] > p.Max[i] {
			t.Errorf("bucket %d: mean %v outside [%v, %v]", i, p.Mean[i], p.Min[i], p.Max[i])
		}
		// Values decrease monotonically, so the envelope edges are known.
		first := i*size + 1
		last := first + size - 1
		if p.Max[i] != 1/float64(first) {
			t.Errorf("bucket %d: expected max %v, got %v", i, 1/float64(first), p.Max[i])
		}
		if p.Min[i] != 1/float64(last) {
			t.Errorf("bucket %d: expected min %v, got %v", i, 1/float64(last), p.Min[i])
		}
	}
	wantFirstMean := (1.0 + 1.0/2 + 1.0/3 + 1.0/4 + 1.0/5) / 5
	if diff := math.Abs(p.Mean[0] - wantFirstMean); diff > 1e-12 {
		t.Errorf("first bucket: expected mean %v, got %v", wantFirstMean, p.Mean[0])
	}
	if last := p.Mean[maxPoints-1]; last > 1.0/996 || last < 1.0/1000 {
		t.Errorf("last bucket: mean %v outside expected tail range", last)
	}
}

func TestDownsampleUnevenBuckets(t *testing.T) {
	// 1001 samples at budget 200 need buckets of 6, yielding 167 points:
	// 166 full buckets and a final bucket of 5.
	l := makeTestLogger(t, 1001)
	pts, err := l.Downsample(200)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	p := pts[0]
	if len(p.X) != 167 {
		t.Fatalf("expected 167 buckets, got %d", len(p.X))
	}
	if p.X[166] != float64(166*6+1) {
		t.Errorf("final bucket: expected x %v, got %v", float64(166*6+1), p.X[166])
	}
}

func TestDownsampleSingleSampleBucket(t *testing.T) {
	// 5 samples at budget 3 bucket as [2, 2, 1]; the final bucket holds one
	// sample and its envelope must collapse.
	l, err := New[int, int](1)
	if err != nil {
		t.Fatalf("constructing logger: %v", err)
	}
	for i, v := range []int{4, 8, 2, 6, 9} {
		if err := l.Append(i, v); err != nil {
			t.Fatalf("appending sample %d: %v", i, err)
		}
	}
	pts, err := l.Downsample(3)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	p := pts[0]
	if len(p.X) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(p.X))
	}
	if p.Mean[0] != 6 || p.Min[0] != 4 || p.Max[0] != 8 {
		t.Errorf("bucket 0: expected 6 [4, 8], got %v [%v, %v]", p.Mean[0], p.Min[0], p.Max[0])
	}
	if p.Mean[2] != 9 || p.Min[2] != 9 || p.Max[2] != 9 {
		t.Errorf("single-sample bucket: expected collapsed envelope at 9, got %v [%v, %v]", p.Mean[2], p.Min[2], p.Max[2])
	}
}

func TestDownsampleIdempotent(t *testing.T) {
	l := makeTestLogger(t, 1000)
	a, err := l.Downsample(200)
	if err != nil {
		t.Fatalf("first downsample: %v", err)
	}
	b, err := l.Downsample(200)
	if err != nil {
		t.Fatalf("second downsample: %v", err)
	}
	for v := range a {
		for i := range a[v].X {
			if a[v].X[i] != b[v].X[i] || a[v].Mean[i] != b[v].Mean[i] ||
				a[v].Min[i] != b[v].Min[i] || a[v].Max[i] != b[v].Max[i] {
				t.Fatalf("variable %d point %d differs between identical downsamples", v, i)
			}
		}
	}
}

func TestDownsampleIsolatedFromAppends(t *testing.T) {
	l := makeTestLogger(t, 10)
	pts, err := l.Downsample(200)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	before := pts[0].Mean[9]
	for i := 11; i <= 20; i++ {
		if err := l.Append(i, 1/float64(i)); err != nil {
			t.Fatalf("appending sample %d: %v", i, err)
		}
	}
	if pts[0].Mean[9] != before {
		t.Errorf("appending mutated previously returned points")
	}
	if len(pts[0].X) != 10 {
		t.Errorf("appending changed the length of previously returned points")
	}
}

func TestDownsampleMultipleRunsShareBuckets(t *testing.T) {
	// Two runs appended back to back with overlapping timestamps: bucketing
	// stays index-based, so the envelope spans both runs' values wherever
	// their indices land in the same bucket.
	l, err := New[int, float64](1)
	if err != nil {
		t.Fatalf("constructing logger: %v", err)
	}
	for run := 0; run < 2; run++ {
		for i := 0; i < 100; i++ {
			if err := l.Append(i, float64(run*100+i)); err != nil {
				t.Fatalf("appending: %v", err)
			}
		}
	}
	pts, err := l.Downsample(50)
	if err != nil {
		t.Fatalf("downsampling: %v", err)
	}
	p := pts[0]
	if len(p.X) != 50 {
		t.Fatalf("expected 50 buckets, got %d", len(p.X))
	}
	// Bucket 25 covers indices 100..103, the start of the second run, so its
	// representative timestamp restarts at 0.
	if p.X[25] != 0 {
		t.Errorf("expected second run's first bucket at x=0, got %v", p.X[25])
	}
}

func TestDownsampleErrors(t *testing.T) {
	empty, err := New[int, float64](1)
	if err != nil {
		t.Fatalf("constructing logger: %v", err)
	}
	if _, err := empty.Downsample(200); !errors.Is(err, ErrEmptyLogger) {
		t.Errorf("expected ErrEmptyLogger for empty logger, got %v", err)
	}
	l := makeTestLogger(t, 10)
	var cfgErr *ConfigError
	if _, err := l.Downsample(0); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError for zero budget, got %v", err)
	}
}
