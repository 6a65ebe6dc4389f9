package traceplot

// Points is the plotted form of one variable: parallel slices of
// representative timestamp, bucket mean, and the bucket min/max envelope.
// When no aggregation happened, Mean, Min, and Max are identical.
type Points struct {
	X    []float64
	Mean []float64
	Min  []float64
	Max  []float64
}

// Downsample reduces the logger's samples to at most maxPoints plotted points
// per variable, one Points per variable in legend order.
//
// When the sample count is within budget every sample passes through
// unmodified. Otherwise the sample sequence is partitioned by index (never by
// timestamp value) into contiguous buckets of ceil(n/maxPoints) samples, the
// last possibly shorter. Each bucket contributes one point: the timestamp of
// the bucket's first sample, the mean of its values, and their minimum and
// maximum. A single-sample bucket collapses its envelope to the mean.
//
// Index-based bucketing is a single O(n) pass regardless of timestamp
// distribution, and needs no per-run bookkeeping when several runs share the
// logger: the envelope at a bucket simply spans whatever values landed in
// that index range.
//
// The returned slices are fresh allocations; later appends never mutate
// previously returned data.
func (l *Logger[T, V]) Downsample(maxPoints int) ([]Points, error) {
	if maxPoints < 1 {
		return nil, &ConfigError{Reason: "maxPoints must be positive"}
	}
	n := len(l.samples)
	if n == 0 {
		return nil, ErrEmptyLogger
	}
	if n <= maxPoints {
		out := make([]Points, l.variables)
		for v := range out {
			p := Points{
				X:    make([]float64, n),
				Mean: make([]float64, n),
				Min:  make([]float64, n),
				Max:  make([]float64, n),
			}
			for i, sample := range l.samples {
				val := float64(sample.Values[v])
				p.X[i] = float64(sample.Time)
				p.Mean[i] = val
				p.Min[i] = val
				p.Max[i] = val
			}
			out[v] = p
		}
		return out, nil
	}

	size := (n + maxPoints - 1) / maxPoints
	buckets := (n + size - 1) / size
	out := make([]Points, l.variables)
	for v := range out {
		out[v] = Points{
			X:    make([]float64, 0, buckets),
			Mean: make([]float64, 0, buckets),
			Min:  make([]float64, 0, buckets),
			Max:  make([]float64, 0, buckets),
		}
	}
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		for v := range out {
			first := float64(l.samples[start].Values[v])
			sum := first
			minV := first
			maxV := first
			for i := start + 1; i < end; i++ {
				val := float64(l.samples[i].Values[v])
				sum += val
				minV = min(minV, val)
				maxV = max(maxV, val)
			}
			p := &out[v]
			p.X = append(p.X, float64(l.samples[start].Time))
			p.Mean = append(p.Mean, sum/float64(end-start))
			p.Min = append(p.Min, minV)
			p.Max = append(p.Max, maxV)
		}
	}
	return out, nil
}
