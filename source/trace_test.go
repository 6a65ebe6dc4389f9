package source

import (
	"testing"

	"github.com/traceplot/traceplot"
)

func TestDecodeHeader(t *testing.T) {
	xlabel, legend, err := decodeHeader([]string{"step", " train loss ", "validation loss"})
	if err != nil {
		t.Fatalf("decoding valid header: %v", err)
	}
	if xlabel != "step" {
		t.Errorf("expected xlabel %q, got %q", "step", xlabel)
	}
	if len(legend) != 2 || legend[0] != "train loss" || legend[1] != "validation loss" {
		t.Errorf("unexpected legend %q", legend)
	}
	if _, _, err := decodeHeader([]string{"step"}); err == nil {
		t.Errorf("expected error for header without variables")
	}
}

func TestDecodeRecord(t *testing.T) {
	dst := make([]float64, 2)
	ts, err := decodeRecord([]string{"3", " 2.5", "0.125 "}, dst)
	if err != nil {
		t.Fatalf("decoding valid record: %v", err)
	}
	if ts != 3 {
		t.Errorf("expected timestamp 3, got %v", ts)
	}
	if dst[0] != 2.5 || dst[1] != 0.125 {
		t.Errorf("unexpected values %v", dst)
	}
	if _, err := decodeRecord([]string{"x", "1", "2"}, dst); err == nil {
		t.Errorf("expected error for unparseable timestamp")
	}
	if _, err := decodeRecord([]string{"1", "nope", "2"}, dst); err == nil {
		t.Errorf("expected error for unparseable value")
	}
}

func TestSharedLoggerSnapshot(t *testing.T) {
	lg, err := traceplot.New[float64, float64](1, traceplot.WithLegend("loss"))
	if err != nil {
		t.Fatalf("constructing logger: %v", err)
	}
	shared := NewSharedLogger(lg)
	for i := 0; i < 10; i++ {
		if err := shared.Append(float64(i), float64(10-i)); err != nil {
			t.Fatalf("appending: %v", err)
		}
	}
	pts, err := shared.Snapshot(200)
	if err != nil {
		t.Fatalf("snapshotting: %v", err)
	}
	if len(pts) != 1 || len(pts[0].X) != 10 {
		t.Fatalf("unexpected snapshot shape")
	}
	minV, maxV, ok := shared.Range()
	if !ok || minV != 1 || maxV != 10 {
		t.Errorf("expected range [1, 10], got [%v, %v] ok=%v", minV, maxV, ok)
	}
	if names := shared.Legend(); len(names) != 1 || names[0] != "loss" {
		t.Errorf("unexpected legend %q", names)
	}
}
