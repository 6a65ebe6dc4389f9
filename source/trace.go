package source

import (
	"fmt"
	"strconv"
	"strings"
)

// A trace is a CSV stream: a header row naming the timestamp column and one
// column per tracked variable, then data rows of float64 values.
//
//	step, train loss, validation loss
//	0, 2.302, 2.310
//	1, 1.857, 1.904
//
// Several traces loaded into one session append back to back, which is how
// spread across runs shows up in the rendered envelope.

func decodeHeader(rec []string) (xlabel string, legend []string, err error) {
	if len(rec) < 2 {
		return "", nil, fmt.Errorf("trace header needs a timestamp column and at least one variable, got %d columns", len(rec))
	}
	xlabel = strings.TrimSpace(rec[0])
	legend = make([]string, len(rec)-1)
	for i, name := range rec[1:] {
		legend[i] = strings.TrimSpace(name)
	}
	return xlabel, legend, nil
}

// decodeRecord parses one data row into dst, which must have one slot per
// variable. The CSV reader guarantees the arity matches the header.
func decodeRecord(rec []string, dst []float64) (timestamp float64, err error) {
	timestamp, err = strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing timestamp %q: %w", rec[0], err)
	}
	for i, cell := range rec[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing value %d %q: %w", i, cell, err)
		}
		dst[i] = v
	}
	return timestamp, nil
}
