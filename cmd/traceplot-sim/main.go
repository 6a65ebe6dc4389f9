// Command traceplot-sim emits a synthetic trace in the CSV format traceplot
// consumes. It models an iterative optimization: each tracked variable decays
// toward zero with multiplicative noise, optionally repeated across several
// runs that share step numbers so the viewer draws a cross-run envelope.
package main

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	flags := pflag.NewFlagSet("traceplot-sim", pflag.ExitOnError)
	variables := flags.Int("variables", 2, "number of tracked variables per sample")
	samples := flags.Int("samples", 1000, "number of steps to emit, 0 to run until interrupted")
	runs := flags.Int("runs", 1, "independent runs sharing the same step numbers")
	interval := flags.Duration("interval", 10*time.Millisecond, "delay between steps, 0 to emit at full speed")
	noise := flags.Float64("noise", 0.1, "relative noise amplitude on each value")
	seed := flags.Int64("seed", 0, "random seed, 0 seeds from the clock")
	outputName := flags.String("output", "-", "output file for the CSV trace")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, `%[1]s: emit a synthetic optimization trace

Usage:

 %[1]s > file

OR

 %[1]s | traceplot

`, os.Args[0])
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("parsing flags")
	}
	if *variables < 1 || *runs < 1 {
		log.Fatal().Msg("variables and runs must be positive")
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	var output io.WriteCloser
	if *outputName == "-" {
		output = os.Stdout
	} else {
		f, err := os.Create(*outputName)
		if err != nil {
			log.Fatal().Err(err).Str("file", *outputName).Msg("opening output file")
		}
		output = f
	}

	fmt.Fprintf(output, "step")
	for v := 0; v < *variables; v++ {
		fmt.Fprintf(output, ", loss %d", v)
	}
	fmt.Fprintln(output)

	var ticker *time.Ticker
	if *interval > 0 {
		ticker = time.NewTicker(*interval)
		defer ticker.Stop()
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	emit := func(step int) {
		for run := 0; run < *runs; run++ {
			fmt.Fprintf(output, "%d", step)
			for v := 0; v < *variables; v++ {
				// Slower decay for later variables so the curves separate,
				// plus a per-run offset so runs disagree and the envelope
				// has width.
				decay := math.Exp(-4 * float64(step) / float64(max(*samples, 1)) / float64(v+1))
				value := (1 + 0.25*float64(run)) * decay
				value *= 1 + *noise*(2*rng.Float64()-1)
				fmt.Fprintf(output, ", %f", value)
			}
			fmt.Fprintln(output)
		}
	}

	for step := 0; *samples == 0 || step < *samples; step++ {
		emit(step)
		if ticker == nil {
			select {
			case <-sigChan:
				if err := output.Close(); err != nil {
					log.Warn().Err(err).Msg("closing output")
				}
				return
			default:
			}
			continue
		}
		select {
		case <-sigChan:
			if err := output.Close(); err != nil {
				log.Warn().Err(err).Msg("closing output")
			}
			return
		case <-ticker.C:
		}
	}
	if err := output.Close(); err != nil {
		log.Warn().Err(err).Msg("closing output")
	}
}
