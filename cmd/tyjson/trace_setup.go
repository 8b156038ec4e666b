package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tyjson/internal/trace"
)

// traceFlags mirrors the persistent --trace* flags.
type traceFlags struct {
	output    string
	level     trace.Level
	mode      trace.StorageMode
	ringSize  int
	heartbeat time.Duration
}

func readTraceFlags(flags *pflag.FlagSet) (traceFlags, error) {
	var tf traceFlags
	var err error
	if tf.output, err = flags.GetString("trace"); err != nil {
		return tf, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return tf, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if tf.level, err = trace.ParseLevel(levelStr); err != nil {
		return tf, fmt.Errorf("invalid trace level: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return tf, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if tf.mode, err = trace.ParseMode(modeStr); err != nil {
		return tf, fmt.Errorf("invalid trace mode: %w", err)
	}
	if tf.ringSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return tf, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if tf.heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return tf, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	// --trace alone means "trace the phases"
	if tf.level == trace.LevelOff && tf.output != "" {
		tf.level = trace.LevelPhase
	}
	return tf, nil
}

// setupTracing attaches a tracer to the command context and returns the
// matching cleanup. When a ring is kept the cleanup dumps it after a failed
// command: to the --trace file in ring mode, to stderr otherwise.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	tf, err := readTraceFlags(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if tf.level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      tf.level,
		Mode:       tf.mode,
		OutputPath: tf.output,
		RingSize:   tf.ringSize,
		Heartbeat:  tf.heartbeat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	var heartbeat *trace.Heartbeat
	if tf.heartbeat > 0 {
		heartbeat = trace.StartHeartbeat(tracer, tf.heartbeat)
	}

	errOut := cmd.ErrOrStderr()
	return func(failed bool) {
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if ring := trace.RingOf(tracer); ring != nil && failed {
			// in both mode the stream already owns the output file
			output := tf.output
			if tf.mode == trace.ModeBoth {
				output = ""
			}
			dumpRing(errOut, ring, output)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(errOut, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: close error: %v\n", err)
		}
	}, nil
}

func dumpRing(errOut io.Writer, ring *trace.RingTracer, output string) {
	w, format := errOut, trace.FormatText
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			fmt.Fprintf(errOut, "trace: %v\n", err)
			return
		}
		defer f.Close()
		w, format = f, trace.FormatNDJSON
	}
	if err := ring.Dump(w, format); err != nil {
		fmt.Fprintf(errOut, "trace: dump error: %v\n", err)
	}
}
