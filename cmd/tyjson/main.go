package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tyjson/internal/trace"
	"tyjson/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tyjson",
	Short: "Lower host programs to a portable JSON IR",
	Long: `tyjson reads host program manifests, collects everything reachable from
their roots and writes one self-contained JSON document per manifest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		if err := setupProfiling(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		driverSpan = trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, cmd.CommandPath(), 0).
			WithExtra("args", strings.Join(args, " "))
		cmd.SetContext(trace.WithSpanContext(cmd.Context(), trace.SpanContext{SpanID: driverSpan.ID()}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finishDriver(cmd, false)
	},
}

var (
	traceCleanup = func(bool) {}
	driverSpan   *trace.Span
)

func finishDriver(cmd *cobra.Command, failed bool) {
	stopProfiling(cmd)
	if driverSpan != nil {
		status := "ok"
		if failed {
			status = "error"
		}
		driverSpan.WithExtra("status", status).End("")
		driverSpan = nil
	}
	traceCleanup(failed)
	traceCleanup = func(bool) {}
}

func init() {
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per unit")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// main executes the root command. A failed command exits with status 1.
func main() {
	rootCmd.Version = version.Version
	if err := rootCmd.Execute(); err != nil {
		finishDriver(rootCmd, true)
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorDisabled() bool { return color.NoColor }
