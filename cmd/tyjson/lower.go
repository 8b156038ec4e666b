package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tyjson/internal/cache"
	"tyjson/internal/diag"
	"tyjson/internal/diagfmt"
	"tyjson/internal/observ"
	"tyjson/internal/pipeline"
	"tyjson/internal/version"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <manifest>...",
	Short: "Lower manifests to JSON documents",
	Long: `Lower each manifest as an independent unit. A single unit is written to
stdout unless --out is given; several units need --out and produce one
<unit>.json file each.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLower,
}

func init() {
	lowerCmd.Flags().StringP("out", "o", "", "directory for <unit>.json documents")
	lowerCmd.Flags().IntP("jobs", "j", 0, "units lowered in parallel (0 = GOMAXPROCS)")
	lowerCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	lowerCmd.Flags().Bool("cache", false, "reuse documents of unchanged manifests")
	lowerCmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/tyjson)")
	lowerCmd.Flags().Bool("pretty", false, "indent JSON output")
	lowerCmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|json)")
}

type lowerOptions struct {
	out        string
	jobs       int
	ui         uiMode
	useCache   bool
	cacheDir   string
	pretty     bool
	diagFormat string
	quiet      bool
	timings    bool
	maxDiags   int
}

func readLowerOptions(cmd *cobra.Command) (lowerOptions, error) {
	var opts lowerOptions
	var err error
	flags := cmd.Flags()
	if opts.out, err = flags.GetString("out"); err != nil {
		return opts, err
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.useCache, err = flags.GetBool("cache"); err != nil {
		return opts, err
	}
	if opts.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return opts, err
	}
	if opts.pretty, err = flags.GetBool("pretty"); err != nil {
		return opts, err
	}
	if opts.diagFormat, err = flags.GetString("diag-format"); err != nil {
		return opts, err
	}
	opts.diagFormat = strings.ToLower(opts.diagFormat)
	if opts.diagFormat != "pretty" && opts.diagFormat != "json" {
		return opts, fmt.Errorf("invalid --diag-format value %q (expected pretty|json)", opts.diagFormat)
	}

	root := cmd.Root().PersistentFlags()
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.maxDiags, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	return opts, nil
}

func runLower(cmd *cobra.Command, args []string) error {
	opts, err := readLowerOptions(cmd)
	if err != nil {
		return err
	}
	if opts.out == "" && len(args) > 1 {
		return fmt.Errorf("%d manifests given: use --out to pick a directory", len(args))
	}
	if opts.out != "" {
		if err := checkOutputNames(args); err != nil {
			return err
		}
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	req := &pipeline.Request{
		Files:          args,
		Jobs:           opts.jobs,
		MaxDiagnostics: opts.maxDiags,
		Pretty:         opts.pretty,
		ToolVersion:    version.Fingerprint(),
	}
	if opts.useCache {
		dir := opts.cacheDir
		if dir == "" {
			if dir, err = cache.DefaultDir("tyjson"); err != nil {
				return err
			}
		}
		if req.Cache, err = cache.Open(dir); err != nil {
			return err
		}
	}

	var results []pipeline.Result
	if shouldUseTUI(opts.ui, len(args)) && !opts.quiet {
		results, err = runWithUI(cmd.Context(), "lowering", req)
	} else {
		results, err = pipeline.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if err := printDiagnostics(errOut, results, opts); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", res.File, res.Err)
			continue
		}
		if err := writeDocument(cmd.OutOrStdout(), opts.out, res); err != nil {
			return err
		}
	}

	if opts.timings {
		printTimings(errOut, results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d units failed", failed, len(results))
	}
	return nil
}

func printDiagnostics(w io.Writer, results []pipeline.Result, opts lowerOptions) error {
	units := make([]diagfmt.Unit, 0, len(results))
	for _, res := range results {
		if res.Bag == nil {
			continue
		}
		items := res.Bag.Items()
		if opts.quiet {
			items = errorsOnly(items)
		}
		if len(items) > 0 {
			units = append(units, diagfmt.Unit{File: res.File, Items: items})
		}
	}
	if opts.diagFormat == "json" {
		return diagfmt.JSON(w, units, diagfmt.JSONOpts{IncludeNotes: true})
	}
	return diagfmt.Pretty(w, units, diagfmt.PrettyOpts{
		Color:     !colorDisabled(),
		ShowNotes: true,
		Summary:   !opts.quiet,
	})
}

func errorsOnly(items []diag.Diagnostic) []diag.Diagnostic {
	out := items[:0:0]
	for _, d := range items {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	return out
}

func outputName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".json"
}

// checkOutputNames rejects manifests that would overwrite each other's
// documents in the output directory.
func checkOutputNames(files []string) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		name := outputName(f)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s both write %s", prev, f, name)
		}
		seen[name] = f
	}
	return nil
}

func writeDocument(stdout io.Writer, outDir string, res pipeline.Result) error {
	if outDir == "" {
		if _, err := stdout.Write(res.Doc); err != nil {
			return err
		}
		_, err := io.WriteString(stdout, "\n")
		return err
	}
	path := filepath.Join(outDir, outputName(res.File))
	data := append(append([]byte(nil), res.Doc...), '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printTimings(w io.Writer, results []pipeline.Result) {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if len(res.Report.Phases) == 0 {
			continue
		}
		reports = append(reports, res.Report)
		fmt.Fprint(w, res.Report.Summary())
	}
	if len(reports) > 1 {
		fmt.Fprint(w, observ.Merge(reports...).Summary())
	}
}
