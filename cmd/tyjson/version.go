package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tyjson/internal/manifest"
	"tyjson/internal/version"
)

// versionPayload is the --format=json output of `tyjson version`. Fields
// other than the fingerprint are left out unless asked for.
type versionPayload struct {
	Tool            string `json:"tool"`
	Version         string `json:"version"`
	ManifestVersion int    `json:"manifest_version"`
	Fingerprint     string `json:"fingerprint"`
	GitCommit       string `json:"git_commit,omitempty"`
	GitMessage      string `json:"git_message,omitempty"`
	BuildDate       string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the tool version and the fingerprint folded into cache keys",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	flags := versionCmd.Flags()
	flags.Bool("hash", false, "include git commit hash")
	flags.Bool("message", false, "include git commit message")
	flags.Bool("date", false, "include build timestamp")
	flags.Bool("full", false, "include all build metadata")
	flags.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	full, _ := flags.GetBool("full")
	want := func(name string) bool {
		on, _ := flags.GetBool(name)
		return on || full
	}

	p := versionPayload{
		Tool:            "tyjson",
		Version:         orDefault(version.Version, "dev"),
		ManifestVersion: manifest.SchemaVersion,
		Fingerprint:     version.Fingerprint(),
	}
	if want("hash") {
		p.GitCommit = orDefault(version.GitCommit, "unknown")
	}
	if want("message") {
		p.GitMessage = orDefault(version.GitMessage, "unknown")
	}
	if want("date") {
		p.BuildDate = orDefault(version.BuildDate, "unknown")
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "pretty":
		printVersion(out, p)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func printVersion(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "tyjson %s (manifest version %d)\n", version.Banner(), p.ManifestVersion)
	fmt.Fprintf(out, "cache key: %s\n", p.Fingerprint)
	for _, row := range [][2]string{
		{"commit", p.GitCommit},
		{"message", p.GitMessage},
		{"built", p.BuildDate},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", row[0]+":", row[1])
		}
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
