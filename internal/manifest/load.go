package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"tyjson/internal/diag"
	"tyjson/internal/host"
)

// Format is a manifest file format.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "YAML"
	}
	return "TOML"
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%s: manifest must be a .toml, .yaml or .yml file", path)
	}
}

// Unit is one loaded manifest: a host program and the roots to lower.
type Unit struct {
	// Name is the file name without extension.
	Name   string
	Path   string
	Source []byte

	Program *host.Program
	Roots   []host.DefID

	env *typeEnv
}

// ParseType parses a type expression against the unit's program. params
// name the generic parameters in scope, in index order.
func (u *Unit) ParseType(src string, params ...string) (*host.Ty, error) {
	return parseType(u.env.withParams(params), src)
}

// ParseArgs parses a list of generic arguments (types, 'lifetimes or usize
// constants).
func (u *Unit) ParseArgs(srcs []string, params ...string) (host.Substs, error) {
	return parseArgs(u.env.withParams(params), srcs)
}

// Load reads and builds the manifest at path. Problems that do not stop the
// load, such as unknown keys, are sent to r.
func Load(path string, r diag.Reporter) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, data, r)
}

// Parse builds a manifest from data; path selects the format and names the
// unit.
func Parse(path string, data []byte, r diag.Reporter) (*Unit, error) {
	if r == nil {
		r = diag.NopReporter{}
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	var cfg fileConfig
	switch format {
	case FormatTOML:
		meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			diag.ReportError(r, diag.ManSyntax, path, err.Error()).Emit()
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if !meta.IsDefined("version") {
			return nil, fmt.Errorf("%s: missing version", path)
		}
		for _, key := range meta.Undecoded() {
			diag.ReportWarning(r, diag.ManUnknownKey, path, "unknown key "+key.String()).Emit()
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			diag.ReportError(r, diag.ManSyntax, path, err.Error()).Emit()
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		if cfg.Version == 0 {
			return nil, fmt.Errorf("%s: missing version", path)
		}
	}
	if cfg.Version != SchemaVersion {
		diag.ReportError(r, diag.ManUnknownVersion, path, fmt.Sprintf("version %d", cfg.Version)).Emit()
		return nil, fmt.Errorf("%s: unsupported manifest version %d (want %d)", path, cfg.Version, SchemaVersion)
	}

	b := newBuilder(path, r)
	if err := b.build(&cfg); err != nil {
		return nil, err
	}
	return &Unit{
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:    path,
		Source:  data,
		Program: b.prog,
		Roots:   b.roots,
		env:     b.env,
	}, nil
}
