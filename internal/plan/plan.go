// SPDX-License-Identifier: MPL-2.0

package plan

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/torhovland/outguard/pkg/cueutil"
)

const (
	// FormatCUE is a plan written in CUE.
	FormatCUE Format = "cue"
	// FormatTOML is a plan written in TOML.
	FormatTOML Format = "toml"
	// FormatYAML is a plan written in YAML.
	FormatYAML Format = "yaml"
)

var (
	//go:embed plan_schema.cue
	planSchema []byte

	// ErrUnsupportedFormat is returned for plan files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported plan format")
	// ErrInvalidPlan is the sentinel error wrapped by InvalidPlanError.
	ErrInvalidPlan = errors.New("invalid plan")
)

type (
	// Format identifies the encoding of a plan file.
	Format string

	// Source locates a package.
	Source struct {
		Kind     string `json:"kind" yaml:"kind" toml:"kind"`
		Location string `json:"location" yaml:"location" toml:"location"`
	}

	// Package identifies one package in the plan.
	Package struct {
		Name    string `json:"name" yaml:"name" toml:"name"`
		Version string `json:"version" yaml:"version" toml:"version"`
		Source  Source `json:"source" yaml:"source" toml:"source"`
	}

	// Target is the buildable target of a unit.
	Target struct {
		Kind       string   `json:"kind" yaml:"kind" toml:"kind"`
		Name       string   `json:"name" yaml:"name" toml:"name"`
		CrateTypes []string `json:"crate_types,omitempty" yaml:"crate_types,omitempty" toml:"crate_types,omitempty"`
	}

	// UnitSpec is one compilation unit as written in a plan file.
	UnitSpec struct {
		Package     Package  `json:"package" yaml:"package" toml:"package"`
		Target      Target   `json:"target" yaml:"target" toml:"target"`
		Profile     string   `json:"profile,omitempty" yaml:"profile,omitempty" toml:"profile,omitempty"`
		Platform    string   `json:"platform,omitempty" yaml:"platform,omitempty" toml:"platform,omitempty"`
		Features    []string `json:"features,omitempty" yaml:"features,omitempty" toml:"features,omitempty"`
		Flags       []string `json:"flags,omitempty" yaml:"flags,omitempty" toml:"flags,omitempty"`
		DepVersions []string `json:"dep_versions,omitempty" yaml:"dep_versions,omitempty" toml:"dep_versions,omitempty"`
		// Deps are indices into Plan.Units.
		Deps []int `json:"deps,omitempty" yaml:"deps,omitempty" toml:"deps,omitempty"`
	}

	// Plan is the finalized unit list of one build session.
	Plan struct {
		WorkspaceRoot string     `json:"workspace_root,omitempty" yaml:"workspace_root,omitempty" toml:"workspace_root,omitempty"`
		Units         []UnitSpec `json:"units" yaml:"units" toml:"units"`

		// Path is the file the plan was loaded from, if any.
		Path string `json:"-" yaml:"-" toml:"-"`
	}

	// InvalidPlanError collects per-unit validation failures.
	InvalidPlanError struct {
		FieldErrors []error
	}
)

func (f Format) String() string { return string(f) }

// FormatOf derives the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .cue, .toml, .yaml or .yml)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes and schema-checks plan data. filename is only used in error
// messages.
func Parse(data []byte, format Format, filename string) (*Plan, error) {
	opts := []cueutil.Option{cueutil.WithFilename(filename)}

	var (
		result *cueutil.ParseResult[Plan]
		err    error
	)
	switch format {
	case FormatCUE:
		result, err = cueutil.ParseAndDecode[Plan](planSchema, data, "#Plan", opts...)
	case FormatTOML, FormatYAML:
		var doc map[string]any
		if doc, err = decodeDocument(data, format, filename); err != nil {
			return nil, err
		}
		result, err = cueutil.DecodeValue[Plan](planSchema, doc, "#Plan", opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// decodeDocument reads TOML or YAML into a generic document for schema
// validation.
func decodeDocument(data []byte, format Format, filename string) (map[string]any, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	doc := map[string]any{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				row, col := derr.Position()
				return nil, fmt.Errorf("%s:%d:%d: %w", filename, row, col, err)
			}
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return doc, nil
}

// Root returns the directory relative paths in the plan are resolved
// against: workspace_root if set (itself relative to the plan file), else the
// plan file's directory.
func (p *Plan) Root() string {
	base := "."
	if p.Path != "" {
		base = filepath.Dir(p.Path)
	}
	switch {
	case p.WorkspaceRoot == "":
		return base
	case filepath.IsAbs(p.WorkspaceRoot):
		return filepath.Clean(p.WorkspaceRoot)
	default:
		return filepath.Join(base, p.WorkspaceRoot)
	}
}

// Marshal encodes the plan in the given format. CUE output is not supported;
// TOML and YAML are used to write plans generated by other tools.
func (p *Plan) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(p)
	case FormatYAML:
		return yaml.Marshal(p)
	default:
		return nil, fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
	}
}

func (e *InvalidPlanError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid plan: %s", strings.Join(msgs, "; "))
}

func (e *InvalidPlanError) Unwrap() error { return ErrInvalidPlan }
