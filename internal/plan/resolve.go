// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/torhovland/outguard/internal/dag"
	"github.com/torhovland/outguard/internal/issue"
	"github.com/torhovland/outguard/internal/unit"
)

type (
	// Loader reads plan files.
	Loader struct {
		// Logger defaults to a stderr logger prefixed "plan".
		Logger *log.Logger
	}

	// Resolved is a validated plan: typed units in plan order and the
	// dependency graph over their keys.
	Resolved struct {
		Plan  *Plan
		Units []unit.Unit
		Graph *dag.Graph
		// Levels are the dependency waves of Graph.
		Levels [][]string
	}
)

func (l Loader) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: "plan"})
}

// Load reads, decodes and resolves the plan at path. Every failure is an
// issue.ActionableError linked to the matching explanation.
func (l Loader) Load(ctx context.Context, path string) (*Resolved, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load plan canceled: %w", ctx.Err())
	default:
	}

	logger := l.logger()

	format, err := FormatOf(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load build plan").
			WithResource(path).
			WithIssue(issue.PlanNotFoundId).
			WithSuggestion("Use a .cue, .toml, .yaml or .yml plan file").
			Wrap(err).
			BuildError()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("load build plan").
			WithResource(path).
			WithIssue(issue.PlanNotFoundId)
		if errors.Is(err, fs.ErrNotExist) {
			ec = ec.WithSuggestion("Check the plan path; it is resolved against the working directory")
		}
		return nil, ec.Wrap(err).BuildError()
	}

	p, err := Parse(data, format, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse build plan").
			WithResource(path).
			WithIssue(issue.PlanParseErrorId).
			WithSuggestion(fmt.Sprintf("Check the file for %s syntax and schema errors", format)).
			Wrap(err).
			BuildError()
	}
	p.Path = path
	logger.Debug("decoded plan", "path", path, "format", format, "units", len(p.Units))

	resolved, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved plan", "levels", len(resolved.Levels))
	return resolved, nil
}

// Resolve converts the specs into units, validates them and orders their
// dependencies.
func (p *Plan) Resolve() (*Resolved, error) {
	units, err := p.ToUnits()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate build plan").
			WithResource(p.Path).
			WithIssue(issue.InvalidUnitId).
			Wrap(err).
			BuildError()
	}

	graph, err := p.graph(units)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate build plan").
			WithResource(p.Path).
			WithIssue(issue.InvalidUnitId).
			WithSuggestion("Every deps entry must be the index of another unit").
			Wrap(err).
			BuildError()
	}

	levels, err := graph.Levels()
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("order build plan").
			WithResource(p.Path).
			WithIssue(issue.DependencyCycleId).
			Wrap(err).
			BuildError()
	}

	return &Resolved{Plan: p, Units: units, Graph: graph, Levels: levels}, nil
}

// ToUnits converts every unit spec, collecting all validation failures. Relative
// path-source locations are resolved against Root. Two specs with the same
// unit key are rejected.
func (p *Plan) ToUnits() ([]unit.Unit, error) {
	root := p.Root()
	units := make([]unit.Unit, 0, len(p.Units))
	seen := make(map[string]int, len(p.Units))
	var errs []error

	for i, spec := range p.Units {
		u, err := spec.toUnit(root)
		if err != nil {
			errs = append(errs, fmt.Errorf("units[%d]: %w", i, err))
			continue
		}
		if valid, fieldErrs := u.IsValid(); !valid {
			errs = append(errs, fmt.Errorf("units[%d]: %w", i, fieldErrs[0]))
			continue
		}
		if first, dup := seen[u.Key()]; dup {
			errs = append(errs, fmt.Errorf("units[%d]: duplicate of units[%d] (%s)", i, first, u.Describe()))
			continue
		}
		seen[u.Key()] = i
		units = append(units, u)
	}

	if len(errs) > 0 {
		return nil, &InvalidPlanError{FieldErrors: errs}
	}
	return units, nil
}

func (s UnitSpec) toUnit(root string) (unit.Unit, error) {
	kind, err := unit.ParseTargetKind(s.Target.Kind)
	if err != nil {
		return unit.Unit{}, err
	}

	var crateTypes []unit.CrateType
	for _, raw := range s.Target.CrateTypes {
		ct, err := unit.ParseCrateType(raw)
		if err != nil {
			return unit.Unit{}, err
		}
		crateTypes = append(crateTypes, ct)
	}

	location := s.Package.Source.Location
	if unit.SourceKind(s.Package.Source.Kind) == unit.SourcePath && !filepath.IsAbs(location) {
		location = filepath.Join(root, location)
	}

	return unit.Unit{
		Package: unit.PackageID{
			Name:    s.Package.Name,
			Version: s.Package.Version,
			Source:  unit.SourceID{Kind: unit.SourceKind(s.Package.Source.Kind), Location: location},
		},
		Target: unit.Target{
			Kind:       kind,
			Name:       s.Target.Name,
			CrateTypes: crateTypes,
		},
		Profile:     unit.Profile(s.Profile),
		Platform:    unit.Platform(s.Platform),
		Features:    s.Features,
		Flags:       s.Flags,
		DepVersions: s.DepVersions,
	}, nil
}

// graph adds one node per unit and an edge from each dependency to its
// dependent. units must be the output of ToUnits, aligned with p.Units.
func (p *Plan) graph(units []unit.Unit) (*dag.Graph, error) {
	g := dag.New()
	for _, u := range units {
		g.AddNode(u.Key())
	}
	for i, spec := range p.Units {
		for _, d := range spec.Deps {
			if d < 0 || d >= len(units) {
				return nil, fmt.Errorf("units[%d]: dependency index %d out of range [0, %d)", i, d, len(units))
			}
			if err := g.AddEdge(units[d].Key(), units[i].Key()); err != nil {
				return nil, fmt.Errorf("units[%d]: %w", i, err)
			}
		}
	}
	return g, nil
}

// ByKey indexes the resolved units by unit key.
func (r *Resolved) ByKey() map[string]unit.Unit {
	out := make(map[string]unit.Unit, len(r.Units))
	for _, u := range r.Units {
		out[u.Key()] = u
	}
	return out
}
