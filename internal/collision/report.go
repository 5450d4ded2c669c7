// SPDX-License-Identifier: MPL-2.0

package collision

import (
	"errors"
	"fmt"
	"slices"

	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/unit"
)

// ErrBlockingCollision is the sentinel error wrapped by BlockingError.
var ErrBlockingCollision = errors.New("output filename collision")

type (
	// Options configures a pre-flight collision check.
	Options struct {
		// Mode selects which contexts are checked. The zero value checks the
		// internal deps area only.
		Mode   filename.Mode
		Layout filename.Layout
		// Policy maps classifications to severities. The zero value behaves
		// like DefaultPolicy.
		Policy Policy
		// ExportFlag is the option name shown in export collision headings.
		ExportFlag string
	}

	// Report is the outcome of a collision check. Diagnostics are ordered by
	// context (internal before export), then by the first appearance of each
	// path in the sorted unit list, then by owner order within a group.
	Report struct {
		Diagnostics []Diagnostic
		Groups      []Group
	}

	// BlockingError is returned by Report.Err when a diagnostic has error
	// severity. It wraps ErrBlockingCollision for errors.Is() compatibility.
	BlockingError struct {
		Diagnostics []Diagnostic
	}
)

// Check computes the candidates of every unit, indexes them per context and
// reports colliding pairs. The input order of units does not affect the
// result. Check never fails: the go/no-go decision is left to the caller
// through Report.Err.
func Check(units []unit.Unit, opts Options) Report {
	mode := opts.Mode
	if mode == "" {
		mode = filename.ModeInternal
	}
	policy := opts.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}

	sorted := unit.Sort(units)
	var report Report
	for _, ctx := range mode.Contexts() {
		var candidates []filename.Candidate
		for _, u := range sorted {
			candidates = append(candidates, filename.ComputeCandidates(u, ctx, opts.Layout)...)
		}
		for _, g := range NewIndex(ctx, candidates).Groups() {
			report.Groups = append(report.Groups, g)
			for _, p := range g.Pairs() {
				report.Diagnostics = append(report.Diagnostics, NewDiagnostic(ctx, p, policy, opts.ExportFlag))
			}
		}
	}
	return report
}

// HasCollisions reports whether any collision was found.
func (r Report) HasCollisions() bool {
	return len(r.Diagnostics) > 0
}

// HasErrors reports whether any diagnostic has error severity.
func (r Report) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}

// Warnings returns the diagnostics with warning severity.
func (r Report) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Errors returns the diagnostics with error severity.
func (r Report) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

func (r Report) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Paths returns every colliding path once, in report order.
func (r Report) Paths() []string {
	var out []string
	for _, g := range r.Groups {
		if !slices.Contains(out, g.Path) {
			out = append(out, g.Path)
		}
	}
	return out
}

// Err returns a *BlockingError when any diagnostic has error severity and
// nil otherwise.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &BlockingError{Diagnostics: errs}
}

// Error implements the error interface for BlockingError.
func (e *BlockingError) Error() string {
	if len(e.Diagnostics) == 1 {
		return fmt.Sprintf("output filename collision at %s", e.Diagnostics[0].Path)
	}
	return fmt.Sprintf("%d output filename collisions", len(e.Diagnostics))
}

// Unwrap returns ErrBlockingCollision for errors.Is() compatibility.
func (e *BlockingError) Unwrap() error { return ErrBlockingCollision }
