// SPDX-License-Identifier: MPL-2.0

package filename

import (
	"fmt"
	"path/filepath"

	"github.com/torhovland/outguard/internal/unit"
)

const (
	// ContextInternal is the orchestrator's private deps area. Filenames embed
	// the metadata hash, except for dynamically loadable libraries.
	ContextInternal Context = "internal"
	// ContextExport is a flat, user-facing directory. Filenames never embed
	// a hash and every target kind shares one namespace.
	ContextExport Context = "export"

	// ModeInternal builds into the deps area only.
	ModeInternal Mode = "internal"
	// ModeExport builds into the deps area and copies artifacts into a flat
	// export directory.
	ModeExport Mode = "export"

	// OutputPrimary is the file the compiler writes.
	OutputPrimary OutputKind = "primary"
	// OutputUplift is the hash-free link to a primary file that makes
	// executables reachable by their plain name.
	OutputUplift OutputKind = "uplift"
	// OutputExport is the copy placed in the export directory.
	OutputExport OutputKind = "export"

	depsDir     = "deps"
	examplesDir = "examples"
)

type (
	// Context selects which naming rules apply to a candidate.
	Context string

	// Mode is the output mode a build invocation runs in.
	Mode string

	// OutputKind tells apart the files one unit may occupy in a context.
	OutputKind string

	// Layout roots the output areas. TargetDir and ExportDir are used verbatim,
	// so pass absolute paths to get absolute candidates.
	Layout struct {
		// TargetDir is the root of the internal build area.
		TargetDir string
		// ExportDir is the flat export directory. It is only consulted for
		// ContextExport.
		ExportDir string
		// Host is the triple of the machine running the build. Units for any
		// other platform get a per-triple subtree.
		Host unit.Platform
	}

	// Candidate is one output path a unit will occupy.
	Candidate struct {
		Unit unit.Unit
		// CrateType is set for library candidates and empty for executables.
		CrateType unit.CrateType
		Flavor    Flavor
		Kind      OutputKind
		Context   Context
		Path      string
	}

	// Assignment lists every candidate of one unit across the contexts of a
	// build invocation.
	Assignment struct {
		Unit       unit.Unit
		Candidates []Candidate
	}
)

// String returns the string representation of the Context.
func (c Context) String() string { return string(c) }

// String returns the string representation of the Mode.
func (m Mode) String() string { return string(m) }

// IsValid returns whether the Mode is one of the defined modes.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeInternal, ModeExport:
		return true, nil
	default:
		return false, []error{fmt.Errorf("invalid output mode %q (valid: internal, export)", m)}
	}
}

// Contexts returns the contexts checked for this mode. Export mode layers on
// top of internal building, so it checks both.
func (m Mode) Contexts() []Context {
	if m == ModeExport {
		return []Context{ContextInternal, ContextExport}
	}
	return []Context{ContextInternal}
}

// ProfileDir returns the directory holding the unit's profile outputs.
func (l Layout) ProfileDir(u unit.Unit) string {
	if u.Platform != "" && u.Platform != l.Host {
		return filepath.Join(l.TargetDir, string(u.Platform), u.Profile.DirName())
	}
	return filepath.Join(l.TargetDir, u.Profile.DirName())
}

// family resolves the platform family for a unit, defaulting to the host.
func (l Layout) family(u unit.Unit) Family {
	if u.Platform == "" {
		return FamilyOf(string(l.Host))
	}
	return FamilyOf(string(u.Platform))
}

// ComputeCandidates returns the paths a unit occupies in ctx. Libraries get
// one candidate per crate-type; executables get a primary file, plus an
// uplifted link for bins and examples in the internal context. The result
// order is stable for a given unit.
func ComputeCandidates(u unit.Unit, ctx Context, layout Layout) []Candidate {
	family := layout.family(u)
	if ctx == ContextExport {
		return exportCandidates(u, family, layout)
	}
	return internalCandidates(u, family, layout)
}

func internalCandidates(u unit.Unit, family Family, layout Layout) []Candidate {
	profileDir := layout.ProfileDir(u)
	meta := Metadata(u)
	t := u.Target

	if !t.IsExecutable() {
		out := make([]Candidate, 0, len(t.CrateTypes))
		for _, ct := range t.CrateTypes {
			flavor := FlavorOf(t, ct)
			stem := t.CrateName()
			if !ct.IsDynamic() {
				stem += "-" + meta
			}
			out = append(out, Candidate{
				Unit:      u,
				CrateType: ct,
				Flavor:    flavor,
				Kind:      OutputPrimary,
				Context:   ContextInternal,
				Path:      filepath.Join(profileDir, depsDir, Conventions(flavor, family).Wrap(stem)),
			})
		}
		return out
	}

	affix := Conventions(FlavorExecutable, family)
	dir := filepath.Join(profileDir, depsDir)
	if t.Kind == unit.KindExample {
		dir = filepath.Join(profileDir, examplesDir)
	}
	out := []Candidate{{
		Unit:    u,
		Flavor:  FlavorExecutable,
		Kind:    OutputPrimary,
		Context: ContextInternal,
		Path:    filepath.Join(dir, affix.Wrap(t.CrateName()+"-"+meta)),
	}}

	var uplift string
	switch t.Kind {
	case unit.KindBin:
		uplift = filepath.Join(profileDir, affix.Wrap(t.CrateName()))
	case unit.KindExample:
		uplift = filepath.Join(profileDir, examplesDir, affix.Wrap(t.CrateName()))
	}
	if uplift != "" {
		out = append(out, Candidate{
			Unit:    u,
			Flavor:  FlavorExecutable,
			Kind:    OutputUplift,
			Context: ContextInternal,
			Path:    uplift,
		})
	}
	return out
}

func exportCandidates(u unit.Unit, family Family, layout Layout) []Candidate {
	t := u.Target
	if t.IsExecutable() {
		return []Candidate{{
			Unit:    u,
			Flavor:  FlavorExecutable,
			Kind:    OutputExport,
			Context: ContextExport,
			Path:    filepath.Join(layout.ExportDir, Conventions(FlavorExecutable, family).Wrap(t.CrateName())),
		}}
	}

	out := make([]Candidate, 0, len(t.CrateTypes))
	for _, ct := range t.CrateTypes {
		flavor := FlavorOf(t, ct)
		out = append(out, Candidate{
			Unit:      u,
			CrateType: ct,
			Flavor:    flavor,
			Kind:      OutputExport,
			Context:   ContextExport,
			Path:      filepath.Join(layout.ExportDir, Conventions(flavor, family).Wrap(t.CrateName())),
		})
	}
	return out
}

// Assign computes every unit's candidates for the contexts of mode, in the
// order units are given. It is the per-unit path table handed to the
// compiler-invocation layer.
func Assign(units []unit.Unit, mode Mode, layout Layout) []Assignment {
	contexts := mode.Contexts()
	out := make([]Assignment, 0, len(units))
	for _, u := range units {
		a := Assignment{Unit: u}
		for _, ctx := range contexts {
			a.Candidates = append(a.Candidates, ComputeCandidates(u, ctx, layout)...)
		}
		out = append(out, a)
	}
	return out
}

// Paths returns the candidate paths of the assignment in order.
func (a Assignment) Paths() []string {
	out := make([]string, 0, len(a.Candidates))
	for _, c := range a.Candidates {
		out = append(out, c.Path)
	}
	return out
}

// FinalPaths maps each unit's Key to its candidate paths for mode.
func FinalPaths(units []unit.Unit, mode Mode, layout Layout) map[string][]string {
	out := make(map[string][]string, len(units))
	for _, a := range Assign(units, mode, layout) {
		out[a.Unit.Key()] = append(out[a.Unit.Key()], a.Paths()...)
	}
	return out
}
