// SPDX-License-Identifier: MPL-2.0

package collision

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/torhovland/outguard/internal/filename"
	"github.com/torhovland/outguard/internal/unit"
)

func testOptions(mode filename.Mode) Options {
	return Options{
		Mode: mode,
		Layout: filename.Layout{
			TargetDir: filepath.Join("/ws", "target"),
			ExportDir: filepath.Join("/ws", "out"),
			Host:      "x86_64-unknown-linux-gnu",
		},
	}
}

func member(name string) unit.PackageID {
	return unit.PackageID{
		Name:    name,
		Version: "1.0.0",
		Source:  unit.SourceID{Kind: unit.SourcePath, Location: filepath.Join("/ws", name)},
	}
}

func lib(pkg, name string, cts ...unit.CrateType) unit.Unit {
	return unit.Unit{Package: member(pkg), Target: unit.Target{Kind: unit.KindLib, Name: name, CrateTypes: cts}}
}

func exe(pkg string, kind unit.TargetKind, name string) unit.Unit {
	return unit.Unit{Package: member(pkg), Target: unit.Target{Kind: kind, Name: name}}
}

func messages(r Report) []string {
	var out []string
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}

func TestCheck_DylibRenamedToMatch(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		lib("a", "a", unit.CrateDylib),
		lib("b", "a", unit.CrateDylib),
	}
	report := Check(units, testOptions(filename.ModeInternal))
	if len(report.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(report.Diagnostics), messages(report))
	}

	d := report.Diagnostics[0]
	path := filepath.Join("/ws", "target", "debug", "deps", "liba.so")
	want := fmt.Sprintf("output filename collision.\n"+
		"The lib target `a` in package `b v1.0.0 (%s)` has the same output filename as the lib target `a` in package `a v1.0.0 (%s)`.\n"+
		"Colliding filename is: %s\n"+
		"The targets should have unique names.\n"+
		"Consider changing their names to be unique or compiling them separately.\n"+
		"This may become a hard error in the future, see https://github.com/rust-lang/cargo/issues/6313",
		filepath.Join("/ws", "b"), filepath.Join("/ws", "a"), path)
	if got := d.Message(); got != want {
		t.Errorf("Message() =\n%s\nwant\n%s", got, want)
	}
	if d.Severity != SeverityWarning || d.Classification != Advisory || d.Code != CodeOutputCollision {
		t.Errorf("diagnostic = %s/%s/%s, want warning/advisory/%s", d.Severity, d.Classification, d.Code, CodeOutputCollision)
	}
	if d.Hint != RemediationHint {
		t.Errorf("Hint = %q", d.Hint)
	}
	if report.Err() != nil {
		t.Errorf("Err() = %v, want nil for advisory collisions", report.Err())
	}
}

func TestCheck_WorkspaceExamples(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		exe("a", unit.KindExample, "ex1"),
		exe("b", unit.KindExample, "ex1"),
	}
	report := Check(units, testOptions(filename.ModeInternal))
	if len(report.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(report.Diagnostics), messages(report))
	}
	d := report.Diagnostics[0]
	if want := filepath.Join("/ws", "target", "debug", "examples", "ex1"); d.Path != want {
		t.Errorf("Path = %q, want %q", d.Path, want)
	}
	if d.Named != "example target `ex1` in package `b v1.0.0 ("+filepath.Join("/ws", "b")+")`" {
		t.Errorf("Named = %q", d.Named)
	}
	if d.Other != "example target `ex1` in package `a v1.0.0 ("+filepath.Join("/ws", "a")+")`" {
		t.Errorf("Other = %q", d.Other)
	}
}

func TestCheck_ExportWidening(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		exe("foo", unit.KindBin, "foo"),
		exe("foo", unit.KindExample, "foo"),
	}

	internal := Check(units, testOptions(filename.ModeInternal))
	if internal.HasCollisions() {
		t.Fatalf("internal build should not collide: %v", messages(internal))
	}

	exported := Check(units, testOptions(filename.ModeExport))
	if len(exported.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(exported.Diagnostics), messages(exported))
	}
	d := exported.Diagnostics[0]
	if d.Context != filename.ContextExport || d.Classification != Blocking || d.Code != CodeExportCollision {
		t.Errorf("diagnostic = %s/%s/%s, want export/blocking/%s", d.Context, d.Classification, d.Code, CodeExportCollision)
	}
	if d.Severity != SeverityWarning {
		t.Errorf("Severity = %s, export collisions are warnings by default", d.Severity)
	}
	want := fmt.Sprintf("`--out-dir` filename collision.\n"+
		"The example target `foo` in package `foo v1.0.0 (%[1]s)` has the same output filename as the bin target `foo` in package `foo v1.0.0 (%[1]s)`.\n"+
		"Colliding filename is: %[2]s\n"+
		"The exported filenames should be unique.\n"+
		"Consider changing their names to be unique or compiling them separately.\n"+
		"This may become a hard error in the future, see https://github.com/rust-lang/cargo/issues/6313",
		filepath.Join("/ws", "foo"), filepath.Join("/ws", "out", "foo"))
	if got := d.Message(); got != want {
		t.Errorf("Message() =\n%s\nwant\n%s", got, want)
	}
}

func TestCheck_StrictPolicyBlocksExport(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		exe("foo", unit.KindBin, "foo"),
		exe("foo", unit.KindExample, "foo"),
		lib("a", "a", unit.CrateDylib),
		lib("b", "a", unit.CrateDylib),
	}
	opts := testOptions(filename.ModeExport)
	opts.Policy = StrictPolicy()
	opts.ExportFlag = "--artifact-dir"

	report := Check(units, opts)
	if !report.HasErrors() {
		t.Fatalf("strict policy should produce errors: %v", messages(report))
	}
	for _, d := range report.Warnings() {
		if d.Context != filename.ContextInternal {
			t.Errorf("export diagnostic %q should be an error", d.Path)
		}
	}
	for _, d := range report.Errors() {
		if d.Heading() != "`--artifact-dir` filename collision." {
			t.Errorf("Heading() = %q", d.Heading())
		}
	}

	err := report.Err()
	if !errors.Is(err, ErrBlockingCollision) {
		t.Fatalf("Err() = %v, want ErrBlockingCollision", err)
	}
	var blocking *BlockingError
	if !errors.As(err, &blocking) || len(blocking.Diagnostics) != len(report.Errors()) {
		t.Errorf("BlockingError = %+v", blocking)
	}
}

func TestCheck_HashSuppression(t *testing.T) {
	t.Parallel()

	dylibs := Check([]unit.Unit{lib("a", "x", unit.CrateDylib), lib("b", "x", unit.CrateDylib)}, testOptions(filename.ModeInternal))
	if len(dylibs.Diagnostics) != 1 {
		t.Errorf("dylibs with one name should collide, got %d diagnostics", len(dylibs.Diagnostics))
	}

	rlibs := Check([]unit.Unit{lib("a", "x", unit.CrateRlib), lib("b", "x", unit.CrateRlib)}, testOptions(filename.ModeInternal))
	if rlibs.HasCollisions() {
		t.Errorf("rlibs are hashed and must not collide: %v", messages(rlibs))
	}
}

func TestCheck_NoSelfCollision(t *testing.T) {
	t.Parallel()

	// dylib and cdylib share lib<name>.so on Unix.
	units := []unit.Unit{lib("a", "a", unit.CrateDylib, unit.CrateCdylib)}
	report := Check(units, testOptions(filename.ModeExport))
	if report.HasCollisions() {
		t.Errorf("a unit must not collide with itself: %v", messages(report))
	}
}

func TestCheck_ProfilesSharingDebugDir(t *testing.T) {
	t.Parallel()

	profiled := func(p unit.Profile) unit.Unit {
		u := lib("a", "x", unit.CrateDylib)
		u.Profile = p
		return u
	}

	tests := []struct {
		name     string
		profiles []unit.Profile
		collides bool
	}{
		{name: "dev and test", profiles: []unit.Profile{unit.ProfileDev, unit.ProfileTest}, collides: true},
		{name: "default and test", profiles: []unit.Profile{"", unit.ProfileTest}, collides: true},
		{name: "dev and release", profiles: []unit.Profile{unit.ProfileDev, unit.ProfileRelease}, collides: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var units []unit.Unit
			for _, p := range tt.profiles {
				units = append(units, profiled(p))
			}
			report := Check(units, testOptions(filename.ModeInternal))
			if !tt.collides {
				if report.HasCollisions() {
					t.Errorf("profiles in separate dirs must not collide: %v", messages(report))
				}
				return
			}

			if len(report.Diagnostics) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(report.Diagnostics), messages(report))
			}
			d := report.Diagnostics[0]
			if want := filepath.Join("/ws", "target", "debug", "deps", "libx.so"); d.Path != want {
				t.Errorf("Path = %q, want %q", d.Path, want)
			}
			// One target under two profiles is named on both sides.
			if d.Named != d.Other {
				t.Errorf("Named = %q, Other = %q, want the same target", d.Named, d.Other)
			}
			got := []string{d.Pair.First.Unit.Profile.Name(), d.Pair.Second.Unit.Profile.Name()}
			slices.Sort(got)
			if want := []string{"dev", "test"}; !slices.Equal(got, want) {
				t.Errorf("pair profiles = %v, want %v", got, want)
			}
		})
	}
}

func TestCheck_GroupChaining(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		lib("c", "x", unit.CrateCdylib),
		lib("a", "x", unit.CrateCdylib),
		lib("b", "x", unit.CrateCdylib),
	}
	report := Check(units, testOptions(filename.ModeInternal))
	if len(report.Groups) != 1 || len(report.Groups[0].Owners) != 3 {
		t.Fatalf("groups = %+v, want one group of three", report.Groups)
	}
	if len(report.Diagnostics) != 2 {
		t.Fatalf("got %d diagnostics, want 2 adjacent pairs", len(report.Diagnostics))
	}

	var pairs []string
	for _, d := range report.Diagnostics {
		pairs = append(pairs, d.Pair.First.Unit.Package.Name+"<"+d.Pair.Second.Unit.Package.Name)
	}
	if want := []string{"a<b", "b<c"}; !slices.Equal(pairs, want) {
		t.Errorf("pairs = %v, want %v", pairs, want)
	}
}

func TestCheck_Deterministic(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{
		lib("a", "a", unit.CrateDylib),
		lib("b", "a", unit.CrateDylib),
		exe("a", unit.KindExample, "ex1"),
		exe("b", unit.KindExample, "ex1"),
		exe("c", unit.KindExample, "ex1"),
		exe("a", unit.KindBin, "ex1"),
	}
	reversed := slices.Clone(units)
	slices.Reverse(reversed)

	first := messages(Check(units, testOptions(filename.ModeExport)))
	second := messages(Check(reversed, testOptions(filename.ModeExport)))
	if !slices.Equal(first, second) {
		t.Errorf("reports differ with input order:\n%v\n%v", first, second)
	}

	seen := make(map[string]bool)
	for _, d := range Check(units, testOptions(filename.ModeExport)).Diagnostics {
		fwd := d.Path + "|" + d.Named + "|" + d.Other
		rev := d.Path + "|" + d.Other + "|" + d.Named
		if seen[rev] {
			t.Errorf("pair reported in both directions: %s", fwd)
		}
		seen[fwd] = true
	}
}

func TestCheck_ZeroOptions(t *testing.T) {
	t.Parallel()

	report := Check([]unit.Unit{lib("a", "a", unit.CrateDylib), lib("b", "a", unit.CrateDylib)}, Options{})
	if len(report.Diagnostics) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(report.Diagnostics))
	}
	if report.Diagnostics[0].Severity != SeverityWarning {
		t.Errorf("zero policy should warn, got %s", report.Diagnostics[0].Severity)
	}
	if want := filepath.Join("debug", "deps", "liba.so"); report.Paths()[0] != want {
		t.Errorf("Paths() = %v, want [%s]", report.Paths(), want)
	}
}

func TestIndex_DeduplicatesUnit(t *testing.T) {
	t.Parallel()

	u := lib("a", "a", unit.CrateDylib)
	other := lib("b", "a", unit.CrateDylib)
	c := filename.Candidate{Unit: u, Path: "/t/liba.so"}

	ix := NewIndex(filename.ContextInternal, []filename.Candidate{c, c, {Unit: other, Path: "/t/./liba.so"}})
	if got := ix.Owners("/t/liba.so"); len(got) != 2 {
		t.Fatalf("Owners() = %d entries, want 2", len(got))
	}
	groups := ix.Groups()
	if len(groups) != 1 || groups[0].Owners[0].Unit.Package.Name != "a" {
		t.Errorf("Groups() = %+v", groups)
	}
	if ix.Context() != filename.ContextInternal {
		t.Errorf("Context() = %s", ix.Context())
	}
}

func TestPolicy_SeverityFor(t *testing.T) {
	t.Parallel()

	if got := DefaultPolicy().SeverityFor(Blocking); got != SeverityWarning {
		t.Errorf("default blocking = %s, want warning", got)
	}
	if got := StrictPolicy().SeverityFor(Blocking); got != SeverityError {
		t.Errorf("strict blocking = %s, want error", got)
	}
	if got := StrictPolicy().SeverityFor(Advisory); got != SeverityWarning {
		t.Errorf("strict advisory = %s, want warning", got)
	}
	if got := (Policy{}).SeverityFor(Advisory); got != SeverityWarning {
		t.Errorf("zero policy = %s, want warning", got)
	}
}
