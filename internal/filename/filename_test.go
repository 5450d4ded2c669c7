// SPDX-License-Identifier: MPL-2.0

package filename

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/torhovland/outguard/internal/unit"
)

const linuxHost = unit.Platform("x86_64-unknown-linux-gnu")

var hashed = regexp.MustCompile(`-[0-9a-f]{16}`)

func testLayout() Layout {
	return Layout{
		TargetDir: filepath.Join("/ws", "target"),
		ExportDir: filepath.Join("/ws", "out"),
		Host:      linuxHost,
	}
}

func libUnit(pkg, name string, cts ...unit.CrateType) unit.Unit {
	return unit.Unit{
		Package: unit.PackageID{Name: pkg, Version: "1.0.0", Source: unit.SourceID{Kind: unit.SourcePath, Location: "/ws/" + pkg}},
		Target:  unit.Target{Kind: unit.KindLib, Name: name, CrateTypes: cts},
	}
}

func exeUnit(pkg string, kind unit.TargetKind, name string) unit.Unit {
	return unit.Unit{
		Package: unit.PackageID{Name: pkg, Version: "1.0.0", Source: unit.SourceID{Kind: unit.SourcePath, Location: "/ws/" + pkg}},
		Target:  unit.Target{Kind: kind, Name: name},
	}
}

func TestConventions_TableIsComplete(t *testing.T) {
	t.Parallel()

	for _, flavor := range Flavors() {
		for _, family := range Families() {
			if _, ok := conventions[conventionKey{flavor, family}]; !ok {
				t.Errorf("conventions table is missing (%s, %s)", flavor, family)
			}
		}
	}
}

func TestConventions_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flavor Flavor
		family Family
		want   string
	}{
		{FlavorRlib, FamilyUnix, "libfoo.rlib"},
		{FlavorDylib, FamilyUnix, "libfoo.so"},
		{FlavorDylib, FamilyDarwin, "libfoo.dylib"},
		{FlavorDylib, FamilyWindowsMSVC, "foo.dll"},
		{FlavorStaticlib, FamilyUnix, "libfoo.a"},
		{FlavorStaticlib, FamilyWindowsMSVC, "foo.lib"},
		{FlavorStaticlib, FamilyWindowsGNU, "libfoo.a"},
		{FlavorExecutable, FamilyUnix, "foo"},
		{FlavorExecutable, FamilyWindowsGNU, "foo.exe"},
		{FlavorExecutable, FamilyWasm, "foo.wasm"},
		{FlavorDylib, Family("plan9"), "libfoo.so"},
	}
	for _, tt := range tests {
		if got := Conventions(tt.flavor, tt.family).Wrap("foo"); got != tt.want {
			t.Errorf("Conventions(%s, %s).Wrap(foo) = %q, want %q", tt.flavor, tt.family, got, tt.want)
		}
	}
}

func TestFamilyOf(t *testing.T) {
	t.Parallel()

	tests := map[string]Family{
		"x86_64-unknown-linux-gnu": FamilyUnix,
		"aarch64-apple-darwin":     FamilyDarwin,
		"aarch64-apple-ios":        FamilyDarwin,
		"x86_64-pc-windows-msvc":   FamilyWindowsMSVC,
		"x86_64-pc-windows-gnu":    FamilyWindowsGNU,
		"wasm32-unknown-unknown":   FamilyWasm,
		"riscv64gc-unknown-none":   FamilyUnix,
		"":                         FamilyUnix,
	}
	for triple, want := range tests {
		if got := FamilyOf(triple); got != want {
			t.Errorf("FamilyOf(%q) = %s, want %s", triple, got, want)
		}
	}
}

func TestFlavorOf(t *testing.T) {
	t.Parallel()

	lib := unit.Target{Kind: unit.KindLib, Name: "a"}
	tests := map[unit.CrateType]Flavor{
		unit.CrateRlib:      FlavorRlib,
		unit.CrateDylib:     FlavorDylib,
		unit.CrateCdylib:    FlavorDylib,
		unit.CrateProcMacro: FlavorDylib,
		unit.CrateStaticlib: FlavorStaticlib,
	}
	for ct, want := range tests {
		if got := FlavorOf(lib, ct); got != want {
			t.Errorf("FlavorOf(lib, %s) = %s, want %s", ct, got, want)
		}
	}
	if got := FlavorOf(unit.Target{Kind: unit.KindBench, Name: "b"}, unit.CrateDylib); got != FlavorExecutable {
		t.Errorf("FlavorOf(bench) = %s, want executable", got)
	}
}

func TestMetadata_Stable(t *testing.T) {
	t.Parallel()

	u := libUnit("a", "a", unit.CrateRlib)
	u.Features = []string{"std", "derive"}
	u.DepVersions = []string{"serde 1.0.1", "log 0.4.0"}

	reordered := u
	reordered.Features = []string{"derive", "std"}
	reordered.DepVersions = []string{"log 0.4.0", "serde 1.0.1"}

	if Metadata(u) != Metadata(reordered) {
		t.Error("feature and dependency order must not change the metadata hash")
	}
	if len(Metadata(u)) != 16 {
		t.Errorf("Metadata() = %q, want 16 hex digits", Metadata(u))
	}

	flagged := u
	flagged.Flags = []string{"-C", "opt-level=3"}
	if Metadata(u) == Metadata(flagged) {
		t.Error("compiler flags must change the metadata hash")
	}

	other := libUnit("b", "a", unit.CrateRlib)
	if Metadata(libUnit("a", "a", unit.CrateRlib)) == Metadata(other) {
		t.Error("package identity must change the metadata hash")
	}
}

func TestComputeCandidates_InternalLibrary(t *testing.T) {
	t.Parallel()

	l := testLayout()
	u := libUnit("my-pkg", "my-lib", unit.CrateRlib, unit.CrateDylib, unit.CrateStaticlib)
	got := ComputeCandidates(u, ContextInternal, l)
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want one per crate-type", len(got))
	}

	deps := filepath.Join("/ws", "target", "debug", "deps")
	meta := Metadata(u)
	want := []string{
		filepath.Join(deps, "libmy_lib-"+meta+".rlib"),
		filepath.Join(deps, "libmy_lib.so"),
		filepath.Join(deps, "libmy_lib-"+meta+".a"),
	}
	for i, c := range got {
		if c.Path != want[i] {
			t.Errorf("candidate[%d].Path = %q, want %q", i, c.Path, want[i])
		}
		if c.Kind != OutputPrimary || c.Context != ContextInternal {
			t.Errorf("candidate[%d] = %s/%s, want primary/internal", i, c.Kind, c.Context)
		}
		if c.CrateType != u.Target.CrateTypes[i] {
			t.Errorf("candidate[%d].CrateType = %s, want %s", i, c.CrateType, u.Target.CrateTypes[i])
		}
	}
}

func TestComputeCandidates_ProcMacroKeepsHash(t *testing.T) {
	t.Parallel()

	got := ComputeCandidates(libUnit("m", "m", unit.CrateProcMacro), ContextInternal, testLayout())
	if !hashed.MatchString(got[0].Path) || !strings.HasSuffix(got[0].Path, ".so") {
		t.Errorf("proc-macro path %q should be a hashed shared object", got[0].Path)
	}
}

func TestComputeCandidates_InternalExecutables(t *testing.T) {
	t.Parallel()

	l := testLayout()
	profile := filepath.Join("/ws", "target", "debug")

	tests := []struct {
		kind       unit.TargetKind
		primaryDir string
		uplift     string
	}{
		{unit.KindBin, filepath.Join(profile, "deps"), filepath.Join(profile, "foo")},
		{unit.KindExample, filepath.Join(profile, "examples"), filepath.Join(profile, "examples", "foo")},
		{unit.KindTest, filepath.Join(profile, "deps"), ""},
		{unit.KindBench, filepath.Join(profile, "deps"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			u := exeUnit("foo", tt.kind, "foo")
			got := ComputeCandidates(u, ContextInternal, l)

			wantPrimary := filepath.Join(tt.primaryDir, "foo-"+Metadata(u))
			if got[0].Path != wantPrimary || got[0].Kind != OutputPrimary {
				t.Errorf("primary = %s %q, want primary %q", got[0].Kind, got[0].Path, wantPrimary)
			}
			if tt.uplift == "" {
				if len(got) != 1 {
					t.Errorf("got %d candidates, want primary only", len(got))
				}
				return
			}
			if len(got) != 2 || got[1].Kind != OutputUplift || got[1].Path != tt.uplift {
				t.Errorf("candidates = %+v, want uplift %q", got, tt.uplift)
			}
		})
	}
}

func TestComputeCandidates_Export(t *testing.T) {
	t.Parallel()

	l := testLayout()
	out := filepath.Join("/ws", "out")

	bin := ComputeCandidates(exeUnit("foo", unit.KindBin, "foo"), ContextExport, l)
	ex := ComputeCandidates(exeUnit("foo", unit.KindExample, "foo"), ContextExport, l)
	if len(bin) != 1 || len(ex) != 1 {
		t.Fatalf("export candidates: bin=%d example=%d, want 1 each", len(bin), len(ex))
	}
	if bin[0].Path != filepath.Join(out, "foo") || ex[0].Path != bin[0].Path {
		t.Errorf("bin and example should share %q, got %q and %q", filepath.Join(out, "foo"), bin[0].Path, ex[0].Path)
	}

	lib := ComputeCandidates(libUnit("a", "a", unit.CrateRlib, unit.CrateCdylib), ContextExport, l)
	for _, c := range lib {
		if hashed.MatchString(c.Path) {
			t.Errorf("export path %q must not embed a hash", c.Path)
		}
		if c.Kind != OutputExport || c.Context != ContextExport {
			t.Errorf("candidate %s/%s, want export/export", c.Kind, c.Context)
		}
	}
	if lib[0].Path != filepath.Join(out, "liba.rlib") || lib[1].Path != filepath.Join(out, "liba.so") {
		t.Errorf("library export paths = %q, %q", lib[0].Path, lib[1].Path)
	}
}

func TestComputeCandidates_CrossPlatform(t *testing.T) {
	t.Parallel()

	l := testLayout()
	u := exeUnit("foo", unit.KindBin, "foo")
	u.Platform = "x86_64-pc-windows-msvc"
	u.Profile = unit.ProfileRelease

	got := ComputeCandidates(u, ContextInternal, l)
	wantUplift := filepath.Join("/ws", "target", "x86_64-pc-windows-msvc", "release", "foo.exe")
	if got[1].Path != wantUplift {
		t.Errorf("uplift = %q, want %q", got[1].Path, wantUplift)
	}

	host := exeUnit("foo", unit.KindBin, "foo")
	host.Platform = linuxHost
	if p := ComputeCandidates(host, ContextInternal, l)[1].Path; p != filepath.Join("/ws", "target", "debug", "foo") {
		t.Errorf("explicit host platform should not add a triple directory, got %q", p)
	}
}

func TestAssign_ModeContexts(t *testing.T) {
	t.Parallel()

	units := []unit.Unit{exeUnit("foo", unit.KindBin, "foo"), libUnit("a", "a", unit.CrateRlib)}

	internal := Assign(units, ModeInternal, testLayout())
	if len(internal) != 2 || len(internal[0].Candidates) != 2 || len(internal[1].Candidates) != 1 {
		t.Fatalf("internal assignment = %+v", internal)
	}

	export := Assign(units, ModeExport, testLayout())
	if got := export[0].Paths(); len(got) != 3 || got[2] != filepath.Join("/ws", "out", "foo") {
		t.Errorf("export assignment paths = %v", got)
	}
	if ok, _ := Mode("flat").IsValid(); ok {
		t.Error("unknown mode should be invalid")
	}
}

func TestFinalPaths(t *testing.T) {
	t.Parallel()

	bin := exeUnit("foo", unit.KindBin, "foo")
	paths := FinalPaths([]unit.Unit{bin}, ModeInternal, testLayout())
	got, ok := paths[bin.Key()]
	if !ok || len(got) != 2 {
		t.Fatalf("FinalPaths() = %v", paths)
	}
	if got[1] != filepath.Join("/ws", "target", "debug", "foo") {
		t.Errorf("uplift path = %q", got[1])
	}
}
