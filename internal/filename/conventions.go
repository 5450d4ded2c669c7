// SPDX-License-Identifier: MPL-2.0

package filename

import (
	"strings"

	"github.com/torhovland/outguard/internal/unit"
)

const (
	// FamilyUnix covers Linux, the BSDs and any triple not matched below.
	FamilyUnix Family = "unix"
	// FamilyDarwin covers Apple platforms.
	FamilyDarwin Family = "darwin"
	// FamilyWindowsMSVC is Windows with the MSVC toolchain.
	FamilyWindowsMSVC Family = "windows-msvc"
	// FamilyWindowsGNU is Windows with the MinGW toolchain.
	FamilyWindowsGNU Family = "windows-gnu"
	// FamilyWasm covers WebAssembly targets.
	FamilyWasm Family = "wasm"

	// FlavorRlib is a statically-linked intermediate library.
	FlavorRlib Flavor = "rlib"
	// FlavorDylib is any library the dynamic loader can open.
	FlavorDylib Flavor = "dylib"
	// FlavorStaticlib is a static archive.
	FlavorStaticlib Flavor = "staticlib"
	// FlavorExecutable is a linked program (bin, example, test, bench).
	FlavorExecutable Flavor = "executable"
)

type (
	// Family groups target triples that share file naming conventions.
	Family string

	// Flavor is the kind of file an artifact is written as.
	Flavor string

	// Affix is the prefix and suffix wrapped around an artifact's stem.
	Affix struct {
		Prefix string
		Suffix string
	}

	conventionKey struct {
		flavor Flavor
		family Family
	}
)

var conventions = map[conventionKey]Affix{
	{FlavorRlib, FamilyUnix}:        {"lib", ".rlib"},
	{FlavorRlib, FamilyDarwin}:      {"lib", ".rlib"},
	{FlavorRlib, FamilyWindowsMSVC}: {"lib", ".rlib"},
	{FlavorRlib, FamilyWindowsGNU}:  {"lib", ".rlib"},
	{FlavorRlib, FamilyWasm}:        {"lib", ".rlib"},

	{FlavorDylib, FamilyUnix}:        {"lib", ".so"},
	{FlavorDylib, FamilyDarwin}:      {"lib", ".dylib"},
	{FlavorDylib, FamilyWindowsMSVC}: {"", ".dll"},
	{FlavorDylib, FamilyWindowsGNU}:  {"", ".dll"},
	{FlavorDylib, FamilyWasm}:        {"", ".wasm"},

	{FlavorStaticlib, FamilyUnix}:        {"lib", ".a"},
	{FlavorStaticlib, FamilyDarwin}:      {"lib", ".a"},
	{FlavorStaticlib, FamilyWindowsMSVC}: {"", ".lib"},
	{FlavorStaticlib, FamilyWindowsGNU}:  {"lib", ".a"},
	{FlavorStaticlib, FamilyWasm}:        {"lib", ".a"},

	{FlavorExecutable, FamilyUnix}:        {"", ""},
	{FlavorExecutable, FamilyDarwin}:      {"", ""},
	{FlavorExecutable, FamilyWindowsMSVC}: {"", ".exe"},
	{FlavorExecutable, FamilyWindowsGNU}:  {"", ".exe"},
	{FlavorExecutable, FamilyWasm}:        {"", ".wasm"},
}

// Families returns every platform family in the conventions table.
func Families() []Family {
	return []Family{FamilyUnix, FamilyDarwin, FamilyWindowsMSVC, FamilyWindowsGNU, FamilyWasm}
}

// Flavors returns every artifact flavor in the conventions table.
func Flavors() []Flavor {
	return []Flavor{FlavorRlib, FlavorDylib, FlavorStaticlib, FlavorExecutable}
}

// FamilyOf classifies a target triple. Unrecognized triples, including the
// empty string, are treated as Unix-like.
func FamilyOf(triple string) Family {
	t := strings.ToLower(triple)
	switch {
	case strings.Contains(t, "windows"):
		if strings.HasSuffix(t, "-msvc") {
			return FamilyWindowsMSVC
		}
		return FamilyWindowsGNU
	case strings.Contains(t, "-apple-"), strings.Contains(t, "darwin"):
		return FamilyDarwin
	case strings.HasPrefix(t, "wasm"):
		return FamilyWasm
	default:
		return FamilyUnix
	}
}

// FlavorOf returns the file flavor a target produces for one crate-type.
// ct is ignored for executable targets.
func FlavorOf(t unit.Target, ct unit.CrateType) Flavor {
	if t.IsExecutable() {
		return FlavorExecutable
	}
	switch ct {
	case unit.CrateDylib, unit.CrateCdylib, unit.CrateProcMacro:
		return FlavorDylib
	case unit.CrateStaticlib:
		return FlavorStaticlib
	default:
		return FlavorRlib
	}
}

// Conventions returns the affix for a flavor on a platform family, falling
// back to Unix conventions for anything missing from the table.
func Conventions(flavor Flavor, family Family) Affix {
	if a, ok := conventions[conventionKey{flavor, family}]; ok {
		return a
	}
	return conventions[conventionKey{flavor, FamilyUnix}]
}

// Wrap applies the affix to stem.
func (a Affix) Wrap(stem string) string {
	return a.Prefix + stem + a.Suffix
}
