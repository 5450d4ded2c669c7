// SPDX-License-Identifier: MPL-2.0

package unit

import (
	"cmp"
	"slices"

	"golang.org/x/mod/semver"
)

// CompareVersions orders two package versions by semantic version precedence.
// Versions that are not valid semver fall back to plain string order, and
// sort after valid ones.
func CompareVersions(a, b string) int {
	va, vb := "v"+a, "v"+b
	okA, okB := semver.IsValid(va), semver.IsValid(vb)
	switch {
	case okA && okB:
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// ComparePackages orders package identities by name, version, then source.
func ComparePackages(a, b PackageID) int {
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := CompareVersions(a.Version, b.Version); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Source.Kind, b.Source.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Source.Location, b.Source.Location)
}

// CompareOwners orders units by (package name, package version, target kind,
// target name). This is the order the members of a collision pair are
// presented in.
func CompareOwners(a, b Unit) int {
	if c := cmp.Compare(a.Package.Name, b.Package.Name); c != 0 {
		return c
	}
	if c := CompareVersions(a.Package.Version, b.Package.Version); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target.Kind, b.Target.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Target.Name, b.Target.Name)
}

// Compare is the total order of a stable build-plan traversal: package
// identity, then target, then profile and platform.
func Compare(a, b Unit) int {
	if c := ComparePackages(a.Package, b.Package); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target.Kind, b.Target.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Target.Name, b.Target.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Profile.Name(), b.Profile.Name()); c != 0 {
		return c
	}
	return cmp.Compare(a.Platform, b.Platform)
}

// Sort returns a sorted copy of units. Units comparing equal keep their
// relative input order.
func Sort(units []Unit) []Unit {
	out := slices.Clone(units)
	slices.SortStableFunc(out, Compare)
	return out
}
