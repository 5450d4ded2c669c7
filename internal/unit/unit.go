// SPDX-License-Identifier: MPL-2.0

package unit

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SourcePath is a package read from a local directory (workspace members
	// and path dependencies).
	SourcePath SourceKind = "path"
	// SourceRegistry is a package downloaded from a package registry.
	SourceRegistry SourceKind = "registry"
	// SourceGit is a package checked out from a git repository.
	SourceGit SourceKind = "git"

	// ProfileDev is the default development profile.
	ProfileDev Profile = "dev"
	// ProfileRelease is the optimized profile.
	ProfileRelease Profile = "release"
	// ProfileTest is the profile used for test targets.
	ProfileTest Profile = "test"
	// ProfileBench is the profile used for benchmark targets.
	ProfileBench Profile = "bench"
)

var (
	// ErrInvalidSourceKind is returned when a SourceKind value is not recognized.
	ErrInvalidSourceKind = errors.New("invalid source kind")
	// ErrInvalidPackageID is the sentinel error wrapped by InvalidPackageIDError.
	ErrInvalidPackageID = errors.New("invalid package identity")
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidUnit is the sentinel error wrapped by InvalidUnitError.
	ErrInvalidUnit = errors.New("invalid compilation unit")
)

type (
	// SourceKind identifies where a package's source comes from.
	SourceKind string

	// InvalidSourceKindError is returned when a SourceKind value is not recognized.
	// It wraps ErrInvalidSourceKind for errors.Is() compatibility.
	InvalidSourceKindError struct {
		Value SourceKind
	}

	// SourceID locates a package's source.
	SourceID struct {
		Kind SourceKind
		// Location is a filesystem path for path sources, a registry name or
		// URL for registry sources, and a repository URL for git sources.
		Location string
	}

	// PackageID uniquely identifies a resolved package within a build session.
	PackageID struct {
		Name    string
		Version string
		Source  SourceID
	}

	// InvalidPackageIDError is returned when a PackageID has invalid fields.
	InvalidPackageIDError struct {
		FieldErrors []error
	}

	// Target is one buildable target of a package.
	Target struct {
		Kind TargetKind
		Name string
		// CrateTypes lists the library formats to produce. It is non-empty for
		// lib targets and empty for every other kind.
		CrateTypes []CrateType
	}

	// InvalidTargetError is returned when a Target has invalid fields.
	InvalidTargetError struct {
		Name        string
		FieldErrors []error
	}

	// Profile names the build profile a unit is compiled with.
	Profile string

	// Platform is a target triple such as "x86_64-unknown-linux-gnu". The
	// zero value means the host platform.
	Platform string

	// Unit is one (package, target, profile, platform) tuple slated for
	// building. Features, Flags and DepVersions feed the metadata hash that
	// disambiguates artifacts in the internal deps area.
	Unit struct {
		Package     PackageID
		Target      Target
		Profile     Profile
		Platform    Platform
		Features    []string
		Flags       []string
		DepVersions []string
	}

	// InvalidUnitError is returned when a Unit has invalid fields.
	InvalidUnitError struct {
		FieldErrors []error
	}
)

// String returns the string representation of the SourceKind.
func (k SourceKind) String() string { return string(k) }

// IsValid returns whether the SourceKind is one of the defined kinds.
func (k SourceKind) IsValid() (bool, []error) {
	switch k {
	case SourcePath, SourceRegistry, SourceGit:
		return true, nil
	default:
		return false, []error{&InvalidSourceKindError{Value: k}}
	}
}

// Error implements the error interface for InvalidSourceKindError.
func (e *InvalidSourceKindError) Error() string {
	return fmt.Sprintf("invalid source kind %q (valid: path, registry, git)", e.Value)
}

// Unwrap returns ErrInvalidSourceKind for errors.Is() compatibility.
func (e *InvalidSourceKindError) Unwrap() error { return ErrInvalidSourceKind }

// String renders the source the way it appears inside a package description.
func (s SourceID) String() string {
	switch s.Kind {
	case SourceRegistry:
		return "registry `" + s.Location + "`"
	default:
		return s.Location
	}
}

// String renders the package as "name vVERSION (source)".
func (p PackageID) String() string {
	return fmt.Sprintf("%s v%s (%s)", p.Name, p.Version, p.Source)
}

// IsValid returns whether the PackageID has a name, a version and a known
// source kind.
func (p PackageID) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("package name must not be empty"))
	}
	if strings.TrimSpace(p.Version) == "" {
		errs = append(errs, fmt.Errorf("package %q: version must not be empty", p.Name))
	}
	if ok, fieldErrs := p.Source.Kind.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPackageIDError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPackageIDError.
func (e *InvalidPackageIDError) Error() string {
	return fmt.Sprintf("invalid package identity: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidPackageID for errors.Is() compatibility.
func (e *InvalidPackageIDError) Unwrap() error { return ErrInvalidPackageID }

// CrateName returns the identifier the compiler uses for the target. Library
// names cannot contain dashes, so they are replaced with underscores.
// Executables keep their target name verbatim.
func (t Target) CrateName() string {
	if t.Kind == KindLib {
		return strings.ReplaceAll(t.Name, "-", "_")
	}
	return t.Name
}

// IsExecutable reports whether the target links into an executable.
func (t Target) IsExecutable() bool {
	return t.Kind.IsExecutable()
}

// IsValid returns whether the target has a name, a known kind, and
// crate-types consistent with that kind.
func (t Target) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, errors.New("target name must not be empty"))
	}
	if ok, fieldErrs := t.Kind.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if t.Kind == KindLib && len(t.CrateTypes) == 0 {
		errs = append(errs, errors.New("lib target must declare at least one crate type"))
	}
	if t.Kind != KindLib && len(t.CrateTypes) > 0 {
		errs = append(errs, fmt.Errorf("%s target must not declare crate types", t.Kind))
	}
	for _, ct := range t.CrateTypes {
		if ok, fieldErrs := ct.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetError{Name: t.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidTargetError.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Name, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidTarget for errors.Is() compatibility.
func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

// String returns the string representation of the Profile.
func (p Profile) String() string { return string(p) }

// Name returns the profile name, treating the zero value as dev.
func (p Profile) Name() string {
	if p == "" {
		return string(ProfileDev)
	}
	return string(p)
}

// DirName returns the directory the profile's artifacts live under.
// dev and test share "debug"; release and bench share "release". Custom
// profiles use their own name. The zero value behaves like dev.
func (p Profile) DirName() string {
	switch p {
	case "", ProfileDev, ProfileTest:
		return "debug"
	case ProfileRelease, ProfileBench:
		return "release"
	default:
		return string(p)
	}
}

// String returns the target triple, or "host" for the zero value.
func (p Platform) String() string {
	if p == "" {
		return "host"
	}
	return string(p)
}

// IsValid returns whether every field of the unit is valid.
func (u Unit) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := u.Package.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := u.Target.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUnitError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUnitError.
func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid compilation unit: %s", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidUnit for errors.Is() compatibility.
func (e *InvalidUnitError) Unwrap() error { return ErrInvalidUnit }

// Key returns a string that is unique per (package, target, profile,
// platform) within a session. Two crate-types of one unit share a key.
func (u Unit) Key() string {
	return strings.Join([]string{
		u.Package.Name,
		u.Package.Version,
		string(u.Package.Source.Kind) + "+" + u.Package.Source.Location,
		string(u.Target.Kind),
		u.Target.Name,
		u.Profile.Name(),
		u.Platform.String(),
	}, "\x00")
}

// Describe renders the unit for diagnostics, e.g.
// "lib target `a` in package `b v1.0.0 (/ws/b)`".
func (u Unit) Describe() string {
	return fmt.Sprintf("%s target `%s` in package `%s`", u.Target.Kind, u.Target.Name, u.Package)
}
