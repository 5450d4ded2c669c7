// SPDX-License-Identifier: MPL-2.0

package unit

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// KindLib is a library target.
	KindLib TargetKind = "lib"
	// KindBin is a binary target.
	KindBin TargetKind = "bin"
	// KindExample is an example target.
	KindExample TargetKind = "example"
	// KindTest is an integration test target.
	KindTest TargetKind = "test"
	// KindBench is a benchmark target.
	KindBench TargetKind = "bench"

	// CrateRlib is the statically-linked intermediate library format.
	CrateRlib CrateType = "rlib"
	// CrateDylib is a dynamically loadable library with the native compiler ABI.
	CrateDylib CrateType = "dylib"
	// CrateCdylib is a dynamically loadable library with the C ABI.
	CrateCdylib CrateType = "cdylib"
	// CrateStaticlib is a static archive for linking into foreign code.
	CrateStaticlib CrateType = "staticlib"
	// CrateProcMacro is a compiler plugin library.
	CrateProcMacro CrateType = "proc-macro"

	// crateLibAlias is the manifest spelling of the default library format.
	crateLibAlias = "lib"
)

var (
	// ErrInvalidTargetKind is returned when a TargetKind value is not recognized.
	ErrInvalidTargetKind = errors.New("invalid target kind")
	// ErrInvalidCrateType is returned when a CrateType value is not recognized.
	ErrInvalidCrateType = errors.New("invalid crate type")

	allTargetKinds = []TargetKind{KindLib, KindBin, KindExample, KindTest, KindBench}
	allCrateTypes  = []CrateType{CrateRlib, CrateDylib, CrateCdylib, CrateStaticlib, CrateProcMacro}
)

type (
	// TargetKind identifies what sort of target is built.
	TargetKind string

	// InvalidTargetKindError is returned when a TargetKind value is not recognized.
	// It wraps ErrInvalidTargetKind for errors.Is() compatibility.
	InvalidTargetKindError struct {
		Value TargetKind
	}

	// CrateType is a linkage flavor requested for a library target. Each
	// crate-type of a target is written as a separate artifact file.
	CrateType string

	// InvalidCrateTypeError is returned when a CrateType value is not recognized.
	// It wraps ErrInvalidCrateType for errors.Is() compatibility.
	InvalidCrateTypeError struct {
		Value CrateType
	}
)

// TargetKinds returns every supported target kind in declaration order.
func TargetKinds() []TargetKind {
	out := make([]TargetKind, len(allTargetKinds))
	copy(out, allTargetKinds)
	return out
}

// CrateTypes returns every supported crate-type in declaration order.
func CrateTypes() []CrateType {
	out := make([]CrateType, len(allCrateTypes))
	copy(out, allCrateTypes)
	return out
}

// ParseTargetKind converts s into a TargetKind, rejecting unknown values.
func ParseTargetKind(s string) (TargetKind, error) {
	k := TargetKind(strings.TrimSpace(s))
	if ok, errs := k.IsValid(); !ok {
		return "", errs[0]
	}
	return k, nil
}

// String returns the string representation of the TargetKind.
func (k TargetKind) String() string { return string(k) }

// IsValid returns whether the TargetKind is one of the defined kinds.
func (k TargetKind) IsValid() (bool, []error) {
	for _, known := range allTargetKinds {
		if k == known {
			return true, nil
		}
	}
	return false, []error{&InvalidTargetKindError{Value: k}}
}

// IsExecutable reports whether targets of this kind link into an executable.
func (k TargetKind) IsExecutable() bool {
	return k != KindLib
}

// Error implements the error interface for InvalidTargetKindError.
func (e *InvalidTargetKindError) Error() string {
	return fmt.Sprintf("invalid target kind %q (valid: lib, bin, example, test, bench)", e.Value)
}

// Unwrap returns ErrInvalidTargetKind for errors.Is() compatibility.
func (e *InvalidTargetKindError) Unwrap() error { return ErrInvalidTargetKind }

// ParseCrateType converts s into a CrateType. The manifest alias "lib"
// resolves to CrateRlib.
func ParseCrateType(s string) (CrateType, error) {
	s = strings.TrimSpace(s)
	if s == crateLibAlias {
		return CrateRlib, nil
	}
	ct := CrateType(s)
	if ok, errs := ct.IsValid(); !ok {
		return "", errs[0]
	}
	return ct, nil
}

// String returns the string representation of the CrateType.
func (c CrateType) String() string { return string(c) }

// IsValid returns whether the CrateType is one of the defined crate-types.
func (c CrateType) IsValid() (bool, []error) {
	for _, known := range allCrateTypes {
		if c == known {
			return true, nil
		}
	}
	return false, []error{&InvalidCrateTypeError{Value: c}}
}

// IsDynamic reports whether the crate-type is resolved by the dynamic loader
// at load time. Such artifacts must keep an exact, hash-free filename.
func (c CrateType) IsDynamic() bool {
	return c == CrateDylib || c == CrateCdylib
}

// Error implements the error interface for InvalidCrateTypeError.
func (e *InvalidCrateTypeError) Error() string {
	return fmt.Sprintf("invalid crate type %q (valid: rlib, dylib, cdylib, staticlib, proc-macro)", e.Value)
}

// Unwrap returns ErrInvalidCrateType for errors.Is() compatibility.
func (e *InvalidCrateTypeError) Unwrap() error { return ErrInvalidCrateType }
