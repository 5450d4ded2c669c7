// SPDX-License-Identifier: MPL-2.0

// Package unit describes what is being built: packages, their targets, and the
// compilation units the orchestrator submits for one build session.
//
// Everything in this package is immutable once constructed. The identity
// carried by a Unit (package identity, target kind, target name and
// crate-types) is sufficient to reproduce the same output filenames on every
// run for a given machine and profile.
package unit
