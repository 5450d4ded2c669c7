// SPDX-License-Identifier: MPL-2.0

// Package filename computes the output paths compilation units occupy.
//
// Naming is a pure function of a unit, an output context and a layout:
//   - conventions.go: the (flavor, platform family) prefix/suffix table
//   - metadata.go: the disambiguating hash embedded in deps-area filenames
//   - candidate.go: deps-area and export-directory path derivation
//
// Nothing here touches the filesystem and nothing here can fail; unknown
// platforms fall back to Unix conventions.
package filename
