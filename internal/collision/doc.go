// SPDX-License-Identifier: MPL-2.0

// Package collision finds output paths claimed by more than one compilation
// unit and reports them as diagnostics.
//
// Diagnostics are returned as data rather than written anywhere, and the
// check always runs to completion. Whether a collision stops the build is
// decided by a Policy: by default every collision is a warning, and
// StrictPolicy makes export-directory collisions errors.
package collision
