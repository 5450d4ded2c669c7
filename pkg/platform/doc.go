// SPDX-License-Identifier: MPL-2.0

// Package platform maps the running Go toolchain's GOOS/GOARCH onto target
// triples, so the host platform can be named the same way build plans name
// cross-compilation targets.
package platform
