// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: fixture files and
// loggers that keep test output quiet.
package testutil
