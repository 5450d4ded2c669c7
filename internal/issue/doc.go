// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the long-form explanations
// behind them. Explanations are Markdown documents rendered with glamour and
// looked up by Id, so `outguard explain` and verbose error output share text.
package issue
