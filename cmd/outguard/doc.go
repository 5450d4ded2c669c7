// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the outguard CLI.
//
// Commands are built from an App so tests can inject configuration, plans
// and output writers. Execute wires the production App and runs the tree
// through fang.
package cmd
