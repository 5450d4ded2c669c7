// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/torhovland/outguard/cmd/outguard"

func main() {
	cmd.Execute()
}
