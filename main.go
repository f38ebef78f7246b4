// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/minipack/cmd/minipack"

func main() {
	cmd.Execute()
}
