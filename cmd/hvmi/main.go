// Command hvmi is the interpreter core's CLI entry point: a thin
// cobra tree wired the way the teacher's cmd_v2 package wires its own
// subcommands (one *cobra.Command constructor per file, package-level
// shared state built once in root.go), running an HVML program either
// to completion (`hvmi run`) or as a long-lived server with the
// renderer bridge attached (`hvmi serve`).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hvmi:", err)
		os.Exit(1)
	}
}
