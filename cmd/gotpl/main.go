// Command gotpl is the compile-host entry point for the template code
// generator: it is invoked via `//go:generate gotpl generate` comments
// placed above an annotated struct declaration, the way the teacher's
// own main.go wires one process's worth of pipeline together, except
// here the wiring happens in this tool's main rather than an HTTP
// server's.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
