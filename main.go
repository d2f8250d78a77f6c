// Package main is the entry point for tapwatch, a TAP device frame decoder.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/tapwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
