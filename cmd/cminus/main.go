// Command cminus is the CLI front end for the cminus semantic analyser
// and TM code generator: it reads a JSON AST document, runs both
// compiler phases, and writes a TM instruction listing and a symbol
// table listing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
