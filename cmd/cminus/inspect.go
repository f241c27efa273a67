package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luccarhaddad/cminus/astjson"
	"github.com/luccarhaddad/cminus/compiler"
	"github.com/luccarhaddad/cminus/diag"
	"github.com/luccarhaddad/cminus/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <ast.json>",
	Short: "Compile a JSON AST document and browse its output interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(_ *cobra.Command, args []string) error {
	inPath := filepath.Clean(args[0])

	//nolint:gosec // the path comes from an explicit CLI argument, not untrusted input
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	root, err := astjson.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding AST: %w", err)
	}

	sink := diag.NewLogrusSink(newLogger())
	pipeline := compiler.New(sink)
	pipeline.Compile(root)

	return tui.Run(filepath.Base(inPath), pipeline.Result())
}
