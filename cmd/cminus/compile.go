package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luccarhaddad/cminus/astjson"
	"github.com/luccarhaddad/cminus/compiler"
	"github.com/luccarhaddad/cminus/diag"
	"github.com/luccarhaddad/cminus/listing"
)

var outPath string

var compileCmd = &cobra.Command{
	Use:   "compile <ast.json>",
	Short: "Analyse and generate TM code for a JSON AST document",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVarP(&outPath, "out", "o", "", "TM code output path (default: <input>.tm)")
}

func runCompile(cmd *cobra.Command, args []string) error {
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
	result := pipeline.Result()

	tmPath := outPath
	if tmPath == "" {
		tmPath = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".tm"
	}
	//nolint:gosec // the path is derived from an explicit CLI argument
	tmFile, err := os.Create(tmPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmPath, err)
	}
	defer tmFile.Close()

	if err := listing.Code(tmFile, result.Code); err != nil {
		return fmt.Errorf("writing TM code: %w", err)
	}
	if err := listing.SymbolTable(cmd.OutOrStdout(), result.Global, result.DeclaredMain); err != nil {
		return fmt.Errorf("writing symbol table: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", tmPath)
	if result.HasErrors {
		return fmt.Errorf("compilation of %s had errors", inPath)
	}
	return nil
}
