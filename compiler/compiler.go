// Package compiler wires package analyzer and package codegen into the
// single pipeline a caller drives: analyse, then generate, then hand
// back everything a listing or an interactive inspector needs.
//
// The shape mirrors the teacher's own Compiler driver (New / Compile /
// Bytecode): a small stateful object a caller constructs once per
// compilation unit and calls exactly once.
package compiler

import (
	"github.com/luccarhaddad/cminus/analyzer"
	"github.com/luccarhaddad/cminus/ast"
	"github.com/luccarhaddad/cminus/codegen"
	"github.com/luccarhaddad/cminus/diag"
	"github.com/luccarhaddad/cminus/emitter"
	"github.com/luccarhaddad/cminus/funcaddr"
	"github.com/luccarhaddad/cminus/symtab"
)

// Pipeline runs a single compilation: semantic analysis followed by code
// generation, against one diag.Sink.
type Pipeline struct {
	sink     diag.Sink
	analyzer *analyzer.Analyzer

	buf   *emitter.Buffer
	funcs *funcaddr.Table
}

// New creates a Pipeline reporting through sink, with a fresh global
// scope seeded with the built-in input/output functions (see
// analyzer.New).
func New(sink diag.Sink) *Pipeline {
	return &Pipeline{sink: sink, analyzer: analyzer.New()}
}

// Compile runs both analyser passes over root, then runs code
// generation unconditionally — per spec.md §7, code generation is not
// gated on the sink's error state inside the pipeline itself; callers
// decide whether a failed compile's output is worth keeping (see
// Result).
func (p *Pipeline) Compile(root *ast.Node) {
	p.analyzer.Analyze(root, p.sink)
	if !p.analyzer.DeclaredMain {
		p.sink.Errorf(0, "undefined reference to 'main'")
	}
	p.buf, p.funcs = codegen.Generate(root)
}

// Result is everything a listing, an inspector, or a test assertion
// needs after Compile returns.
type Result struct {
	Code         *emitter.Buffer
	Functions    *funcaddr.Table
	Global       *symtab.Scope
	DeclaredMain bool
	HasErrors    bool
}

// Result returns the outcome of the most recent Compile call.
func (p *Pipeline) Result() Result {
	return Result{
		Code:         p.buf,
		Functions:    p.funcs,
		Global:       p.analyzer.Global,
		DeclaredMain: p.analyzer.DeclaredMain,
		HasErrors:    p.sink.HasErrors(),
	}
}
