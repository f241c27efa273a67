// Package codegen implements the single-pass code generator: it walks
// an analysed AST (scopes and symbols already resolved by package
// analyzer) and emits TM instructions through package emitter, while
// recording every function's entry address in a funcaddr.Table.
//
// Frame offset bookkeeping (the next free local/temporary slot) and the
// active scope are threaded as explicit parameters through the
// generator's recursive calls rather than held in package-level or
// generator-level mutable fields, matching the same discipline package
// analyzer uses for its own pass. The reserved slot for the jump to
// main is allocated once, unconditionally, right after the prelude,
// and back-patched the moment the FUNCTION node named "main" is
// visited — there is no special case for main being the first function
// in the source.
package codegen

import (
	"github.com/luccarhaddad/cminus/ast"
	"github.com/luccarhaddad/cminus/emitter"
	"github.com/luccarhaddad/cminus/funcaddr"
	"github.com/luccarhaddad/cminus/symtab"
	"github.com/luccarhaddad/cminus/types"
)

// genCtx carries the generator state that must be visible to a node's
// siblings after it returns, but never leaks across a scope boundary:
// the active scope, the next free local frame slot (counts down from
// emitter.InitFO, reset at each function's entry), and the next free
// global slot (counts up from zero, shared across the whole program).
type genCtx struct {
	scope        *symtab.Scope
	tmpOffset    int
	globalOffset int
}

// Generator owns the instruction buffer and function address table a
// single Generate call builds.
type Generator struct {
	buf     *emitter.Buffer
	funcs   *funcaddr.Table
	mainLoc int
}

// Generate emits TM code for root, an analysed top-level declaration
// chain (global variables and functions, whose
// VARIABLE/PARAM/FUNCTION/IDENTIFIER/CALL nodes carry the Symbol and
// Scope package analyzer set). It also runs when analysis reported
// errors: a node whose name was left unresolved emits no code, and if
// root's chain has no function named "main" the reserved jump slot
// after the prelude stays unpatched.
func Generate(root *ast.Node) (*emitter.Buffer, *funcaddr.Table) {
	g := &Generator{buf: &emitter.Buffer{}, funcs: &funcaddr.Table{}}

	g.buf.EmitComment("Standard prelude:")
	g.buf.EmitRM("LD", emitter.MP, 0, emitter.AC, "load maxaddress from location 0")
	g.buf.EmitRM("LD", emitter.FP, 0, emitter.AC, "copy maxaddress to frame pointer")
	g.buf.EmitRM("ST", emitter.AC, 0, emitter.AC, "clear location 0")
	g.buf.EmitComment("End of standard prelude.")

	g.mainLoc = g.buf.EmitSkip(1)

	g.gen(root, genCtx{})

	g.buf.EmitComment("End of execution.")
	g.buf.EmitRO("HALT", 0, 0, 0, "")

	return g.buf, g.funcs
}

// gen walks a sibling chain, threading ctx from one statement into the
// next.
func (g *Generator) gen(node *ast.Node, ctx genCtx) genCtx {
	for n := node; n != nil; n = n.Next {
		ctx = g.genNode(n, ctx)
	}
	return ctx
}

// genNode dispatches on a single node's kind, never touching its Next
// link. CALL's argument list walks this directly, one argument at a
// time, instead of delegating to gen and relying on a flag to suppress
// sibling traversal.
func (g *Generator) genNode(n *ast.Node, ctx genCtx) genCtx {
	if n == nil {
		return ctx
	}
	// A name analysis left unresolved (its error is already reported)
	// has no slot to address, so it emits no code.
	switch n.Kind {
	case ast.Variable, ast.Param, ast.Identifier:
		if n.Symbol == nil {
			return ctx
		}
	case ast.Assign:
		if lhs := n.Children[0]; lhs == nil || lhs.Symbol == nil {
			return ctx
		}
	}
	switch n.Kind {
	case ast.Function:
		return g.genFunction(n, ctx)
	case ast.Block:
		return g.genBlock(n, ctx)
	case ast.Variable:
		return g.genVariable(n, ctx)
	case ast.Param:
		return g.genParam(n, ctx)
	case ast.Identifier:
		return g.genIdentifier(n, ctx)
	case ast.Call:
		return g.genCall(n, ctx)
	case ast.If:
		return g.genIf(n, ctx)
	case ast.While:
		return g.genWhile(n, ctx)
	case ast.Assign:
		return g.genAssign(n, ctx)
	case ast.Operator:
		return g.genOperator(n, ctx)
	case ast.Constant:
		g.buf.EmitRM("LDC", emitter.AC, n.Value, 0, "load constant")
		return ctx
	case ast.Return:
		return g.genReturn(n, ctx)
	default:
		return ctx
	}
}

// genBlock generates a nested block's statement list under its own
// scope (set by the analyser), then hands the caller back its own
// scope with the frame offsets the block's statements consumed.
func (g *Generator) genBlock(n *ast.Node, ctx genCtx) genCtx {
	inner := ctx
	inner.scope = n.Scope
	inner = g.gen(n.Children[0], inner)
	ctx.tmpOffset = inner.tmpOffset
	ctx.globalOffset = inner.globalOffset
	return ctx
}

// genFunction emits a function's prologue, parameters, body, and (for
// a void function, main included) a trailing epilogue for control
// that falls off the end without an explicit return. main never gets
// a return-address prologue, since it is the program's entry point
// rather than something called, but it still runs the same void
// epilogue as any other void function once its body finishes.
func (g *Generator) genFunction(n *ast.Node, ctx genCtx) genCtx {
	addr := g.buf.Len()
	g.funcs.Insert(n.Name, addr)

	if n.Name == "main" {
		g.buf.PatchRMAbs(g.mainLoc, "LDA", emitter.PC, addr, "jump to main")
	}

	g.buf.EmitComment("-> function " + n.Name)

	fctx := genCtx{scope: n.Scope, tmpOffset: emitter.InitFO, globalOffset: ctx.globalOffset}

	if n.Name != "main" {
		g.buf.EmitRM("ST", emitter.AC, emitter.RetFO, emitter.FP, "store return address")
	}

	fctx = g.gen(n.Children[0], fctx)
	if body := n.Children[1]; body != nil {
		fctx = g.gen(body.Children[0], fctx)
	}

	if n.DeclType.ReturnType != nil && n.DeclType.ReturnType.Base == types.Void {
		g.emitEpilogue()
	}

	g.buf.EmitComment("<- function " + n.Name)

	ctx.globalOffset = fctx.globalOffset
	return ctx
}

// emitEpilogue reads the return address out of the current frame
// before FP is overwritten — AC1 ends up holding an absolute address,
// so the final jump is an LDA (address computation), not an LD
// (memory read): loading through it again would read past the return
// address instead of landing on it.
func (g *Generator) emitEpilogue() {
	g.buf.EmitRM("LD", emitter.AC1, emitter.RetFO, emitter.FP, "load return address")
	g.buf.EmitRM("LD", emitter.FP, emitter.OfpFO, emitter.FP, "restore caller's frame pointer")
	g.buf.EmitRM("LDA", emitter.PC, 0, emitter.AC1, "jump to return address")
}

func (g *Generator) genReturn(n *ast.Node, ctx genCtx) genCtx {
	if n.Children[0] != nil {
		ctx = g.genNode(n.Children[0], ctx)
	}
	g.buf.EmitComment("-> return")
	g.emitEpilogue()
	g.buf.EmitComment("<- return")
	return ctx
}

// genVariable assigns the declaration's frame or global slot and, for
// arrays, emits the instructions that seed the array's own cell with
// its base address. A symbol's Offset is set here, during code
// generation, not by the analyser: the analyser resolves names and
// types in pass 1/2, but frame layout is a property of code generation
// order, so it belongs to this package.
func (g *Generator) genVariable(n *ast.Node, ctx genCtx) genCtx {
	sym := n.Symbol
	arraySize := 0
	if n.DeclType.IsArray() {
		arraySize = n.DeclType.ArraySize
	}

	if sym.Global {
		offset := ctx.globalOffset
		sym.Offset = offset
		if n.DeclType.IsArray() {
			g.buf.EmitRM("LDC", emitter.AC, offset, 0, "load global vector address")
			g.buf.EmitRM("LDC", emitter.GP, 0, 0, "load GP")
			g.buf.EmitRM("ST", emitter.AC, offset, emitter.GP, "store global vector")
			ctx.globalOffset += arraySize + 1
		} else {
			ctx.globalOffset++
		}
		return ctx
	}

	offset := ctx.tmpOffset
	sym.Offset = offset
	if n.DeclType.IsArray() {
		g.buf.EmitRM("LDA", emitter.AC, offset, emitter.FP, "load local vector address")
		g.buf.EmitRM("ST", emitter.AC, offset, emitter.FP, "store local vector")
		ctx.tmpOffset -= arraySize + 1
	} else {
		ctx.tmpOffset--
	}
	return ctx
}

func (g *Generator) genParam(n *ast.Node, ctx genCtx) genCtx {
	n.Symbol.Offset = ctx.tmpOffset
	ctx.tmpOffset--
	return ctx
}

func baseRegister(sym *symtab.Symbol) int {
	if sym.Global {
		return emitter.GP
	}
	return emitter.FP
}

// genArrayAddress evaluates n's index expression and leaves the
// element's absolute address in AC1, using ctx.tmpOffset as scratch
// space it restores before returning (net neutral, like an operator).
func (g *Generator) genArrayAddress(n *ast.Node, ctx genCtx) genCtx {
	sym := n.Symbol
	base := baseRegister(sym)

	ctx = g.genNode(n.Children[0], ctx)
	tmp := ctx.tmpOffset
	g.buf.EmitRM("ST", emitter.AC, tmp, emitter.FP, "push index")
	g.buf.EmitRM("LD", emitter.AC1, sym.Offset, base, "load array base")
	g.buf.EmitRM("LD", emitter.AC, tmp, emitter.FP, "pop index")
	g.buf.EmitRO("SUB", emitter.AC1, emitter.AC1, emitter.AC, "base - index")
	g.buf.EmitRM("LDC", emitter.AC, 1, 0, "load constant 1")
	g.buf.EmitRO("SUB", emitter.AC1, emitter.AC1, emitter.AC, "element address = base - index - 1")
	return ctx
}

// genIdentifier generates a read of a scalar variable or array element.
func (g *Generator) genIdentifier(n *ast.Node, ctx genCtx) genCtx {
	sym := n.Symbol
	if n.Children[0] != nil {
		ctx = g.genArrayAddress(n, ctx)
		g.buf.EmitRM("LD", emitter.AC, 0, emitter.AC1, "load array element")
		return ctx
	}
	g.buf.EmitRM("LD", emitter.AC, sym.Offset, baseRegister(sym), "load variable")
	return ctx
}

// genAssign evaluates the right-hand side into AC, then stores it
// either directly to a scalar's frame/global slot or, for an array
// element target, through the address genArrayAddress computes.
func (g *Generator) genAssign(n *ast.Node, ctx genCtx) genCtx {
	lhs, rhs := n.Children[0], n.Children[1]

	if lhs.Children[0] != nil {
		ctx = g.genNode(rhs, ctx)
		tmp := ctx.tmpOffset
		g.buf.EmitRM("ST", emitter.AC, tmp, emitter.FP, "push rhs value")
		addrCtx := ctx
		addrCtx.tmpOffset--
		g.genArrayAddress(lhs, addrCtx)
		g.buf.EmitRM("LD", emitter.AC, tmp, emitter.FP, "pop rhs value")
		g.buf.EmitRM("ST", emitter.AC, 0, emitter.AC1, "store array element")
		return ctx
	}

	sym := lhs.Symbol
	ctx = g.genNode(rhs, ctx)
	g.buf.EmitRM("ST", emitter.AC, sym.Offset, baseRegister(sym), "store variable")
	return ctx
}

// genOperator evaluates both operands via the push-left/load-left
// scratch pattern, leaving AC1 holding the left operand and AC the
// right one by the time the operator itself is emitted. Relational
// operators compile to a SUB followed by the true/false branch
// sequence standard to the TM machine; arithmetic operators compile
// directly to a single RO instruction.
func (g *Generator) genOperator(n *ast.Node, ctx genCtx) genCtx {
	ctx = g.genNode(n.Children[0], ctx)
	tmp := ctx.tmpOffset
	g.buf.EmitRM("ST", emitter.AC, tmp, emitter.FP, "push left operand")

	rctx := ctx
	rctx.tmpOffset--
	rctx = g.genNode(n.Children[1], rctx)
	g.buf.EmitRM("LD", emitter.AC1, tmp, emitter.FP, "pop left operand")

	switch n.Operator {
	case ast.OpPlus:
		g.buf.EmitRO("ADD", emitter.AC, emitter.AC1, emitter.AC, "op +")
	case ast.OpMinus:
		g.buf.EmitRO("SUB", emitter.AC, emitter.AC1, emitter.AC, "op -")
	case ast.OpTimes:
		g.buf.EmitRO("MUL", emitter.AC, emitter.AC1, emitter.AC, "op *")
	case ast.OpOver:
		g.buf.EmitRO("DIV", emitter.AC, emitter.AC1, emitter.AC, "op /")
	default:
		g.genRelational(n.Operator)
	}
	return ctx
}

var relationalJump = map[ast.Op]string{
	ast.OpLT:  "JLT",
	ast.OpGT:  "JGT",
	ast.OpLEQ: "JLE",
	ast.OpGEQ: "JGE",
	ast.OpEQ:  "JEQ",
	ast.OpNEQ: "JNE",
}

// genRelational emits: AC = AC1 - AC (left - right), then the
// standard TM two-branch sequence that leaves a boolean 0 or 1 in AC.
func (g *Generator) genRelational(op ast.Op) {
	g.buf.EmitRO("SUB", emitter.AC, emitter.AC1, emitter.AC, "op "+op.String())

	trueLoc := g.buf.EmitSkip(1)
	g.buf.EmitRM("LDC", emitter.AC, 0, 0, "false case")
	doneLoc := g.buf.EmitSkip(1)

	falseToTrue := g.buf.Len()
	g.buf.EmitBackup(trueLoc)
	g.buf.EmitRMAbs(relationalJump[op], emitter.AC, falseToTrue, "jump to true case")
	g.buf.EmitRestore()

	g.buf.EmitRM("LDC", emitter.AC, 1, 0, "true case")
	end := g.buf.Len()
	g.buf.EmitBackup(doneLoc)
	g.buf.EmitRMAbs("LDA", emitter.PC, end, "jump to end")
	g.buf.EmitRestore()
}

func (g *Generator) genIf(n *ast.Node, ctx genCtx) genCtx {
	cond, thenBranch, elseBranch := n.Children[0], n.Children[1], n.Children[2]

	ctx = g.genNode(cond, ctx)
	g.buf.EmitComment("if: jump to else belongs here")
	toElse := g.buf.EmitSkip(1)

	ctx = g.gen(thenBranch, ctx)
	g.buf.EmitComment("if: jump to end belongs here")
	toEnd := g.buf.EmitSkip(1)

	elseLoc := g.buf.Len()
	g.buf.EmitBackup(toElse)
	g.buf.EmitRMAbs("JEQ", emitter.AC, elseLoc, "if: jump to else")
	g.buf.EmitRestore()

	if elseBranch != nil {
		ctx = g.gen(elseBranch, ctx)
	}

	endLoc := g.buf.Len()
	g.buf.EmitBackup(toEnd)
	g.buf.EmitRMAbs("LDA", emitter.PC, endLoc, "if: jump to end")
	g.buf.EmitRestore()

	return ctx
}

func (g *Generator) genWhile(n *ast.Node, ctx genCtx) genCtx {
	cond, body := n.Children[0], n.Children[1]

	condLoc := g.buf.Len()
	ctx = g.genNode(cond, ctx)
	g.buf.EmitComment("while: jump past body belongs here")
	toEnd := g.buf.EmitSkip(1)

	ctx = g.gen(body, ctx)
	g.buf.EmitRMAbs("LDA", emitter.PC, condLoc, "while: jump back to condition")

	afterLoc := g.buf.Len()
	g.buf.EmitBackup(toEnd)
	g.buf.EmitRMAbs("JEQ", emitter.AC, afterLoc, "while: jump past body")
	g.buf.EmitRestore()

	return ctx
}

// genCall special-cases the two built-ins (which the TM machine
// exposes as single instructions, not real calls) and otherwise emits
// the general calling convention: stash the caller's FP, evaluate and
// store each argument into the callee's about-to-be-current frame,
// move FP to point at it, then jump to the callee carrying a return
// address computed from the current location. Arguments are walked
// with an explicit loop over the sibling chain rather than by handing
// the chain to gen, so nothing needs a flag to keep gen from
// continuing past the last argument into whatever follows the call.
func (g *Generator) genCall(n *ast.Node, ctx genCtx) genCtx {
	switch n.Name {
	case "output":
		ctx = g.genNode(n.Children[0], ctx)
		g.buf.EmitRO("OUT", emitter.AC, 0, 0, "output")
		return ctx
	case "input":
		g.buf.EmitRO("IN", emitter.AC, 0, 0, "input")
		return ctx
	}

	// tmp becomes the new frame's OfpFO (relative 0) once FP is moved;
	// tmp-1, its RetFO slot, is left for the callee's own prologue to
	// fill once control transfers, so the first argument lands at
	// tmp-2 — exactly InitFO relative to the new frame.
	tmp := ctx.tmpOffset
	g.buf.EmitRM("ST", emitter.FP, tmp, emitter.FP, "store old frame pointer")

	argCtx := ctx
	argCtx.tmpOffset = tmp - 2
	for arg := n.Children[0]; arg != nil; arg = arg.Next {
		argCtx = g.genNode(arg, argCtx)
		g.buf.EmitRM("ST", emitter.AC, argCtx.tmpOffset, emitter.FP, "store argument")
		argCtx.tmpOffset--
	}

	g.buf.EmitRM("LDA", emitter.FP, tmp, emitter.FP, "load fp with parameters")

	retLoc := g.buf.Len()
	g.buf.EmitRM("LDC", emitter.AC, retLoc+2, 0, "load return address")
	g.buf.EmitRMAbs("LDA", emitter.PC, g.funcs.Lookup(n.Name), "jump to function")

	return ctx
}
