// Package analyzer implements the two-pass semantic analyser: symbol
// table construction followed by type checking, over the AST shape
// defined in package ast.
//
// Both passes thread their scope (and, in the second pass, the
// enclosing function's type) through explicit parameters rather than
// through package-level cursors — there is no analyser-wide mutable
// "current scope" to desynchronize on a misordered push/pop.
package analyzer

import (
	"github.com/luccarhaddad/cminus/ast"
	"github.com/luccarhaddad/cminus/diag"
	"github.com/luccarhaddad/cminus/symtab"
	"github.com/luccarhaddad/cminus/types"
)

// Analyzer owns the global scope a compilation builds its symbol table
// into, and tracks whether a function named "main" was declared.
type Analyzer struct {
	Global       *symtab.Scope
	DeclaredMain bool
}

// semanticErrorf reports a pass-1 declaration error in spec.md §7's
// surfaced wording: "Semantic error at line N: <message>".
func semanticErrorf(sink diag.Sink, line int, format string, args ...any) {
	sink.Errorf(line, "Semantic error at line %d: "+format, append([]any{line}, args...)...)
}

// typeErrorf reports a pass-2 type-checking error in spec.md §7's
// surfaced wording: "Type error at line N: <message>".
func typeErrorf(sink diag.Sink, line int, format string, args ...any) {
	sink.Errorf(line, "Type error at line %d: "+format, append([]any{line}, args...)...)
}

// New creates an Analyzer with a fresh global scope seeded with the two
// built-in functions every program may call without declaring:
// input() returning int, and output(int) returning void.
func New() *Analyzer {
	global := symtab.NewScope("global", nil)

	input := symtab.NewSymbol("input", symtab.Function, types.NewFunction(types.New(types.Int)))
	symtab.AddSymbol(global, input)

	outputType := types.NewFunction(types.New(types.Void))
	outputType.AddParameter(types.New(types.Int))
	output := symtab.NewSymbol("output", symtab.Function, outputType)
	symtab.AddSymbol(global, output)

	return &Analyzer{Global: global}
}

// Analyze runs both passes over root, reporting every declaration and
// type error to sink. It is safe to call only once per Analyzer.
func (a *Analyzer) Analyze(root *ast.Node, sink diag.Sink) {
	a.insert(root, a.Global, sink)
	a.check(root, nil, sink)
}

// insert is pass 1: preorder symbol table construction. scope is the
// scope active for node and its siblings; a node that opens a new
// scope for its own children computes that scope locally and passes it
// only into its own subtree, never back out to its siblings.
func (a *Analyzer) insert(node *ast.Node, scope *symtab.Scope, sink diag.Sink) {
	for n := node; n != nil; n = n.Next {
		switch n.Kind {
		case ast.Function:
			a.insertFunction(n, scope, sink)
			continue

		case ast.Block:
			// A function-body block is wired up directly by
			// insertFunction and never reaches this generic case. Any
			// BLOCK encountered here is a nested block (if/while body,
			// or a bare compound statement): it gets a genuinely new
			// scope, named after its enclosing scope per the source
			// grammar's convention, so declarations inside stay local.
			nested := symtab.NewScope(scope.Name, scope)
			n.Scope = nested
			a.insert(n.Children[0], nested, sink)
			continue

		case ast.Variable:
			a.insertVariable(n, scope, sink)

		case ast.Param:
			a.insertParam(n, scope, sink)

		case ast.Identifier, ast.Call:
			a.resolveReference(n, scope, sink)
		}

		for _, child := range n.Children {
			a.insert(child, scope, sink)
		}
	}
}

func (a *Analyzer) insertFunction(n *ast.Node, scope *symtab.Scope, sink diag.Sink) {
	if symtab.FindSymbolInScope(scope, n.Name) != nil {
		semanticErrorf(sink, n.Line, "Function already declared in this scope")
		return
	}

	sym := symtab.NewSymbol(n.Name, symtab.Function, n.DeclType)
	sym.SourceInfo.DefinedAt = n.Line
	symtab.AddSymbol(scope, sym)
	symtab.AddReference(sym, n.Line)
	n.Symbol = sym

	if n.Name == "main" {
		a.DeclaredMain = true
	}

	fnScope := symtab.NewScope(n.Name, scope)
	n.Scope = fnScope

	params, body := n.Children[0], n.Children[1]
	a.insert(params, fnScope, sink)
	if body != nil {
		body.Scope = fnScope
		a.insert(body.Children[0], fnScope, sink)
	}
}

func (a *Analyzer) insertVariable(n *ast.Node, scope *symtab.Scope, sink diag.Sink) {
	if n.DeclType.Base == types.Void {
		semanticErrorf(sink, n.Line, "variable '%s' cannot have type void", n.Name)
		return
	}
	if symtab.FindSymbolInScope(scope, n.Name) != nil {
		semanticErrorf(sink, n.Line, "'%s' is already declared in this scope", n.Name)
		return
	}
	if existing := symtab.FindSymbolInScope(a.Global, n.Name); existing != nil && existing.Kind == symtab.Function {
		semanticErrorf(sink, n.Line, "'%s' is already declared as a function", n.Name)
		return
	}

	kind := symtab.Variable
	if n.DeclType.IsArray() {
		kind = symtab.Array
	}
	sym := symtab.NewSymbol(n.Name, kind, n.DeclType)
	sym.SourceInfo.DefinedAt = n.Line
	sym.Global = scope.Parent == nil
	symtab.AddSymbol(scope, sym)
	n.Symbol = sym
}

func (a *Analyzer) insertParam(n *ast.Node, scope *symtab.Scope, sink diag.Sink) {
	if scope.Parent == nil {
		semanticErrorf(sink, n.Line, "parameter declared outside function scope")
		return
	}
	sym := symtab.NewSymbol(n.Name, symtab.Parameter, n.DeclType)
	sym.SourceInfo.DefinedAt = n.Line
	symtab.AddSymbol(scope, sym)
	n.Symbol = sym
}

func (a *Analyzer) resolveReference(n *ast.Node, scope *symtab.Scope, sink diag.Sink) {
	sym := symtab.FindSymbol(scope, n.Name)
	if sym == nil {
		semanticErrorf(sink, n.Line, "'%s' was not declared in this scope", n.Name)
		return
	}
	symtab.AddReference(sym, n.Line)
	n.Symbol = sym
	switch {
	case n.Kind == ast.Call && sym.Type != nil:
		// A function's own TypeInfo always carries Base == Void (see
		// types.NewFunction); the call's result is the callee's
		// declared return type, nested one level down.
		n.ResultType = sym.Type.ReturnType
	case n.Kind == ast.Identifier && n.Children[0] != nil && sym.Type.IsArray():
		// An indexed reference to an array names one Int element, not
		// the array itself (the language has no array-of-array or
		// array-valued expression) — matches analyze.c, which types
		// every IdK node Integer regardless of whether it carries a
		// subscript.
		n.ResultType = types.New(types.Int)
	default:
		n.ResultType = sym.Type
	}
}

// check is pass 2: postorder type checking. fnType is the TypeInfo of
// the function enclosing node (nil at the top level, outside any
// function); it is re-established whenever a FUNCTION node is entered,
// preorder, before its children are visited.
func (a *Analyzer) check(node *ast.Node, fnType *types.TypeInfo, sink diag.Sink) {
	for n := node; n != nil; n = n.Next {
		childFnType := fnType
		if n.Kind == ast.Function {
			childFnType = n.DeclType
		}
		for _, child := range n.Children {
			a.check(child, childFnType, sink)
		}

		switch n.Kind {
		case ast.Operator:
			checkOperator(n, sink)
		case ast.If, ast.While:
			checkCondition(n, sink)
		case ast.Assign:
			checkAssign(n, sink)
		case ast.Return:
			checkReturn(n, fnType, sink)
		}
	}
}

// operandType implements checkBinaryOperands' operand resolution:
// VARIABLE/IDENTIFIER use their attached type, CONSTANT synthesises
// INT, nested OPERATOR uses its own resultType. Any other kind
// resolves to nil, which callers treat as a type error.
func operandType(n *ast.Node) *types.TypeInfo {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.Variable, ast.Identifier:
		return n.ResultType
	case ast.Constant:
		return types.New(types.Int)
	case ast.Operator:
		return n.ResultType
	default:
		return nil
	}
}

var intType = types.New(types.Int)

func checkOperator(n *ast.Node, sink diag.Sink) {
	left := operandType(n.Children[0])
	right := operandType(n.Children[1])
	if !types.Compatible(left, intType) {
		typeErrorf(sink, n.Line, "operator '%s' requires integer operands", n.Operator)
	}
	if !types.Compatible(right, intType) {
		typeErrorf(sink, n.Line, "operator '%s' requires integer operands", n.Operator)
	}
	if n.Operator.IsRelational() {
		n.ResultType = types.New(types.Boolean)
	} else {
		n.ResultType = types.New(types.Int)
	}
}

func checkCondition(n *ast.Node, sink diag.Sink) {
	cond := n.Children[0]
	if cond == nil || cond.ResultType == nil || cond.ResultType.Base != types.Boolean {
		typeErrorf(sink, n.Line, "Condition must be a boolean expression")
	}
}

func checkAssign(n *ast.Node, sink diag.Sink) {
	lhs, rhs := n.Children[0], n.Children[1]
	if lhs == nil || (lhs.Kind != ast.Variable && lhs.Kind != ast.Identifier) {
		typeErrorf(sink, n.Line, "invalid left-hand side in assignment")
		return
	}

	var rhsType *types.TypeInfo
	switch {
	case rhs == nil:
		return
	case rhs.Kind == ast.Constant:
		rhsType = types.New(types.Int)
	case rhs.Kind == ast.Variable || rhs.Kind == ast.Identifier:
		rhsType = rhs.ResultType
	case rhs.Kind == ast.Operator:
		rhsType = rhs.ResultType
	case rhs.Kind == ast.Call:
		if rhs.ResultType != nil && rhs.ResultType.Base == types.Void {
			typeErrorf(sink, n.Line, "invalid use of void expression")
			return
		}
		rhsType = rhs.ResultType
	default:
		typeErrorf(sink, n.Line, "invalid right-hand side in assignment")
		return
	}

	if lhs.ResultType == nil || rhsType == nil || lhs.ResultType.Base != rhsType.Base {
		typeErrorf(sink, n.Line, "incompatible types in assignment")
		return
	}
	n.ResultType = lhs.ResultType
}

func checkReturn(n *ast.Node, fnType *types.TypeInfo, sink diag.Sink) {
	if fnType == nil || fnType.ReturnType == nil {
		return
	}
	hasValue := n.Children[0] != nil
	if fnType.ReturnType.Base != types.Void && !hasValue {
		typeErrorf(sink, n.Line, "missing return value")
		return
	}
	if fnType.ReturnType.Base == types.Void && hasValue {
		typeErrorf(sink, n.Line, "return statement with return value in void function")
	}
}
