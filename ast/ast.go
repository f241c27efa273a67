// Package ast defines the abstract syntax tree node shape consumed by the
// semantic analyser and code generator.
//
// A [Node] is a tagged tree with up to three positional children, a
// sibling ("next") link forming a statement list, a source line, and
// slots the analyser fills in: a resolved [types.TypeInfo], a resolved
// [symtab.Symbol], and — for FUNCTION and BLOCK nodes only — the
// [symtab.Scope] active while visiting that node's children.
//
// Child slots are positional by Kind:
//
//	IF:       [condition, then-branch, else-branch]
//	WHILE:    [condition, body]
//	ASSIGN:   [lhs, rhs]
//	FUNCTION: [parameter-list head, body]
//	CALL:     [argument-list head]
//	BLOCK:    [statement-list head]
//
// The sibling chain is an ordered sequence; only the first element of a
// sequence is ever stored in a parent's child slot, matching the source
// grammar's convention of building statement and parameter lists as
// sibling chains rather than as separate slices.
package ast

import (
	"github.com/luccarhaddad/cminus/symtab"
	"github.com/luccarhaddad/cminus/types"
)

// Kind tags the shape of a Node's payload and the meaning of its child
// slots.
type Kind int

//nolint:revive
const (
	Program Kind = iota
	Function
	Variable
	If
	While
	Return
	Assign
	Call
	Operator
	Constant
	Identifier
	Param
	Block
)

// String returns the printable name of a node kind.
func (k Kind) String() string {
	switch k {
	case Program:
		return "PROGRAM"
	case Function:
		return "FUNCTION"
	case Variable:
		return "VARIABLE"
	case If:
		return "IF"
	case While:
		return "WHILE"
	case Return:
		return "RETURN"
	case Assign:
		return "ASSIGN"
	case Call:
		return "CALL"
	case Operator:
		return "OPERATOR"
	case Constant:
		return "CONSTANT"
	case Identifier:
		return "IDENTIFIER"
	case Param:
		return "PARAM"
	case Block:
		return "BLOCK"
	default:
		return "UNKNOWN"
	}
}

// Op tags the operator carried by an OPERATOR node.
type Op int

//nolint:revive
const (
	OpNone Op = iota
	OpPlus
	OpMinus
	OpTimes
	OpOver
	OpLT
	OpGT
	OpLEQ
	OpGEQ
	OpEQ
	OpNEQ
)

// IsRelational reports whether op is a relational (boolean-producing)
// operator as opposed to an arithmetic one.
func (op Op) IsRelational() bool {
	switch op {
	case OpLT, OpGT, OpLEQ, OpGEQ, OpEQ, OpNEQ:
		return true
	default:
		return false
	}
}

// String returns the source-level spelling of an operator.
func (op Op) String() string {
	switch op {
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpTimes:
		return "*"
	case OpOver:
		return "/"
	case OpLT:
		return "<"
	case OpGT:
		return ">"
	case OpLEQ:
		return "<="
	case OpGEQ:
		return ">="
	case OpEQ:
		return "=="
	case OpNEQ:
		return "!="
	default:
		return "?"
	}
}

const maxChildren = 3

// Node is a single AST node. Payload fields are populated according to
// Kind: Name and DeclType carry a declaration's own name/type (VARIABLE,
// FUNCTION, PARAM, IDENTIFIER, CALL); Operator carries an OPERATOR node's
// tag; Value carries a CONSTANT node's integer literal.
//
// ResultType, Symbol, and Scope start nil and are filled in by the
// analyser; Symbol is set both on definition sites (VARIABLE, PARAM,
// FUNCTION) and on use sites (IDENTIFIER, CALL) so the code generator
// never needs to re-resolve a name — see DESIGN.md.
type Node struct {
	Kind Kind
	Line int

	Name     string
	DeclType *types.TypeInfo
	Operator Op
	Value    int

	Children [maxChildren]*Node
	Next     *Node

	ResultType *types.TypeInfo
	Symbol     *symtab.Symbol
	Scope      *symtab.Scope
}

// New creates a Node of the given kind at the given source line, with all
// other fields at their zero value.
func New(kind Kind, line int) *Node {
	return &Node{Kind: kind, Line: line}
}

// AddChild places child in the lowest free of the node's three child
// slots. It reports false if all three slots are already occupied.
func AddChild(parent, child *Node) bool {
	if parent == nil || child == nil {
		return false
	}
	for i := range parent.Children {
		if parent.Children[i] == nil {
			parent.Children[i] = child
			return true
		}
	}
	return false
}

// AddSibling appends sibling to the tail of node's next-chain.
func AddSibling(node, sibling *Node) {
	if node == nil || sibling == nil {
		return
	}
	for node.Next != nil {
		node = node.Next
	}
	node.Next = sibling
}

// Walk calls visit for node and, in order, every node reachable from it
// through Children and Next. It is a convenience for tests and tooling;
// the analyser and code generator use their own context-carrying
// traversals instead (see DESIGN.md).
func Walk(node *Node, visit func(*Node)) {
	for n := node; n != nil; n = n.Next {
		visit(n)
		for _, child := range n.Children {
			if child != nil {
				Walk(child, visit)
			}
		}
	}
}
