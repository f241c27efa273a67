// Package astjson decodes a JSON-encoded AST document into an ast.Node
// tree.
//
// The scanner and parser that would ordinarily build this tree in-process
// are out of scope for this repository (see spec.md §1): upstream hands
// this compiler a finished tree instead, and a JSON document is the
// realistic shape for that handoff across a pipeline boundary (a separate
// front-end process, a saved fixture, a test corpus). Decoding never
// touches ResultType, Symbol, or Scope — those are the analyser's job.
package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/luccarhaddad/cminus/ast"
	"github.com/luccarhaddad/cminus/types"
)

// Node is the wire shape of one ast.Node: a flat array entry referencing
// its children and sibling by index into the same array, since JSON has
// no native way to express the cyclic/shared structure a live *ast.Node
// graph can have (though this compiler's AST is in fact a tree).
type Node struct {
	Kind     string `json:"kind"`
	Line     int    `json:"line"`
	Name     string `json:"name,omitempty"`
	DeclType *Type  `json:"declType,omitempty"`
	Operator string `json:"operator,omitempty"`
	Value    int    `json:"value,omitempty"`

	Children [3]int `json:"children"` // -1 for an absent slot
	Next     int     `json:"next"`     // -1 for no sibling
}

// Type is the wire shape of a types.TypeInfo.
type Type struct {
	Base       string  `json:"base"`
	ArraySize  int     `json:"arraySize,omitempty"`
	ReturnType *Type   `json:"returnType,omitempty"`
	Parameters []*Type `json:"parameters,omitempty"`
}

// Document is the top-level decoded shape: an array of Node entries plus
// the index of the root (normally 0).
type Document struct {
	Nodes []Node `json:"nodes"`
	Root  int    `json:"root"`
}

var kindTable = map[string]ast.Kind{
	"PROGRAM":    ast.Program,
	"FUNCTION":   ast.Function,
	"VARIABLE":   ast.Variable,
	"IF":         ast.If,
	"WHILE":      ast.While,
	"RETURN":     ast.Return,
	"ASSIGN":     ast.Assign,
	"CALL":       ast.Call,
	"OPERATOR":   ast.Operator,
	"CONSTANT":   ast.Constant,
	"IDENTIFIER": ast.Identifier,
	"PARAM":      ast.Param,
	"BLOCK":      ast.Block,
}

var opTable = map[string]ast.Op{
	"+":  ast.OpPlus,
	"-":  ast.OpMinus,
	"*":  ast.OpTimes,
	"/":  ast.OpOver,
	"<":  ast.OpLT,
	">":  ast.OpGT,
	"<=": ast.OpLEQ,
	">=": ast.OpGEQ,
	"==": ast.OpEQ,
	"!=": ast.OpNEQ,
}

var baseTable = map[string]types.Base{
	"void":    types.Void,
	"int":     types.Int,
	"boolean": types.Boolean,
	"array":   types.Array,
}

// Decode parses a JSON AST document and returns its root ast.Node.
func Decode(data []byte) (*ast.Node, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("astjson: decode: %w", err)
	}
	return Build(&doc)
}

// Build converts an already-decoded Document into a live ast.Node tree.
func Build(doc *Document) (*ast.Node, error) {
	if doc.Root < 0 || doc.Root >= len(doc.Nodes) {
		return nil, fmt.Errorf("astjson: root index %d out of range (%d nodes)", doc.Root, len(doc.Nodes))
	}

	nodes := make([]*ast.Node, len(doc.Nodes))
	for i, wire := range doc.Nodes {
		n, err := newNode(wire)
		if err != nil {
			return nil, fmt.Errorf("astjson: node %d: %w", i, err)
		}
		nodes[i] = n
	}

	for i, wire := range doc.Nodes {
		n := nodes[i]
		for slot, ref := range wire.Children {
			if ref < 0 {
				continue
			}
			if ref >= len(nodes) {
				return nil, fmt.Errorf("astjson: node %d: child %d index %d out of range", i, slot, ref)
			}
			n.Children[slot] = nodes[ref]
		}
		if wire.Next >= 0 {
			if wire.Next >= len(nodes) {
				return nil, fmt.Errorf("astjson: node %d: next index %d out of range", i, wire.Next)
			}
			n.Next = nodes[wire.Next]
		}
	}

	return nodes[doc.Root], nil
}

func newNode(wire Node) (*ast.Node, error) {
	kind, ok := kindTable[wire.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", wire.Kind)
	}
	n := ast.New(kind, wire.Line)
	n.Name = wire.Name
	n.Value = wire.Value

	if wire.Operator != "" {
		op, ok := opTable[wire.Operator]
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", wire.Operator)
		}
		n.Operator = op
	}

	if wire.DeclType != nil {
		t, err := buildType(wire.DeclType)
		if err != nil {
			return nil, err
		}
		n.DeclType = t
	}

	return n, nil
}

func buildType(wire *Type) (*types.TypeInfo, error) {
	if wire == nil {
		return nil, nil
	}
	base, ok := baseTable[wire.Base]
	if !ok {
		return nil, fmt.Errorf("unknown base type %q", wire.Base)
	}

	var t *types.TypeInfo
	switch {
	case wire.ReturnType != nil:
		ret, err := buildType(wire.ReturnType)
		if err != nil {
			return nil, err
		}
		t = types.NewFunction(ret)
		for _, p := range wire.Parameters {
			pt, err := buildType(p)
			if err != nil {
				return nil, err
			}
			t.AddParameter(pt)
		}
	case base == types.Array:
		t = types.NewArray(base, wire.ArraySize)
	default:
		t = types.New(base)
	}
	return t, nil
}
