// Package symtab implements the per-scope hashed symbol table: a
// parent-linked tree of [Scope] values, each holding a small open-hash
// table of [Symbol] chains.
//
// Hashing, duplicate-rejection, and reference-tracking semantics are
// ported from the reference compiler's symtab.c rather than reached for
// out of Go's map type, so the printed symbol table ordering and the
// "first-declaration wins" behaviour match exactly.
package symtab

import "github.com/luccarhaddad/cminus/types"

// hashSize is the fixed bucket count, a prime as the reference
// implementation uses to spread names evenly.
const hashSize = 211

// Kind classifies what a Symbol denotes.
type Kind int

const (
	Variable Kind = iota
	Function
	Parameter
	Array
)

// String returns the printable kind used in symbol table listings.
func (k Kind) String() string {
	switch k {
	case Variable:
		return "var"
	case Function:
		return "fun"
	case Parameter:
		return "var"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// SourceInfo tracks where a Symbol was defined and every distinct line
// it was subsequently referenced from, in first-insertion order.
type SourceInfo struct {
	DefinedAt  int
	References []int
}

// Symbol is one entry in a Scope's symbol table.
type Symbol struct {
	Name       string
	Kind       Kind
	Type       *types.TypeInfo
	Offset     int
	Global     bool // addressed relative to GP rather than FP; set by the analyser at insertion
	SourceInfo SourceInfo

	next *Symbol // bucket chain
}

// NewSymbol creates a Symbol of the given name, kind, and type, with no
// offset and no recorded references yet.
func NewSymbol(name string, kind Kind, t *types.TypeInfo) *Symbol {
	return &Symbol{Name: name, Kind: kind, Type: t}
}

// AddReference records line as a use site of sym, unless it is already
// present. No-op on a nil symbol. Grows References with plain append
// rather than the reference implementation's manual capacity-10
// chunking — see DESIGN.md.
func AddReference(sym *Symbol, line int) {
	if sym == nil {
		return
	}
	for _, existing := range sym.SourceInfo.References {
		if existing == line {
			return
		}
	}
	sym.SourceInfo.References = append(sym.SourceInfo.References, line)
}

// hash computes the bucket index for a name using a shift-and-add mix,
// matching the reference implementation's hash().
func hash(name string) int {
	h := 0
	for i := 0; i < len(name); i++ {
		h = (h << 5) + int(name[i])
	}
	h %= hashSize
	if h < 0 {
		h += hashSize
	}
	return h
}

// Scope is one node of the scope tree: the global scope, a function
// body, or a block.
type Scope struct {
	Name        string
	Parent      *Scope
	Level       int
	SymbolCount int
	Children    []*Scope

	buckets [hashSize]*Symbol
}

// NewScope creates a Scope named name, child of parent (nil for the
// root "global" scope). Level is parent.Level+1, or 0 for a root scope.
// If parent is non-nil, the new scope is appended to parent's Children.
func NewScope(name string, parent *Scope) *Scope {
	s := &Scope{Name: name, Parent: parent}
	if parent != nil {
		s.Level = parent.Level + 1
		parent.Children = append(parent.Children, s)
	}
	return s
}

// AddSymbol inserts sym into scope's bucket table. If a symbol of the
// same name already exists directly in scope, sym is silently dropped —
// callers (the analyser) are responsible for checking first and
// reporting a declaration error.
func AddSymbol(scope *Scope, sym *Symbol) {
	if scope == nil || sym == nil {
		return
	}
	h := hash(sym.Name)
	for cur := scope.buckets[h]; cur != nil; cur = cur.next {
		if cur.Name == sym.Name {
			return
		}
	}
	sym.next = scope.buckets[h]
	scope.buckets[h] = sym
	scope.SymbolCount++
}

// FindSymbol searches scope, then each ancestor in turn, for name. It
// returns the first match, or nil if none of scope's lineage declares
// it.
func FindSymbol(scope *Scope, name string) *Symbol {
	h := hash(name)
	for s := scope; s != nil; s = s.Parent {
		for cur := s.buckets[h]; cur != nil; cur = cur.next {
			if cur.Name == name {
				return cur
			}
		}
	}
	return nil
}

// FindSymbolInScope searches only scope itself, not its ancestors.
func FindSymbolInScope(scope *Scope, name string) *Symbol {
	if scope == nil {
		return nil
	}
	h := hash(name)
	for cur := scope.buckets[h]; cur != nil; cur = cur.next {
		if cur.Name == name {
			return cur
		}
	}
	return nil
}

// Row is one rendered line of a symbol table listing.
type Row struct {
	Name       string
	Scope      string
	Kind       string
	DataType   string
	References []int
}

// dataTypeName renders a symbol's data type the way the listing table
// expects: a function's own row shows its return type, not its
// function-type wrapper.
func dataTypeName(sym *Symbol) string {
	t := sym.Type
	if sym.Kind == Function && t != nil && t.ReturnType != nil {
		t = t.ReturnType
	}
	if t == nil {
		return "unknown"
	}
	switch t.Base {
	case types.Void:
		return "void"
	case types.Int, types.Array:
		return "int"
	default:
		return "unknown"
	}
}

// Rows walks scope and its descendants in the same order the reference
// implementation's printScopeSymbols does — all of a scope's own
// buckets in table order, then each child scope recursively — and
// returns one Row per symbol. Functions are only included at level 0 to
// avoid printing them once per nested re-entry.
func Rows(scope *Scope) []Row {
	var rows []Row
	var walk func(s *Scope, level int)
	walk = func(s *Scope, level int) {
		if s == nil {
			return
		}
		for _, head := range s.buckets {
			for cur := head; cur != nil; cur = cur.next {
				if cur.Kind == Function && level != 0 {
					continue
				}
				scopeName := s.Name
				if scopeName == "global" {
					scopeName = ""
				}
				rows = append(rows, Row{
					Name:       cur.Name,
					Scope:      scopeName,
					Kind:       cur.Kind.String(),
					DataType:   dataTypeName(cur),
					References: cur.SourceInfo.References,
				})
			}
		}
		for _, child := range s.Children {
			walk(child, level+1)
		}
	}
	walk(scope, 0)
	return rows
}
