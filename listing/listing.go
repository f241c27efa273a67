// Package listing renders a compiled unit to the two plain-text formats
// spec.md §6 describes: a TM instruction listing and a symbol-table
// listing. Both are deliberately "dumb" string formatting with no
// decision-making of their own — spec.md explicitly scopes the real TM
// instruction pretty-printer out of this system as an external
// collaborator, so this package exists only to give that boundary a
// concrete, minimal home in a repository that builds and runs end to end.
package listing

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luccarhaddad/cminus/emitter"
	"github.com/luccarhaddad/cminus/symtab"
)

// Code writes buf to w in the §6 instruction text form: one line per
// instruction, `n: OP r, s, t` for register-only instructions, `n: OP
// r, d(s)` for register-memory instructions, and `* comment` for
// standalone annotations. Annotations are interleaved by address: every
// comment recorded at address n is printed immediately before the
// instruction at address n, matching the order the reference emitter's
// emitComment and emitRO/emitRM calls appear in source.
func Code(w io.Writer, buf *emitter.Buffer) error {
	comments := buf.Comments()
	ci := 0

	for addr, instr := range buf.Instructions() {
		for ci < len(comments) && comments[ci].At <= addr {
			if comments[ci].Text != "" {
				if _, err := fmt.Fprintln(w, "* "+comments[ci].Text); err != nil {
					return err
				}
			}
			ci++
		}

		var line string
		switch instr.Kind {
		case emitter.KindRO:
			line = fmt.Sprintf("%d: %s %d,%d,%d", addr, instr.Op, instr.Target, instr.Arg1, instr.Arg2)
		case emitter.KindRM:
			line = fmt.Sprintf("%d: %s %d,%d(%d)", addr, instr.Op, instr.Target, instr.Arg1, instr.Arg2)
		default:
			continue
		}
		if instr.Comment != "" {
			line += "\t* " + instr.Comment
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	for ; ci < len(comments); ci++ {
		if comments[ci].Text == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, "* "+comments[ci].Text); err != nil {
			return err
		}
	}
	return nil
}

// headers are the symbol table listing's column titles. SymbolTable
// sizes each column to its widest entry (or its header, whichever is
// wider), matching the reference printSymTab's fixed-column layout
// without hardcoding widths that would truncate a long identifier.
var headers = [5]string{"Variable Name", "Scope", "ID Type", "Data Type", "Line Numbers"}

// SymbolTable writes the rows of scope (see symtab.Rows) to w as the §6
// fixed-column table: `Variable Name | Scope | ID Type | Data Type |
// Line Numbers`. declaredMain must be false when no function named
// "main" was found anywhere in the compiled unit; in that case a
// trailing "undefined reference to 'main'" line is appended, matching
// the reference implementation's post-listing check.
func SymbolTable(w io.Writer, scope *symtab.Scope, declaredMain bool) error {
	rows := symtab.Rows(scope)

	widths := headers
	cells := make([][5]string, len(rows))
	for i, r := range rows {
		lines := make([]string, len(r.References))
		for j, l := range r.References {
			lines[j] = strconv.Itoa(l)
		}
		cells[i] = [5]string{r.Name, r.Scope, r.Kind, r.DataType, strings.Join(lines, " ")}
		for c := 0; c < 5; c++ {
			if len(cells[i][c]) > len(widths[c]) {
				widths[c] = cells[i][c]
			}
		}
	}

	if err := writeRow(w, headers, widths); err != nil {
		return err
	}
	sep := [5]string{}
	for c := range sep {
		sep[c] = strings.Repeat("-", len(widths[c]))
	}
	if err := writeRow(w, sep, widths); err != nil {
		return err
	}
	for _, row := range cells {
		if err := writeRow(w, row, widths); err != nil {
			return err
		}
	}

	if !declaredMain {
		if _, err := fmt.Fprintln(w, "undefined reference to 'main'"); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, cells, widths [5]string) error {
	var b strings.Builder
	for c, cell := range cells {
		b.WriteString(cell)
		if c < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", len(widths[c])-len(cell)+2))
		}
	}
	_, err := fmt.Fprintln(w, b.String())
	return err
}
