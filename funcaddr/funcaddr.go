// Package funcaddr implements the function address map: a small
// fixed-size open-addressed table from function name to the
// instruction address at which its body begins, consulted by the code
// generator at every call site.
package funcaddr

// size is the fixed table capacity, a prime larger than the expected
// function count so linear probing stays cheap.
const size = 23

// Miss is the sentinel address returned by Lookup when name was never
// inserted. Well-analysed input never observes it: the analyser rejects
// any call to an undeclared function before code generation runs.
const Miss = 1024

type entry struct {
	key    string
	filled bool
	addr   int
}

// hash computes a starting bucket index for name using a shift-and-add
// mix, matching the reference implementation's hash().
func hash(name string) int {
	h := 0
	for i := 0; i < len(name); i++ {
		h = (h << 5) + int(name[i])
	}
	h %= size
	if h < 0 {
		h += size
	}
	return h
}

// Table is the open-addressed name-to-address map. The zero value is
// ready to use.
type Table struct {
	entries [size]entry
}

// Insert records that name's function body begins at addr, called once
// per function definition. If the table is full, Insert is a no-op
// (the table is sized generously enough that this never happens for
// well-formed input within this compiler's scope).
func (t *Table) Insert(name string, addr int) {
	idx := hash(name)
	for i := 0; i < size; i++ {
		probe := (idx + i) % size
		if !t.entries[probe].filled {
			t.entries[probe] = entry{key: name, filled: true, addr: addr}
			return
		}
	}
}

// Lookup returns the instruction address registered for name, or Miss
// if name was never inserted.
func (t *Table) Lookup(name string) int {
	idx := hash(name)
	for i := 0; i < size; i++ {
		probe := (idx + i) % size
		if !t.entries[probe].filled {
			return Miss
		}
		if t.entries[probe].key == name {
			return t.entries[probe].addr
		}
	}
	return Miss
}
