// Package emitter implements the TM instruction buffer: a monotonically
// growing sequence of instructions addressed by program counter, with
// the reserve/back-patch primitives the code generator needs for
// forward jumps (IF/WHILE/function prologues) whose target address
// isn't known until after their body has been emitted.
package emitter

// Register numbers fixed by TM convention.
const (
	AC  = 0 // accumulator
	AC1 = 1 // second accumulator
	FP  = 2 // frame pointer
	R3  = 3
	R4  = 4
	GP  = 5 // global pointer
	MP  = 6 // memory pointer (top of globals)
	PC  = 7 // program counter
)

// Frame offsets, relative to a function's frame pointer.
const (
	OfpFO  = 0  // saved caller FP
	RetFO  = -1 // return address slot
	InitFO = -2 // first temporary/local slot; grows downward
)

// Kind distinguishes the instruction shapes a Buffer holds.
type Kind int

const (
	// KindReserved marks a slot skipped by EmitSkip that has not yet
	// been patched; it never reaches the executable listing, the same
	// way the reference emitter never visits an unpatched back-patch
	// slot once compilation finishes.
	KindReserved Kind = iota
	// KindRO is a register-only triadic instruction: op r, s, t.
	KindRO
	// KindRM is a register-memory instruction: op r, d(s).
	KindRM
)

// Instruction is one executable entry of a Buffer. Comment is trailing
// documentation for the listing, matching the reference emitter's
// per-call comment argument.
type Instruction struct {
	Kind    Kind
	Op      string
	Target  int
	Arg1    int
	Arg2    int
	Comment string
}

// Annotation is a standalone "* comment" listing line emitted between
// instructions, attached to the address it was emitted at (At). Unlike
// an Instruction, an Annotation never occupies a code location: the
// reference emitter's emitComment never advances emitLoc, so a comment
// can sit between two instructions without shifting every address that
// follows it.
type Annotation struct {
	At   int
	Text string
}

var reservedPlaceholder = Instruction{Kind: KindReserved}

// Buffer is the growing instruction sequence a compilation emits into.
// cursor is the current write head (the program counter); highWater is
// the furthest the cursor has ever reached, exactly mirroring the
// reference emitter's emitLoc/highEmitLoc pair. The zero value is ready
// to use.
type Buffer struct {
	instructions []Instruction
	comments     []Annotation
	cursor       int
	highWater    int
}

// Len returns the current program counter: the address the next
// instruction will be emitted at.
func (b *Buffer) Len() int {
	return b.cursor
}

// Instructions returns the buffer's contents up to its high-water mark.
// The returned slice must not be mutated by the caller.
func (b *Buffer) Instructions() []Instruction {
	return b.instructions[:b.highWater]
}

// Comments returns every standalone comment line emitted via
// EmitComment, in emission order, each tagged with the address it was
// emitted at (see Annotation). The returned slice must not be mutated
// by the caller.
func (b *Buffer) Comments() []Annotation {
	return b.comments
}

// At returns the instruction at loc. It panics if loc is out of range,
// matching the emitter's invariant that callers only ever address
// locations they themselves reserved.
func (b *Buffer) At(loc int) Instruction {
	return b.instructions[loc]
}

// emit writes instr at the cursor, growing the backing slice (padding
// with reserved placeholders) if the cursor has run ahead of it, then
// advances the cursor and high-water mark.
func (b *Buffer) emit(instr Instruction) int {
	loc := b.cursor
	for len(b.instructions) <= loc {
		b.instructions = append(b.instructions, reservedPlaceholder)
	}
	b.instructions[loc] = instr
	b.cursor++
	if b.cursor > b.highWater {
		b.highWater = b.cursor
	}
	return loc
}

// EmitComment appends a standalone comment line at the current address
// without consuming a code location — a second EmitComment, or a real
// instruction, can still be emitted at the same address afterward.
func (b *Buffer) EmitComment(comment string) {
	b.comments = append(b.comments, Annotation{At: b.cursor, Text: comment})
}

// EmitRO appends a register-only instruction: op target, arg1, arg2.
// Returns the address it was emitted at.
func (b *Buffer) EmitRO(op string, target, arg1, arg2 int, comment string) int {
	return b.emit(Instruction{Kind: KindRO, Op: op, Target: target, Arg1: arg1, Arg2: arg2, Comment: comment})
}

// EmitRM appends a register-memory instruction: op target, offset(base).
// Returns the address it was emitted at.
func (b *Buffer) EmitRM(op string, target, offset, base int, comment string) int {
	return b.emit(Instruction{Kind: KindRM, Op: op, Target: target, Arg1: offset, Arg2: base, Comment: comment})
}

// EmitSkip reserves n instruction slots for later back-patching and
// returns the address of the first reserved slot. If n is 0, it returns
// the current address without reserving anything.
func (b *Buffer) EmitSkip(n int) int {
	loc := b.cursor
	for i := 0; i < n; i++ {
		b.emit(reservedPlaceholder)
	}
	return loc
}

// EmitBackup moves the write head to loc without disturbing anything
// already emitted past it; a subsequent EmitRestore returns to the
// furthest point the cursor had reached.
func (b *Buffer) EmitBackup(loc int) {
	b.cursor = loc
}

// EmitRestore returns the write head to the high-water mark: the
// furthest address emitted before the most recent EmitBackup.
func (b *Buffer) EmitRestore() {
	b.cursor = b.highWater
}

// EmitRMAbs emits a register-memory instruction whose offset is
// computed PC-relative to target absLoc, matching the reference
// emitter's emitRM_Abs: the TM machine always adds the *next*
// instruction's address to a PC-relative offset, hence the +1.
func (b *Buffer) EmitRMAbs(op string, target, absLoc int, comment string) int {
	loc := b.cursor
	offset := absLoc - (loc + 1)
	return b.emit(Instruction{Kind: KindRM, Op: op, Target: target, Arg1: offset, Arg2: PC, Comment: comment})
}

// Patch overwrites the instruction at a previously reserved loc with a
// fresh register-memory instruction, used to back-patch once the
// target address is known. loc must already have been reserved via
// EmitSkip or passed over by EmitBackup/EmitRestore.
func (b *Buffer) Patch(loc int, op string, target, offset, base int, comment string) {
	b.instructions[loc] = Instruction{Kind: KindRM, Op: op, Target: target, Arg1: offset, Arg2: base, Comment: comment}
}

// PatchRMAbs back-patches the reserved slot at loc with a PC-relative
// jump to absLoc, the back-patch counterpart of EmitRMAbs.
func (b *Buffer) PatchRMAbs(loc int, op string, target, absLoc int, comment string) {
	offset := absLoc - (loc + 1)
	b.instructions[loc] = Instruction{Kind: KindRM, Op: op, Target: target, Arg1: offset, Arg2: PC, Comment: comment}
}
