package codegen_test

import (
	"testing"

	"github.com/luccarhaddad/cminus/analyzer"
	"github.com/luccarhaddad/cminus/ast"
	"github.com/luccarhaddad/cminus/codegen"
	"github.com/luccarhaddad/cminus/diag"
	"github.com/luccarhaddad/cminus/emitter"
	"github.com/luccarhaddad/cminus/funcaddr"
	"github.com/luccarhaddad/cminus/types"
)

// -- AST construction helpers, mirroring package analyzer's test helpers --

func fn(name string, ret *types.TypeInfo, params, body *ast.Node) *ast.Node {
	n := ast.New(ast.Function, 1)
	n.Name = name
	n.DeclType = types.NewFunction(ret)
	n.Children[0] = params
	n.Children[1] = body
	return n
}

func block(stmts *ast.Node) *ast.Node {
	n := ast.New(ast.Block, 1)
	ast.AddChild(n, stmts)
	return n
}

func variable(name string, t *types.TypeInfo) *ast.Node {
	n := ast.New(ast.Variable, 1)
	n.Name = name
	n.DeclType = t
	return n
}

func param(name string, t *types.TypeInfo) *ast.Node {
	n := ast.New(ast.Param, 1)
	n.Name = name
	n.DeclType = t
	return n
}

func ident(name string) *ast.Node {
	n := ast.New(ast.Identifier, 1)
	n.Name = name
	return n
}

func indexed(name string, index *ast.Node) *ast.Node {
	n := ident(name)
	n.Children[0] = index
	return n
}

func constant(v int) *ast.Node {
	n := ast.New(ast.Constant, 1)
	n.Value = v
	return n
}

func assign(lhs, rhs *ast.Node) *ast.Node {
	n := ast.New(ast.Assign, 1)
	ast.AddChild(n, lhs)
	ast.AddChild(n, rhs)
	return n
}

func binOp(op ast.Op, l, r *ast.Node) *ast.Node {
	n := ast.New(ast.Operator, 1)
	n.Operator = op
	ast.AddChild(n, l)
	ast.AddChild(n, r)
	return n
}

func call(name string, args *ast.Node) *ast.Node {
	n := ast.New(ast.Call, 1)
	n.Name = name
	n.Children[0] = args
	return n
}

func ret(value *ast.Node) *ast.Node {
	n := ast.New(ast.Return, 1)
	n.Children[0] = value
	return n
}

func analyse(t *testing.T, root *ast.Node) {
	t.Helper()
	sink := diag.NewRecordingSink()
	analyzer.New().Analyze(root, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected analysis errors: %+v", sink.Errors())
	}
}

// -- a minimal TM interpreter, exercising exactly the instructions
// codegen emits, to turn the end-to-end scenarios into runnable checks
// rather than pure instruction-shape assertions --

const (
	testMaxAddress = 100
	testMemSize    = 400
	testStepBudget = 2000
)

func run(buf *emitter.Buffer) []int {
	instrs := buf.Instructions()
	mem := make([]int, testMemSize)
	mem[0] = testMaxAddress
	var reg [8]int
	var outputs []int

	for step := 0; step < testStepBudget; step++ {
		pc := reg[emitter.PC]
		if pc < 0 || pc >= len(instrs) {
			break
		}
		reg[emitter.PC] = pc + 1
		instr := instrs[pc]

		switch instr.Kind {
		case emitter.KindReserved:
			continue
		case emitter.KindRO:
			switch instr.Op {
			case "ADD":
				reg[instr.Target] = reg[instr.Arg1] + reg[instr.Arg2]
			case "SUB":
				reg[instr.Target] = reg[instr.Arg1] - reg[instr.Arg2]
			case "MUL":
				reg[instr.Target] = reg[instr.Arg1] * reg[instr.Arg2]
			case "DIV":
				reg[instr.Target] = reg[instr.Arg1] / reg[instr.Arg2]
			case "OUT":
				outputs = append(outputs, reg[instr.Target])
			case "IN":
				reg[instr.Target] = 0
			case "HALT":
				return outputs
			}
		case emitter.KindRM:
			base := reg[instr.Arg2]
			addr := base + instr.Arg1
			switch instr.Op {
			case "LD":
				if addr < 0 || addr >= testMemSize {
					return outputs
				}
				reg[instr.Target] = mem[addr]
			case "ST":
				if addr < 0 || addr >= testMemSize {
					return outputs
				}
				mem[addr] = reg[instr.Target]
			case "LDA":
				reg[instr.Target] = addr
			case "LDC":
				reg[instr.Target] = instr.Arg1
			case "JLT":
				if reg[instr.Target] < 0 {
					reg[emitter.PC] = addr
				}
			case "JGT":
				if reg[instr.Target] > 0 {
					reg[emitter.PC] = addr
				}
			case "JLE":
				if reg[instr.Target] <= 0 {
					reg[emitter.PC] = addr
				}
			case "JGE":
				if reg[instr.Target] >= 0 {
					reg[emitter.PC] = addr
				}
			case "JEQ":
				if reg[instr.Target] == 0 {
					reg[emitter.PC] = addr
				}
			case "JNE":
				if reg[instr.Target] != 0 {
					reg[emitter.PC] = addr
				}
			}
		}
	}
	return outputs
}

// Scenario 1: void main(void){}
func TestEmptyVoidMainShape(t *testing.T) {
	main := fn("main", types.New(types.Void), nil, block(nil))
	analyse(t, main)

	buf, funcs := codegen.Generate(main)
	instrs := buf.Instructions()

	if instrs[0].Op != "LD" || instrs[1].Op != "LD" || instrs[2].Op != "ST" {
		t.Fatalf("expected 3-instruction prelude, got %+v", instrs[:3])
	}
	if instrs[3].Op != "LDA" || instrs[3].Target != emitter.PC {
		t.Fatalf("expected jump-to-main at slot 3, got %+v", instrs[3])
	}
	mainAddr := funcs.Lookup("main")
	if mainAddr != 4 {
		t.Fatalf("got main entry %d, want 4 (immediately after the reserved slot)", mainAddr)
	}
	if instrs[len(instrs)-1].Op != "HALT" {
		t.Fatalf("expected final instruction to be HALT, got %+v", instrs[len(instrs)-1])
	}
}

// Scenario 2: int main(void){ int x; x = 3 + 4; output(x); return 0; }
func TestArithmeticAndOutput(t *testing.T) {
	x := variable("x", types.New(types.Int))
	assignX := assign(ident("x"), binOp(ast.OpPlus, constant(3), constant(4)))
	outputX := call("output", ident("x"))
	returnZero := ret(constant(0))
	ast.AddSibling(x, assignX)
	ast.AddSibling(assignX, outputX)
	ast.AddSibling(outputX, returnZero)

	main := fn("main", types.New(types.Int), nil, block(x))
	analyse(t, main)

	buf, _ := codegen.Generate(main)
	outputs := run(buf)
	if len(outputs) == 0 || outputs[0] != 7 {
		t.Fatalf("got outputs %v, want first value 7", outputs)
	}
}

// Scenario 3: int f(int a){ return a * 2; } void main(void){ output(f(5)); }
func TestFunctionCallReturnValue(t *testing.T) {
	f := fn("f", types.New(types.Int), param("a", types.New(types.Int)),
		block(ret(binOp(ast.OpTimes, ident("a"), constant(2)))))
	outputCall := call("output", call("f", constant(5)))
	main := fn("main", types.New(types.Void), nil, block(outputCall))
	ast.AddSibling(f, main)
	analyse(t, f)

	buf, funcs := codegen.Generate(f)
	if funcs.Lookup("f") == funcaddr.Miss || funcs.Lookup("main") == funcaddr.Miss {
		t.Fatalf("expected both f and main registered in the address map")
	}

	outputs := run(buf)
	if len(outputs) == 0 || outputs[0] != 10 {
		t.Fatalf("got outputs %v, want first value 10", outputs)
	}
}

// Scenario 4: void main(void){ int a[3]; a[0]=1; a[2]=a[0]+4; output(a[2]); }
func TestArrayElementAccess(t *testing.T) {
	a := variable("a", types.NewArray(types.Int, 3))
	assign1 := assign(indexed("a", constant(0)), constant(1))
	assign2 := assign(indexed("a", constant(2)), binOp(ast.OpPlus, indexed("a", constant(0)), constant(4)))
	outputCall := call("output", indexed("a", constant(2)))
	ast.AddSibling(a, assign1)
	ast.AddSibling(assign1, assign2)
	ast.AddSibling(assign2, outputCall)

	main := fn("main", types.New(types.Void), nil, block(a))
	analyse(t, main)

	buf, _ := codegen.Generate(main)
	outputs := run(buf)
	if len(outputs) == 0 || outputs[0] != 5 {
		t.Fatalf("got outputs %v, want first value 5", outputs)
	}
}

func funcAddrMiss() int { return 1024 }
