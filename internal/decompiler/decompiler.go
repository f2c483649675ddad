// Package decompiler reconstructs Lua-like pseudo-source from a
// decoded bytecode.Prototype by walking its instruction stream and
// treating the register file as a map from index to expression text
// rather than to a runtime value (spec.md §4.5, §9 "Expression
// materialization vs. statement emission").
package decompiler

import (
	"fmt"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

// Decompiler holds the per-prototype state of one decompilation pass.
// Recursion into a child prototype (at CLOSURE) creates a new,
// independent Decompiler instance (spec.md §5).
type Decompiler struct {
	proto *bytecode.Prototype
	opts  Options

	// scopeOffset is the enclosing scope depth this instance's output
	// is nested under, for indentation when a closure's rendered text
	// is spliced into its parent's.
	scopeOffset int

	pc          int
	lastFlushPC int

	top     map[uint32]string // register -> current expression text
	locals  map[uint32]string // register -> bound identifier
	written map[uint32]bool   // register -> has been assigned at least once

	scopes []scope
	lines  []line
}

// New constructs a Decompiler for proto. scopeOffset is the depth the
// rendered output should be indented under when spliced into an
// enclosing prototype's text (0 for a top-level call).
func New(proto *bytecode.Prototype, opts Options, scopeOffset int) *Decompiler {
	d := &Decompiler{
		proto:       proto,
		opts:        opts,
		scopeOffset: scopeOffset,
		lastFlushPC: -1,
		top:         make(map[uint32]string),
		locals:      make(map[uint32]string),
		written:     make(map[uint32]bool),
	}
	d.bindDebugLocals()
	return d
}

// bindDebugLocals implements the identifier policy (spec.md §4.5):
// walk the debug-info locals in order, binding each to the register
// it occupies (registers are allocated in declaration order, so the
// Nth local entry occupies register N for prototypes compiled with
// unstripped debug info). Compiler-generated loop scaffolding names
// ("(for ...") and invalid identifiers are skipped.
func (d *Decompiler) bindDebugLocals() {
	for i, loc := range d.proto.Locals {
		if isCompilerScaffoldName(loc.Name) || !isValidIdentifier(loc.Name) {
			continue
		}
		d.locals[uint32(i)] = loc.Name
	}
}

// instr returns the instruction at index i.
func (d *Decompiler) instr(i int) bytecode.Instruction {
	return d.proto.Instructions[i]
}

// Decompile runs the full pass and returns the rendered pseudo-source.
// On error, no partial output is returned (spec.md §7 "no partial
// output is emitted on failure").
func (d *Decompiler) Decompile() (string, error) {
	n := len(d.proto.Instructions)
	for d.pc < n {
		consumed, err := d.dispatch()
		if err != nil {
			return "", err
		}
		if consumed < 1 {
			consumed = 1
		}
		d.pc += consumed
		d.closeScopes()
	}
	return d.render(), nil
}

// dispatch processes the instruction at the current pc and returns
// how many instructions it consumed (2 for a fused test+JMP pair, the
// whole NEWTABLE/LOADK/SETLIST run for a fused table literal, 1
// otherwise).
func (d *Decompiler) dispatch() (int, error) {
	inst := d.instr(d.pc)

	switch inst.Op {
	case opcode.OpMove:
		d.assign(inst.A, d.registerText(inst.B))
		return 1, nil

	case opcode.OpLoadK:
		if int(inst.Bx) >= len(d.proto.Constants) {
			return 0, lerrors.NewMalformedImage(d.pc, "LOADK constant index out of range")
		}
		d.assign(inst.A, d.proto.Constants[inst.Bx].Render())
		return 1, nil

	case opcode.OpLoadBool:
		if inst.C != 0 {
			// The skip-next-instruction form (C != 0) is not
			// reconstructed in the covered subset (spec.md §4.5).
			return 0, lerrors.NewUnsupportedOpcode(d.pc, "LOADBOOL")
		}
		if inst.B != 0 {
			d.assign(inst.A, "true")
		} else {
			d.assign(inst.A, "false")
		}
		return 1, nil

	case opcode.OpLoadNil:
		for r := inst.A; r <= inst.B; r++ {
			d.assign(r, "nil")
		}
		return 1, nil

	case opcode.OpGetGlobal:
		if int(inst.Bx) >= len(d.proto.Constants) {
			return 0, lerrors.NewMalformedImage(d.pc, "GETGLOBAL constant index out of range")
		}
		d.assign(inst.A, d.proto.Constants[inst.Bx].Str)
		return 1, nil

	case opcode.OpSetGlobal:
		if int(inst.Bx) >= len(d.proto.Constants) {
			return 0, lerrors.NewMalformedImage(d.pc, "SETGLOBAL constant index out of range")
		}
		name := d.proto.Constants[inst.Bx].Str
		d.emit(name + " = " + d.registerText(inst.A))
		return 1, nil

	case opcode.OpGetTable:
		expr := fmt.Sprintf("%s[%s]", d.registerText(inst.B), d.readRK(inst.C))
		d.fold(inst.A, expr)
		return 1, nil

	case opcode.OpSetTable:
		d.emit(fmt.Sprintf("%s[%s] = %s", d.registerText(inst.A), d.readRK(inst.B), d.readRK(inst.C)))
		return 1, nil

	case opcode.OpNewTable:
		return d.handleNewTable(inst)

	case opcode.OpAdd:
		d.fold(inst.A, "("+d.readRK(inst.B)+" + "+d.readRK(inst.C)+")")
		return 1, nil
	case opcode.OpSub:
		d.fold(inst.A, "("+d.readRK(inst.B)+" - "+d.readRK(inst.C)+")")
		return 1, nil
	case opcode.OpMul:
		d.fold(inst.A, "("+d.readRK(inst.B)+" * "+d.readRK(inst.C)+")")
		return 1, nil
	case opcode.OpDiv:
		d.fold(inst.A, "("+d.readRK(inst.B)+" / "+d.readRK(inst.C)+")")
		return 1, nil
	case opcode.OpMod:
		d.fold(inst.A, "("+d.readRK(inst.B)+" % "+d.readRK(inst.C)+")")
		return 1, nil
	case opcode.OpPow:
		d.fold(inst.A, "("+d.readRK(inst.B)+" ^ "+d.readRK(inst.C)+")")
		return 1, nil

	case opcode.OpUnm:
		d.fold(inst.A, "-"+d.registerText(inst.B))
		return 1, nil
	case opcode.OpNot:
		// REDESIGN: always render "not", never "!" (spec.md §9).
		d.fold(inst.A, "not "+d.registerText(inst.B))
		return 1, nil
	case opcode.OpLen:
		// REDESIGN: index the operand register, not the instruction
		// stream (spec.md §9 corrected LEN contract).
		d.fold(inst.A, "#"+d.registerText(inst.B))
		return 1, nil
	case opcode.OpConcat:
		parts := make([]string, 0, inst.C-inst.B+1)
		for r := inst.B; r <= inst.C; r++ {
			parts = append(parts, d.registerText(r))
		}
		d.fold(inst.A, strings.Join(parts, " .. "))
		return 1, nil

	case opcode.OpJmp:
		// A standalone JMP (e.g. a while-loop's back edge) carries no
		// textual content of its own; the scope it belongs to was
		// already opened when its matching test was processed.
		return 1, nil

	case opcode.OpEq, opcode.OpLt, opcode.OpLe, opcode.OpTest:
		return d.handleTestJump()

	case opcode.OpCall:
		return d.handleCall(inst)

	case opcode.OpReturn:
		// Payloads are not rendered in the covered subset (spec.md
		// §4.5, §9: a documented gap).
		d.emit("return")
		return 1, nil

	case opcode.OpForPrep:
		return d.handleForPrep(inst)

	case opcode.OpForLoop:
		// Elided: the loop's textual shape was already produced by
		// FORPREP/scope-closing (spec.md §4.5 "FORLOOP is elided").
		return 1, nil

	case opcode.OpSetList:
		return d.handleSetList(inst)

	case opcode.OpClosure:
		return d.handleClosure(inst)

	case opcode.OpGetUpval, opcode.OpSetUpval, opcode.OpSelf,
		opcode.OpTailCall, opcode.OpTForLoop, opcode.OpVararg,
		opcode.OpClose, opcode.OpTestSet:
		return 0, lerrors.NewUnsupportedOpcode(d.pc, inst.Op.Name())

	default:
		return 0, lerrors.NewUnsupportedOpcode(d.pc, inst.Op.Name())
	}
}
