package decompiler

import (
	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

// condition builds the textual condition for the test opcode at the
// current pc (spec.md §4.5 "control-flow reconstruction", "TEST A _
// C"). EQ/LT/LE encode their sense in A (VM jumps when the comparison
// result does not match A); TEST encodes its sense in C and tests the
// truthiness of R[A].
func (d *Decompiler) condition(inst bytecode.Instruction) string {
	var base string
	var sense uint32

	switch inst.Op {
	case opcode.OpEq:
		base = d.readRK(inst.B) + " == " + d.readRK(inst.C)
		sense = inst.A
	case opcode.OpLt:
		base = d.readRK(inst.B) + " < " + d.readRK(inst.C)
		sense = inst.A
	case opcode.OpLe:
		base = d.readRK(inst.B) + " <= " + d.readRK(inst.C)
		sense = inst.A
	case opcode.OpTest:
		base = d.registerText(inst.A)
		sense = inst.C
	}

	if sense != 0 {
		return "not (" + base + ")"
	}
	return base
}

// handleTestJump processes a test opcode (EQ/LT/LE/TEST) paired with
// its following JMP, classifying the pair as if/while/repeat (spec.md
// §4.5 "control-flow reconstruction") and returns 2 (both
// instructions consumed).
func (d *Decompiler) handleTestJump() (int, error) {
	testInst := d.instr(d.pc)
	if d.pc+1 >= len(d.proto.Instructions) {
		return 0, lerrors.NewDecompilerInvariant(d.pc, testInst.Op.Name(), "test opcode not followed by JMP")
	}
	next := d.instr(d.pc + 1)
	if next.Op != opcode.OpJmp {
		return 0, lerrors.NewDecompilerInvariant(d.pc, testInst.Op.Name(), "test opcode not followed by JMP")
	}

	cond := d.condition(testInst)
	jmp := int(next.SBx) + 1

	if jmp < 0 {
		// repeat ... until: this test+jmp pair is the loop tail.
		headPC := d.pc + jmp
		d.insertRepeat(headPC)
		d.emit("until " + cond)
		return 2, nil
	}

	// A forward jump of jmp instructions. Determine whether the
	// target of *that* jump loops back to at or before this test
	// (while) or falls through past it (if).
	candidateIdx := d.pc + jmp
	isWhile := false
	if candidateIdx >= 0 && candidateIdx < len(d.proto.Instructions) {
		candidate := d.instr(candidateIdx)
		if candidate.Op == opcode.OpJmp {
			target := candidateIdx + 1 + int(candidate.SBx)
			if target <= d.pc+1 {
				isWhile = true
			}
		}
	}

	if isWhile {
		d.emit("while " + cond + " do")
		d.openScope(scopeWhile, jmp)
	} else {
		d.emit("if " + cond + " then")
		d.openScope(scopeIf, jmp)
	}
	return 2, nil
}
