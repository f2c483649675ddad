// Package bytecode holds the in-memory data model for a decoded Lua
// 5.1 function prototype: instructions, constants, locals, and the
// recursive tree of child prototypes produced by CLOSURE.
package bytecode

import (
	"fmt"

	"github.com/cpunch-go/luadecompy/internal/bitops"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

// Instruction is one decoded Lua 5.1 virtual machine instruction.
// The field set used depends on Op.Mode(): ABC uses A/B/C, ABx uses
// A/Bx, AsBx uses A/SBx.
type Instruction struct {
	Op  opcode.Op
	A   uint32
	B   uint32 // ABC mode only
	C   uint32 // ABC mode only
	Bx  uint32 // ABx mode only
	SBx int32  // AsBx mode only
}

// DecodeInstruction unpacks a 32-bit instruction word according to its
// opcode's operand layout.
//
// Field positions (spec.md §4.2, §6): opcode bits 0-5, A bits 6-13,
// then either (B bits 23-31, C bits 14-22) for ABC, or Bx bits 14-31
// for ABx, or sBx = raw(bits 14-31) - opcode.SBxBias for AsBx.
func DecodeInstruction(word uint32) (Instruction, error) {
	op := opcode.Op(bitops.GetBits(word, 0, 6))
	if !op.IsValid() {
		return Instruction{}, lerrors.NewMalformedImage(-1, fmt.Sprintf("unknown opcode index %d", op))
	}

	inst := Instruction{
		Op: op,
		A:  bitops.GetBits(word, 6, 8),
	}

	switch op.Mode() {
	case opcode.ABC:
		inst.B = bitops.GetBits(word, 23, 9)
		inst.C = bitops.GetBits(word, 14, 9)
	case opcode.ABx:
		inst.Bx = bitops.GetBits(word, 14, 18)
	case opcode.AsBx:
		inst.SBx = int32(bitops.GetBits(word, 14, 18)) - opcode.SBxBias
	}

	return inst, nil
}

// EncodeInstruction is the exact inverse of DecodeInstruction.
func EncodeInstruction(inst Instruction) (uint32, error) {
	if !inst.Op.IsValid() {
		return 0, lerrors.NewMalformedImage(-1, fmt.Sprintf("unknown opcode index %d", inst.Op))
	}

	var word uint32
	word = bitops.SetBits(word, uint32(inst.Op), 0, 6)
	word = bitops.SetBits(word, inst.A, 6, 8)

	switch inst.Op.Mode() {
	case opcode.ABC:
		word = bitops.SetBits(word, inst.B, 23, 9)
		word = bitops.SetBits(word, inst.C, 14, 9)
	case opcode.ABx:
		word = bitops.SetBits(word, inst.Bx, 14, 18)
	case opcode.AsBx:
		word = bitops.SetBits(word, uint32(inst.SBx+opcode.SBxBias), 14, 18)
	}

	return word, nil
}

// String renders the instruction similarly to a disassembler listing,
// e.g. "ADD        0 1 2" (raw operand values, opcode name padded to 10).
func (i Instruction) String() string {
	switch i.Op.Mode() {
	case opcode.ABx:
		return fmt.Sprintf("%-10s %d %d", i.Op.Name(), i.A, i.Bx)
	case opcode.AsBx:
		return fmt.Sprintf("%-10s %d %d", i.Op.Name(), i.A, i.SBx)
	default:
		return fmt.Sprintf("%-10s %d %d %d", i.Op.Name(), i.A, i.B, i.C)
	}
}
