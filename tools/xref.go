package tools

import (
	"fmt"
	"sort"

	"github.com/cpunch-go/luadecompy/internal/bitops"
	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

// ReferenceType indicates how a register/constant is touched at a pc.
type ReferenceType int

const (
	RefWrite      ReferenceType = iota // instruction writes this register (A operand)
	RefRead                            // instruction reads this register (B/C operand)
	RefConstant                        // instruction reads this constant (RK or Bx)
	RefCall                            // CALL/TAILCALL/SELF uses this register as a callee
	RefUpvalue                         // GETUPVAL/SETUPVAL touches this upvalue
)

func (r ReferenceType) String() string {
	switch r {
	case RefWrite:
		return "write"
	case RefRead:
		return "read"
	case RefConstant:
		return "constant"
	case RefCall:
		return "call"
	case RefUpvalue:
		return "upvalue"
	default:
		return "unknown"
	}
}

// Reference is a single touch of a symbol at one instruction.
type Reference struct {
	Type ReferenceType
	PC   int
	Text string // the disassembled instruction text, for display
}

// SymbolKind classifies what a Symbol names.
type SymbolKind int

const (
	SymbolRegister SymbolKind = iota
	SymbolConstant
	SymbolUpvalue
)

// Symbol is a register, constant, or upvalue and every pc that
// defines or uses it, adapted from the teacher's label/symbol
// cross-referencer (tools/xref.go's Symbol/Reference shape) to this
// domain's registers and constant pool instead of ARM labels.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Index      int // register number, constant index, or upvalue index
	Definition *Reference
	References []*Reference
}

// CrossReference walks every instruction in proto and builds a
// def/use map of its registers, constants, and upvalues.
func CrossReference(proto *bytecode.Prototype) (map[string]*Symbol, error) {
	if proto == nil {
		return nil, fmt.Errorf("cross-reference: nil prototype")
	}

	symbols := make(map[string]*Symbol)

	regSymbol := func(reg uint32) *Symbol {
		name := fmt.Sprintf("R%d", reg)
		sym, ok := symbols[name]
		if !ok {
			sym = &Symbol{Name: name, Kind: SymbolRegister, Index: int(reg)}
			symbols[name] = sym
		}
		return sym
	}

	constSymbol := func(idx int) *Symbol {
		name := fmt.Sprintf("K%d", idx)
		sym, ok := symbols[name]
		if !ok {
			sym = &Symbol{Name: name, Kind: SymbolConstant, Index: idx}
			symbols[name] = sym
		}
		return sym
	}

	upvalSymbol := func(idx uint32) *Symbol {
		name := fmt.Sprintf("U%d", idx)
		if int(idx) < len(proto.UpvalueNames) && proto.UpvalueNames[idx] != "" {
			name = proto.UpvalueNames[idx]
		}
		sym, ok := symbols[name]
		if !ok {
			sym = &Symbol{Name: name, Kind: SymbolUpvalue, Index: int(idx)}
			symbols[name] = sym
		}
		return sym
	}

	recordRead := func(sym *Symbol, pc int, text string) {
		sym.References = append(sym.References, &Reference{Type: RefRead, PC: pc, Text: text})
	}
	recordWrite := func(sym *Symbol, pc int, text string) {
		ref := &Reference{Type: RefWrite, PC: pc, Text: text}
		if sym.Definition == nil {
			sym.Definition = ref
		} else {
			sym.References = append(sym.References, ref)
		}
	}
	recordRK := func(v uint32, pc int, text string) {
		if bitops.IsRKConstant(v) {
			sym := constSymbol(int(bitops.RKToConstantIndex(v)))
			sym.References = append(sym.References, &Reference{Type: RefConstant, PC: pc, Text: text})
		} else {
			recordRead(regSymbol(v), pc, text)
		}
	}

	for pc, inst := range proto.Instructions {
		text := inst.String()

		switch inst.Op {
		case opcode.OpSetUpval:
			// SETUPVAL A B: upvalue[B] = R[A] - A is read, not written.
			recordRead(regSymbol(inst.A), pc, text)
			upvalSymbol(inst.B).References = append(upvalSymbol(inst.B).References, &Reference{Type: RefUpvalue, PC: pc, Text: text})
			continue
		case opcode.OpGetUpval:
			recordWrite(regSymbol(inst.A), pc, text)
			upvalSymbol(inst.B).References = append(upvalSymbol(inst.B).References, &Reference{Type: RefUpvalue, PC: pc, Text: text})
			continue
		case opcode.OpLoadK:
			recordWrite(regSymbol(inst.A), pc, text)
			if int(inst.Bx) < len(proto.Constants) {
				sym := constSymbol(int(inst.Bx))
				sym.References = append(sym.References, &Reference{Type: RefConstant, PC: pc, Text: text})
			}
			continue
		}

		if aOperandIsRead(inst.Op) {
			recordRead(regSymbol(inst.A), pc, text)
		} else {
			recordWrite(regSymbol(inst.A), pc, text)
		}
		if inst.Op.Mode() == opcode.ABC && !bAndCAreCounts(inst.Op) {
			if inst.Op.IsRKOperandB() {
				recordRK(inst.B, pc, text)
			} else {
				recordRead(regSymbol(inst.B), pc, text)
			}
			if inst.Op.IsRKOperandC() {
				recordRK(inst.C, pc, text)
			} else {
				recordRead(regSymbol(inst.C), pc, text)
			}
		}
	}

	return symbols, nil
}

// aOperandIsRead reports whether op's A operand names a register it
// reads (its base for a multi-value operation) rather than writes:
// RETURN/CALL/TAILCALL return or invoke starting at R[A]; TFORLOOP's
// A is the iterator triple's base.
func aOperandIsRead(op opcode.Op) bool {
	switch op {
	case opcode.OpReturn, opcode.OpCall, opcode.OpTailCall, opcode.OpTForLoop, opcode.OpSetList:
		return true
	default:
		return false
	}
}

// bAndCAreCounts reports whether op's B/C fields hold counts or flags
// rather than register/RK operands (CALL's argument/result counts,
// RETURN's value count, NEWTABLE's size hints, LOADBOOL's value/skip
// flags, VARARG's result count, SETLIST's batch fields) - cross-
// referencing these as registers would produce meaningless entries.
func bAndCAreCounts(op opcode.Op) bool {
	switch op {
	case opcode.OpCall, opcode.OpTailCall, opcode.OpReturn, opcode.OpNewTable,
		opcode.OpLoadBool, opcode.OpVararg, opcode.OpSetList, opcode.OpLoadNil:
		return true
	default:
		return false
	}
}

// SortedNames returns the symbol names in symbols, sorted by kind
// then index, for deterministic reporting.
func SortedNames(symbols map[string]*Symbol) []string {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := symbols[names[i]], symbols[names[j]]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Index < b.Index
	})
	return names
}
