package tools

import (
	"testing"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

func TestCrossReferenceRegisters(t *testing.T) {
	proto := &bytecode.Prototype{
		Constants: []bytecode.Constant{bytecode.NumberConstant(1), bytecode.NumberConstant(2)},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpAdd, A: 1, B: 0, C: 256 + 1},
			{Op: opcode.OpReturn, A: 1, B: 2},
		},
	}

	symbols, err := CrossReference(proto)
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}

	r0, ok := symbols["R0"]
	if !ok {
		t.Fatal("expected R0 symbol")
	}
	if r0.Definition == nil || r0.Definition.PC != 0 {
		t.Errorf("R0 definition = %v, want pc 0", r0.Definition)
	}
	if len(r0.References) != 1 || r0.References[0].PC != 1 {
		t.Errorf("R0 references = %v, want one read at pc 1", r0.References)
	}

	k0, ok := symbols["K0"]
	if !ok {
		t.Fatal("expected K0 symbol")
	}
	if len(k0.References) != 1 {
		t.Errorf("K0 references = %v, want one", k0.References)
	}

	if _, ok := symbols["R2"]; ok {
		t.Error("RETURN's count operand B should not produce a register symbol")
	}
}

func TestCrossReferenceUpvalues(t *testing.T) {
	proto := &bytecode.Prototype{
		UpvalueNames: []string{"counter"},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpGetUpval, A: 0, B: 0},
		},
	}

	symbols, err := CrossReference(proto)
	if err != nil {
		t.Fatalf("CrossReference: %v", err)
	}

	sym, ok := symbols["counter"]
	if !ok {
		t.Fatal("expected named upvalue symbol \"counter\"")
	}
	if sym.Kind != SymbolUpvalue {
		t.Errorf("Kind = %v, want SymbolUpvalue", sym.Kind)
	}
}

func TestCrossReferenceNilPrototype(t *testing.T) {
	if _, err := CrossReference(nil); err == nil {
		t.Fatal("expected error for nil prototype")
	}
}

func TestSortedNamesOrder(t *testing.T) {
	proto := &bytecode.Prototype{
		Constants: []bytecode.Constant{bytecode.NumberConstant(1), bytecode.NumberConstant(2)},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 1, Bx: 1},
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
		},
	}
	symbols, _ := CrossReference(proto)
	names := SortedNames(symbols)

	wantFirstTwo := map[string]bool{"R0": true, "R1": true}
	if !wantFirstTwo[names[0]] || !wantFirstTwo[names[1]] {
		t.Errorf("expected registers sorted before constants, got %v", names)
	}
}
