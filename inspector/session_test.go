package inspector

import (
	"strings"
	"testing"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

func testProto() *bytecode.Prototype {
	child := &bytecode.Prototype{
		FirstLine: 5,
		LastLine:  7,
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpReturn},
		},
	}
	return &bytecode.Prototype{
		FirstLine: 1,
		LastLine:  10,
		Constants: []bytecode.Constant{bytecode.StringConstant("hi")},
		Locals:    []bytecode.Local{{Name: "x", StartPC: 0, EndPC: 2}},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpReturn},
		},
		Protos: []*bytecode.Prototype{child},
	}
}

func TestSessionNavigation(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())

	if s.PathString() != "root" {
		t.Fatalf("expected root path, got %q", s.PathString())
	}

	if err := s.ExecuteCommand("goto 0"); err != nil {
		t.Fatalf("goto 0: %v", err)
	}
	if s.PathString() != "0" {
		t.Fatalf("expected path '0', got %q", s.PathString())
	}

	sel, err := s.Selected()
	if err != nil {
		t.Fatalf("Selected: %v", err)
	}
	if sel.FirstLine != 5 {
		t.Errorf("expected child prototype, got FirstLine=%d", sel.FirstLine)
	}

	if err := s.ExecuteCommand("up"); err != nil {
		t.Fatalf("up: %v", err)
	}
	if s.PathString() != "root" {
		t.Fatalf("expected back at root, got %q", s.PathString())
	}
}

func TestSessionGotoOutOfRange(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())
	if err := s.ExecuteCommand("goto 5"); err == nil {
		t.Fatal("expected error for out-of-range prototype index")
	}
}

func TestSessionUpAtRootErrors(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())
	if err := s.ExecuteCommand("up"); err == nil {
		t.Fatal("expected error going up from root")
	}
}

func TestSessionDisasmAndConsts(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())

	if err := s.ExecuteCommand("disasm"); err != nil {
		t.Fatalf("disasm: %v", err)
	}
	out := s.GetOutput()
	if !strings.Contains(out, "LOADK") {
		t.Errorf("disasm output missing LOADK: %q", out)
	}

	if err := s.ExecuteCommand("consts"); err != nil {
		t.Fatalf("consts: %v", err)
	}
	out = s.GetOutput()
	if !strings.Contains(out, "hi") {
		t.Errorf("consts output missing constant: %q", out)
	}
}

func TestSessionSetOption(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())
	if err := s.ExecuteCommand("set indent-width 2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Options.IndentWidth != 2 {
		t.Errorf("expected IndentWidth=2, got %d", s.Options.IndentWidth)
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	s := NewSession(testProto(), decompiler.DefaultOptions())
	if err := s.ExecuteCommand("frobnicate"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
