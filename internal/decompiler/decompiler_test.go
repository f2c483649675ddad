package decompiler

import (
	"regexp"
	"strings"
	"testing"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

func decompile(t *testing.T, p *bytecode.Prototype, opts Options) string {
	t.Helper()
	out, err := New(p, opts, 0).Decompile()
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	return out
}

// a = 1 + 2
func TestArithmeticFolding(t *testing.T) {
	p := &bytecode.Prototype{
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(1),
			bytecode.NumberConstant(2),
			bytecode.StringConstant("a"),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpLoadK, A: 1, Bx: 1},
			{Op: opcode.OpAdd, A: 2, B: 0, C: 1},
			{Op: opcode.OpSetGlobal, A: 2, Bx: 2},
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	if !strings.Contains(got, "a = (1 + 2)") {
		t.Errorf("got:\n%s\nwant a line containing `a = (1 + 2)`", got)
	}
}

// for i = 1, 10 do print(i) end, with no debug info on the loop var.
func TestNumericForLoop(t *testing.T) {
	p := &bytecode.Prototype{
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(1),
			bytecode.NumberConstant(10),
			bytecode.NumberConstant(1),
			bytecode.StringConstant("print"),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpLoadK, A: 1, Bx: 1},
			{Op: opcode.OpLoadK, A: 2, Bx: 2},
			{Op: opcode.OpForPrep, A: 0, SBx: 5},
			{Op: opcode.OpGetGlobal, A: 4, Bx: 3},
			{Op: opcode.OpMove, A: 5, B: 3},
			{Op: opcode.OpCall, A: 4, B: 2, C: 1},
			{Op: opcode.OpForLoop, A: 0, SBx: -5},
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	if !strings.Contains(got, "for __unknLocal3 = 1, 10, 1 do") {
		t.Errorf("got:\n%s\nwant a `for __unknLocal3 = 1, 10, 1 do` line", got)
	}
	if !strings.Contains(got, "print(__unknLocal3)") {
		t.Errorf("got:\n%s\nwant a `print(__unknLocal3)` call", got)
	}
	if !strings.Contains(got, "end") {
		t.Errorf("got:\n%s\nwant a closing `end`", got)
	}
}

// local t = {1, 2, 3}
func TestTableLiteralFusion(t *testing.T) {
	p := &bytecode.Prototype{
		Locals: []bytecode.Local{{Name: "t", StartPC: 0, EndPC: 5}},
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(1),
			bytecode.NumberConstant(2),
			bytecode.NumberConstant(3),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpNewTable, A: 0},
			{Op: opcode.OpLoadK, A: 1, Bx: 0},
			{Op: opcode.OpLoadK, A: 2, Bx: 1},
			{Op: opcode.OpLoadK, A: 3, Bx: 2},
			{Op: opcode.OpSetList, A: 0, B: 3, C: 1},
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	if !strings.Contains(got, "local t = {1, 2, 3, }") {
		t.Errorf("got:\n%s\nwant `local t = {1, 2, 3, }`", got)
	}
}

// if x == y then z = 1 end
func TestIfThenReconstruction(t *testing.T) {
	p := &bytecode.Prototype{
		Locals: []bytecode.Local{
			{Name: "x", StartPC: 0, EndPC: 10},
			{Name: "y", StartPC: 0, EndPC: 10},
		},
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(1),
			bytecode.StringConstant("z"),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpEq, A: 1, B: 0, C: 1}, // not (x == y)
			{Op: opcode.OpJmp, SBx: 3},
			{Op: opcode.OpLoadK, A: 2, Bx: 0},
			{Op: opcode.OpSetGlobal, A: 2, Bx: 1},
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	if !strings.Contains(got, "if not (x == y) then") {
		t.Errorf("got:\n%s\nwant an `if not (x == y) then` line", got)
	}
	if !strings.Contains(got, "z = 1") {
		t.Errorf("got:\n%s\nwant `z = 1`", got)
	}
}

// Scope balance property: equal openers and closers, non-negative depth.
func TestScopeBalance(t *testing.T) {
	p := &bytecode.Prototype{
		Locals: []bytecode.Local{{Name: "x", StartPC: 0, EndPC: 10}},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpTest, A: 0, C: 0},
			{Op: opcode.OpJmp, SBx: 2},
			{Op: opcode.OpMove, A: 1, B: 0},
			{Op: opcode.OpReturn},
		},
	}
	d := New(p, DefaultOptions(), 0)
	out, err := d.Decompile()
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	openers := strings.Count(out, "then") + strings.Count(out, "repeat") + strings.Count(out, "function(")
	// "do" also opens while/for scopes; count separately to avoid
	// double counting "then"/"do" overlaps (none here).
	closers := strings.Count(out, "end")
	if openers == 0 {
		t.Fatalf("expected at least one opener in:\n%s", out)
	}
	if closers != openers {
		t.Errorf("unbalanced scopes: %d openers, %d closers in:\n%s", openers, closers, out)
	}
	if len(d.scopes) != 0 {
		t.Errorf("scopes left open after Decompile: %v", d.scopes)
	}
}

func TestUnsupportedOpcodeErrors(t *testing.T) {
	p := &bytecode.Prototype{
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpVararg, A: 0, B: 1},
		},
	}
	_, err := New(p, DefaultOptions(), 0).Decompile()
	if err == nil {
		t.Fatal("expected UnsupportedOpcode error for VARARG")
	}
}

// local x = 10 while x > 0 do x = x - 1 end
func TestWhileLoopReconstruction(t *testing.T) {
	p := &bytecode.Prototype{
		Locals: []bytecode.Local{{Name: "x", StartPC: 0, EndPC: 6}},
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(10),
			bytecode.NumberConstant(0),
			bytecode.NumberConstant(1),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},               // local x = 10
			{Op: opcode.OpLt, A: 0, B: 256 | 1, C: 0},        // 0 < x
			{Op: opcode.OpJmp, SBx: 2},                       // jmp=3, falls through to return
			{Op: opcode.OpSub, A: 0, B: 0, C: 256 | 2},       // x = x - 1
			{Op: opcode.OpJmp, SBx: -4},                      // back edge to the test
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	if !strings.Contains(got, "local x = 10") {
		t.Errorf("got:\n%s\nwant `local x = 10`", got)
	}
	if !strings.Contains(got, "while 0 < x do") {
		t.Errorf("got:\n%s\nwant `while 0 < x do`", got)
	}
	if !strings.Contains(got, "x = (x - 1)") {
		t.Errorf("got:\n%s\nwant `x = (x - 1)`", got)
	}
	if !strings.Contains(got, "end") {
		t.Errorf("got:\n%s\nwant closing `end`", got)
	}
}

// repeat x = x - 1 until x <= 0
func TestRepeatUntilReconstruction(t *testing.T) {
	p := &bytecode.Prototype{
		Locals: []bytecode.Local{{Name: "x", StartPC: 0, EndPC: 5}},
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(10),
			bytecode.NumberConstant(1),
			bytecode.NumberConstant(0),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},         // local x = 10
			{Op: opcode.OpSub, A: 0, B: 0, C: 256 | 1}, // x = x - 1
			{Op: opcode.OpLe, A: 0, B: 0, C: 256 | 2},  // x <= 0
			{Op: opcode.OpJmp, SBx: -2},                // back to the SUB
			{Op: opcode.OpReturn},
		},
	}
	got := decompile(t, p, DefaultOptions())
	lines := strings.Split(got, "\n")
	wantOrder := []string{"local x = 10", "repeat", "x = (x - 1)", "until x <= 0", "return"}
	if len(lines) != len(wantOrder) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(wantOrder), got)
	}
	for i, want := range wantOrder {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want to contain %q", i, lines[i], want)
		}
	}
}

// a = 1 + 2, with AnnotateLines on: the "-- PC: s to e" comment must
// be appended after the statement text on the same line, right-padded
// to align, not prepended on a line of its own.
func TestAnnotateLinesFormat(t *testing.T) {
	p := &bytecode.Prototype{
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(1),
			bytecode.NumberConstant(2),
			bytecode.StringConstant("a"),
		},
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpLoadK, A: 1, Bx: 1},
			{Op: opcode.OpAdd, A: 2, B: 0, C: 1},
			{Op: opcode.OpSetGlobal, A: 2, Bx: 2},
			{Op: opcode.OpReturn},
		},
	}

	opts := DefaultOptions()
	opts.AnnotateLines = true
	got := decompile(t, p, opts)

	annotation := regexp.MustCompile(`^(\S.*\S|\S)( +)-- PC: (\d+) to (\d+)$`)
	found := false
	for _, ln := range strings.Split(got, "\n") {
		if ln == "" {
			continue
		}
		m := annotation.FindStringSubmatch(ln)
		if m == nil {
			t.Errorf("line %q does not match `<text>  -- PC: s to e`", ln)
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(ln), "-- PC:") {
			t.Errorf("line %q has the comment before the statement text, want it appended after", ln)
		}
		if strings.Contains(m[1], "a = (1 + 2)") {
			found = true
		}
	}
	if !found {
		t.Errorf("got:\n%s\nwant an annotated line containing `a = (1 + 2)`", got)
	}
}

func TestGeneratedIdentifiersAreValid(t *testing.T) {
	for _, reg := range []uint32{0, 1, 3, 255} {
		name := generatedName(reg)
		if !isValidIdentifier(name) {
			t.Errorf("generatedName(%d) = %q is not a valid identifier", reg, name)
		}
	}
}
