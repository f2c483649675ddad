package bytecode

import "testing"

func TestPrototypeHasDebugInfo(t *testing.T) {
	bare := &Prototype{}
	if bare.HasDebugInfo() {
		t.Errorf("bare prototype should report no debug info")
	}

	withLines := &Prototype{LineInfo: []int{1, 1, 2}}
	if !withLines.HasDebugInfo() {
		t.Errorf("prototype with line info should report debug info present")
	}
}

func TestPrototypeLineForPC(t *testing.T) {
	p := &Prototype{LineInfo: []int{10, 11, 11}}
	if got := p.LineForPC(1); got != 11 {
		t.Errorf("LineForPC(1) = %d, want 11", got)
	}
	if got := p.LineForPC(5); got != 0 {
		t.Errorf("LineForPC(5) = %d, want 0", got)
	}
}

func TestPrototypeLocalsLiveAt(t *testing.T) {
	p := &Prototype{
		Locals: []Local{
			{Name: "a", StartPC: 0, EndPC: 3},
			{Name: "b", StartPC: 2, EndPC: 5},
		},
	}
	live := p.LocalsLiveAt(2)
	if len(live) != 2 {
		t.Fatalf("LocalsLiveAt(2) returned %d locals, want 2", len(live))
	}
	live = p.LocalsLiveAt(4)
	if len(live) != 1 || live[0].Name != "b" {
		t.Fatalf("LocalsLiveAt(4) = %+v, want only b", live)
	}
}
