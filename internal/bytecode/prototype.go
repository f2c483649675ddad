package bytecode

// Prototype is a single decoded Lua function: its code, its constant
// pool, and the nested prototypes created by its CLOSURE instructions.
// The top-level chunk is itself a Prototype with no enclosing function.
type Prototype struct {
	Source      string // chunk name the top-level prototype was compiled from, "" for nested ones that omit it
	FirstLine   int
	LastLine    int
	NumUpvals   int
	NumParams   int
	IsVararg    bool
	MaxStackSize int

	Instructions []Instruction
	Constants    []Constant
	Protos       []*Prototype

	// Debug info, all optional: an image stripped of debug info has
	// empty LineInfo/Locals/UpvalueNames.
	LineInfo      []int // len == len(Instructions) when present
	Locals        []Local
	UpvalueNames  []string
}

// HasDebugInfo reports whether line and local-variable information
// survived stripping.
func (p *Prototype) HasDebugInfo() bool {
	return len(p.LineInfo) > 0 || len(p.Locals) > 0
}

// LineForPC returns the source line associated with an instruction, or
// 0 if no line info is present or pc is out of range.
func (p *Prototype) LineForPC(pc int) int {
	if pc < 0 || pc >= len(p.LineInfo) {
		return 0
	}
	return p.LineInfo[pc]
}

// LocalsLiveAt returns the locals visible at the given pc, in
// registration order.
func (p *Prototype) LocalsLiveAt(pc int) []Local {
	var live []Local
	for _, l := range p.Locals {
		if l.LiveAt(pc) {
			live = append(live, l)
		}
	}
	return live
}
