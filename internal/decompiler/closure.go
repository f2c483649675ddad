package decompiler

import (
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
)

// handleClosure recursively decompiles protos[Bx] as an independent
// Decompiler instance, treating its parameters as pre-defined locals
// at registers 0..numParams-1, and assigns the rendered
// `function(...) ... end` text to the target register (spec.md §4.5
// "Closures").
func (d *Decompiler) handleClosure(inst bytecode.Instruction) (int, error) {
	if int(inst.Bx) >= len(d.proto.Protos) {
		return 0, lerrors.NewMalformedImage(d.pc, "CLOSURE proto index out of range")
	}
	child := New(d.proto.Protos[inst.Bx], d.opts, len(d.scopes)+1)

	paramNames := make([]string, child.proto.NumParams)
	for i := 0; i < child.proto.NumParams; i++ {
		reg := uint32(i)
		name, ok := child.locals[reg]
		if !ok {
			name = generatedName(reg)
			child.locals[reg] = name
		}
		child.top[reg] = name
		child.written[reg] = true
		paramNames[i] = name
	}

	body, err := child.Decompile()
	if err != nil {
		return 0, err
	}

	text := "function(" + strings.Join(paramNames, ", ") + ")\n" + body + "\nend"
	d.assign(inst.A, text)
	return 1, nil
}
