package decompiler

import (
	"github.com/cpunch-go/luadecompy/internal/bytecode"
)

// handleForPrep opens a numeric for-loop scope (spec.md §4.5
// "Numeric for"): `for <local> = R[A], R[A+1], R[A+2] do`, binding
// register A+3 to the loop variable.
func (d *Decompiler) handleForPrep(inst bytecode.Instruction) (int, error) {
	start := d.registerText(inst.A)
	limit := d.registerText(inst.A + 1)
	step := d.registerText(inst.A + 2)

	loopVar, ok := d.locals[inst.A+3]
	if !ok {
		loopVar = generatedName(inst.A + 3)
		d.locals[inst.A+3] = loopVar
	}
	d.top[inst.A+3] = loopVar
	d.written[inst.A+3] = true

	d.emit("for " + loopVar + " = " + start + ", " + limit + ", " + step + " do")
	d.openScope(scopeFor, int(inst.SBx))
	return 1, nil
}
