package decompiler

import (
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
)

// handleCall renders a CALL as `r_A(args...)`, optionally prefixed
// with the locals its results bind to (spec.md §4.5 "Calls").
func (d *Decompiler) handleCall(inst bytecode.Instruction) (int, error) {
	fn := d.registerText(inst.A)

	args := make([]string, 0)
	if inst.B > 1 {
		for r := inst.A + 1; r < inst.A+inst.B; r++ {
			args = append(args, d.registerText(r))
		}
	}
	call := fn + "(" + strings.Join(args, ", ") + ")"

	if inst.C > 1 {
		ids := make([]string, 0, inst.C-1)
		for i := uint32(0); i < inst.C-1; i++ {
			reg := inst.A + i
			name, ok := d.locals[reg]
			if !ok {
				name = generatedName(reg)
				d.locals[reg] = name
			}
			d.top[reg] = name
			d.written[reg] = true
			ids = append(ids, name)
		}
		d.emit("local " + strings.Join(ids, ", ") + " = " + call)
		return 1, nil
	}

	d.top[inst.A] = call
	d.emit(call)
	return 1, nil
}
