package decompiler

import (
	"fmt"

	"github.com/cpunch-go/luadecompy/internal/bitops"
)

// generatedName produces the fallback identifier for a register with
// no debug-info name: "__unknLocalN" where N is the register index
// (spec.md §8 end-to-end scenario: "for __unknLocal3 = 1, 10, 1 do
// ...").
func generatedName(reg uint32) string {
	return fmt.Sprintf("__unknLocal%d", reg)
}

// registerText returns the expression currently materialized at a
// register, binding it to a name lazily on first read if none exists
// yet (spec.md §4.5 identifier policy: "all other registers receive
// generated names lazily on first use").
func (d *Decompiler) registerText(r uint32) string {
	if e, ok := d.top[r]; ok {
		return e
	}
	name, ok := d.locals[r]
	if !ok {
		name = generatedName(r)
		d.locals[r] = name
	}
	d.top[r] = name
	return name
}

// readRK resolves a 9-bit RK operand to its text form: a constant's
// rendered code if the RK flag is set, else the register's current
// expression (spec.md §4.5 "RK resolution").
func (d *Decompiler) readRK(v uint32) string {
	if bitops.IsRKConstant(v) {
		idx := bitops.RKToConstantIndex(v)
		if int(idx) < len(d.proto.Constants) {
			return d.proto.Constants[idx].Render()
		}
		return "nil"
	}
	return d.registerText(v)
}

// fold stores an expression at a register without emitting a
// statement (spec.md §4.5 "expression folding": arithmetic,
// comparison-as-value, UNM/NOT/LEN, CONCAT, table index). The one
// exception is a register already bound to a named local: the Lua
// compiler reuses a local's own register directly for expressions
// like `x = x - 1` (no intervening MOVE), so overwriting a named
// local's register is always an observable assignment, not a silent
// temporary.
func (d *Decompiler) fold(reg uint32, expr string) {
	if _, hasLocal := d.locals[reg]; hasLocal {
		d.assign(reg, expr)
		return
	}
	d.top[reg] = expr
}

// assign applies the register write policy (spec.md §4.5 "register
// write policy") for an observable write to reg with expression expr,
// emitting a statement when the register is (or becomes) a named
// local.
func (d *Decompiler) assign(reg uint32, expr string) {
	name, hasLocal := d.locals[reg]

	switch {
	case hasLocal && !d.written[reg]:
		d.emit("local " + name + " = " + expr)
		d.written[reg] = true
	case hasLocal:
		d.emit(name + " = " + expr)
	case d.opts.AggressiveLocals:
		name = generatedName(reg)
		d.locals[reg] = name
		d.emit("local " + name + " = " + expr)
		d.written[reg] = true
	}

	if _, bound := d.locals[reg]; bound {
		d.top[reg] = name
	} else {
		d.top[reg] = expr
	}
	d.written[reg] = true
}
