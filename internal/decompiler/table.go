package decompiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

// tableBuilder accumulates a NEWTABLE/LOADK/SETLIST fusion in
// progress (spec.md §4.5 "table construction").
type tableBuilder struct {
	reg   uint32
	items []string
	cache map[uint32]string // register -> rendered value, pending flush
}

// handleNewTable walks forward while the run of instructions following
// NEWTABLE is LOADK or SETLIST, fusing them into a single table
// literal; any other opcode commits the literal to the target
// register.
func (d *Decompiler) handleNewTable(inst bytecode.Instruction) (int, error) {
	tb := &tableBuilder{reg: inst.A, cache: make(map[uint32]string)}
	consumed := 1

	for d.pc+consumed < len(d.proto.Instructions) {
		next := d.instr(d.pc + consumed)
		switch next.Op {
		case opcode.OpLoadK:
			if int(next.Bx) >= len(d.proto.Constants) {
				return 0, lerrors.NewMalformedImage(d.pc+consumed, "LOADK constant index out of range")
			}
			tb.cache[next.A] = d.proto.Constants[next.Bx].Render()
			consumed++
		case opcode.OpSetList:
			flushCachedEntries(tb)
			consumed++
		default:
			return d.commitTable(tb, consumed)
		}
	}
	return d.commitTable(tb, consumed)
}

// flushCachedEntries appends every cached value to the literal in
// ascending register order (spec.md: "flushes the next B cached
// entries in index order") and clears the cache.
func flushCachedEntries(tb *tableBuilder) {
	keys := make([]uint32, 0, len(tb.cache))
	for k := range tb.cache {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		tb.items = append(tb.items, tb.cache[k])
		delete(tb.cache, k)
	}
}

func (d *Decompiler) commitTable(tb *tableBuilder, consumed int) (int, error) {
	flushCachedEntries(tb)
	literal := "{" + strings.Join(tb.items, ", ")
	if len(tb.items) > 0 {
		literal += ", }"
	} else {
		literal += "}"
	}
	d.assign(tb.reg, literal)
	return consumed, nil
}

// handleSetList processes a standalone SETLIST (outside a NEWTABLE
// fusion), emitting index-wise assignments per the LFIELDS_PER_FLUSH
// batching rule (spec.md §4.5, §GLOSSARY).
func (d *Decompiler) handleSetList(inst bytecode.Instruction) (int, error) {
	tableExpr := d.registerText(inst.A)
	start := (int(inst.C)-1)*opcode.LFieldsPerFlush + 1
	for i := 0; i < int(inst.B); i++ {
		idx := start + i
		val := d.registerText(inst.A + 1 + uint32(i))
		d.emit(fmt.Sprintf("%s[%d] = %s", tableExpr, idx, val))
	}
	return 1, nil
}
