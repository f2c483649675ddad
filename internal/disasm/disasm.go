// Package disasm renders a decoded bytecode.Prototype as a flat
// disassembly listing. It is a thin, non-normative pretty-printer: the
// CLI driver and inspector are the external collaborators that need
// it, not the decoder/decompiler core itself (spec.md §1 scopes a
// "disassembly pretty-printer" out as an external collaborator).
package disasm

import (
	"fmt"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
)

// Line is one disassembled instruction, annotated with its source
// line when debug info is present.
type Line struct {
	PC     int
	Text   string
	Source int // 0 if no line info
}

// Disassemble renders every instruction in proto, in order. It does
// not recurse into child prototypes; callers walk Proto.Protos
// themselves (matching the recursive structure of
// original_source/lundump.py's Chunk.print()).
func Disassemble(proto *bytecode.Prototype) []Line {
	lines := make([]Line, 0, len(proto.Instructions))
	for pc, inst := range proto.Instructions {
		lines = append(lines, Line{
			PC:     pc,
			Text:   inst.String(),
			Source: proto.LineForPC(pc),
		})
	}
	return lines
}

// Render formats Disassemble's output as a single text block, one
// instruction per line: "[ pc] TEXT  ; line N".
func Render(proto *bytecode.Prototype) string {
	var b strings.Builder
	for i, ln := range Disassemble(proto) {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%4d] %s", ln.PC, ln.Text)
		if ln.Source > 0 {
			fmt.Fprintf(&b, "  ; line %d", ln.Source)
		}
	}
	return b.String()
}

// Constants renders the prototype's constant pool, one entry per
// line: "N: KIND value".
func Constants(proto *bytecode.Prototype) string {
	var b strings.Builder
	for i, c := range proto.Constants {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d: %s %s", i, c.Kind, c.Render())
	}
	return b.String()
}
