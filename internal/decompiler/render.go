package decompiler

import (
	"fmt"
	"strings"
)

// annotationColumn is the target column for the "-- PC: ..." comment
// appended to annotated lines, so consecutive annotated lines in the
// same scope line up (cosmetic only).
const annotationColumn = 40

// render concatenates the accumulated lines into final pseudo-source
// text (spec.md §4.5 "line emission"). When AnnotateLines is set, a
// "-- PC: <start> to <end>" comment is appended after the statement
// text on its first line, right-padded to annotationColumn.
func (d *Decompiler) render() string {
	var b strings.Builder
	for i, ln := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		indent := (ln.scopeDepth + d.scopeOffset) * d.opts.IndentWidth
		if indent < 0 {
			indent = 0
		}
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString(ln.text)
		if d.opts.AnnotateLines {
			pad := annotationColumn - indent - len(ln.text)
			if pad < 1 {
				pad = 1
			}
			fmt.Fprintf(&b, "%s-- PC: %d to %d", strings.Repeat(" ", pad), ln.startPC, ln.endPC)
		}
	}
	return b.String()
}
