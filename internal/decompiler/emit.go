package decompiler

// emit flushes text as a new statement line spanning from just after
// the previous flush up to the current pc (spec.md §4.5 "line
// emission").
func (d *Decompiler) emit(text string) {
	d.lines = append(d.lines, line{
		startPC:    d.lastFlushPC + 1,
		endPC:      d.pc,
		text:       text,
		scopeDepth: len(d.scopes),
	})
	d.lastFlushPC = d.pc
}

// insertRepeat retroactively inserts a "repeat" line at headPC,
// immediately before the first line emitted at or after that pc, and
// increments the scope depth of every line from there to the current
// end (spec.md §9 "Insertion of repeat ahead of until").
func (d *Decompiler) insertRepeat(headPC int) {
	idx := 0
	for idx < len(d.lines) && d.lines[idx].startPC < headPC {
		idx++
	}
	for i := idx; i < len(d.lines); i++ {
		d.lines[i].scopeDepth++
	}
	repeatLine := line{
		startPC:    headPC,
		endPC:      headPC,
		text:       "repeat",
		scopeDepth: len(d.scopes),
	}
	d.lines = append(d.lines[:idx:idx], append([]line{repeatLine}, d.lines[idx:]...)...)
}

// openScope pushes a new lexical scope of the given length starting
// at the current pc.
func (d *Decompiler) openScope(kind scopeKind, length int) {
	d.scopes = append(d.scopes, scope{kind: kind, startPC: d.pc, endPC: d.pc + length})
}

// closeScopes pops and closes every scope whose endPC the cursor has
// now passed (spec.md §4.5 "scope closing").
func (d *Decompiler) closeScopes() {
	for len(d.scopes) > 0 && d.pc >= d.scopes[len(d.scopes)-1].endPC {
		top := d.scopes[len(d.scopes)-1]
		d.scopes = d.scopes[:len(d.scopes)-1]
		d.emit(top.kind.closer())
	}
}
