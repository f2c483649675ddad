package bytecode

// Local is one entry of a prototype's debug-info local variable table:
// the name is live for instructions in [StartPC, EndPC).
type Local struct {
	Name    string
	StartPC int
	EndPC   int
}

// LiveAt reports whether the local is in scope at the given pc.
func (l Local) LiveAt(pc int) bool {
	return pc >= l.StartPC && pc < l.EndPC
}
