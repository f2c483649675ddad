package inspector

// Code view context constants
const (
	// DisasmContextLines is the default number of instructions shown
	// before/after the cursor PC in the disassembly panel.
	DisasmContextLines = 10

	// DisasmContextLinesCompact is used in the REPL's "list" command
	// when no explicit count is given.
	DisasmContextLinesCompact = 5
)

// Tree view constants
const (
	// ProtoTreeMaxDepth is a depth limit for rendering nested closures
	// in the TUI's prototype tree panel. The panel lists only the
	// selected prototype's direct children, so nothing reads it.
	ProtoTreeMaxDepth = 32
)
