// Package inspector browses a decoded, static bytecode.Prototype
// tree. Unlike the teacher's debugger package, there is no running VM
// to step or break on: a Session instead tracks which prototype in
// the tree is "selected" (a path of child indices from the root, per
// SPEC_FULL.md's resolution of the "how does the REPL represent
// descending into a closure" open question) and a cursor PC within it
// for disassembly context.
package inspector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/decompiler"
)

// Session represents the inspector's REPL state.
type Session struct {
	Root *bytecode.Prototype

	// Path holds the child index chosen at each level below Root;
	// len(Path) == 0 means Root itself is selected. Printed joined by
	// "." (e.g. "0.2.1"), matching spec.md §4.5's CLOSURE Bx recursion.
	Path []int

	// PC is the cursor set by "seek" and used by "list" and the TUI's
	// disassembly panel,
	// relative to the selected prototype.
	PC int

	Options decompiler.Options

	History *History

	LastCommand string

	Output strings.Builder
}

// NewSession creates an inspector session rooted at the top-level
// prototype decoded from a bytecode image.
func NewSession(root *bytecode.Prototype, opts decompiler.Options) *Session {
	return &Session{
		Root:    root,
		Path:    nil,
		PC:      0,
		Options: opts,
		History: NewHistory(),
	}
}

// Selected returns the prototype named by Path, walking down from
// Root.
func (s *Session) Selected() (*bytecode.Prototype, error) {
	p := s.Root
	for i, idx := range s.Path {
		if idx < 0 || idx >= len(p.Protos) {
			return nil, fmt.Errorf("invalid path element %d at depth %d", idx, i)
		}
		p = p.Protos[idx]
	}
	return p, nil
}

// PathString renders Path as a dotted string ("0.2.1"), or "root" at
// the top level.
func (s *Session) PathString() string {
	if len(s.Path) == 0 {
		return "root"
	}
	parts := make([]string, len(s.Path))
	for i, idx := range s.Path {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// ExecuteCommand processes and executes a single REPL command line.
func (s *Session) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)

	// Empty command repeats last command.
	if cmdLine == "" {
		cmdLine = s.LastCommand
	}

	if cmdLine != "" {
		s.History.Add(cmdLine)
		s.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	return s.handleCommand(cmd, args)
}

// handleCommand dispatches a command to its handler.
func (s *Session) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "protos", "children":
		return s.cmdProtos(args)
	case "goto", "enter", "g":
		return s.cmdGoto(args)
	case "up", "u":
		return s.cmdUp(args)
	case "root":
		return s.cmdRoot(args)
	case "consts", "constants", "c":
		return s.cmdConsts(args)
	case "locals":
		return s.cmdLocals(args)
	case "disasm", "disassemble", "dis":
		return s.cmdDisasm(args)
	case "decompile", "dc":
		return s.cmdDecompile(args)
	case "list", "l":
		return s.cmdList(args)
	case "seek":
		return s.cmdSeek(args)
	case "info", "i":
		return s.cmdInfo(args)
	case "set":
		return s.cmdSet(args)
	case "help", "h", "?":
		return s.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// GetOutput returns and clears the output buffer.
func (s *Session) GetOutput() string {
	output := s.Output.String()
	s.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (s *Session) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&s.Output, format, args...)
}

// Println writes a line to the output buffer.
func (s *Session) Println(args ...interface{}) {
	fmt.Fprintln(&s.Output, args...)
}
