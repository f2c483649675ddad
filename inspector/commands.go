package inspector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/internal/disasm"
)

// cmdProtos lists the child prototypes of the selected prototype.
func (s *Session) cmdProtos(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}

	if len(p.Protos) == 0 {
		s.Println("no child prototypes")
		return nil
	}

	s.Printf("child prototypes of %s:\n", s.PathString())
	for i, child := range p.Protos {
		s.Printf("  %d: lines %d-%d, %d params, %d upvalues, %d instructions\n",
			i, child.FirstLine, child.LastLine, child.NumParams, child.NumUpvals, len(child.Instructions))
	}
	return nil
}

// cmdGoto descends into a child prototype by index.
func (s *Session) cmdGoto(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: goto <index>")
	}

	p, err := s.Selected()
	if err != nil {
		return err
	}

	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid prototype index: %s", args[0])
	}
	if idx < 0 || idx >= len(p.Protos) {
		return fmt.Errorf("no child prototype %d (have %d)", idx, len(p.Protos))
	}

	s.Path = append(s.Path, idx)
	s.PC = 0
	s.Printf("entered prototype %s\n", s.PathString())
	return nil
}

// cmdUp returns to the parent prototype.
func (s *Session) cmdUp(args []string) error {
	if len(s.Path) == 0 {
		return fmt.Errorf("already at root")
	}
	s.Path = s.Path[:len(s.Path)-1]
	s.PC = 0
	s.Printf("back to %s\n", s.PathString())
	return nil
}

// cmdRoot resets selection back to the top-level prototype.
func (s *Session) cmdRoot(args []string) error {
	s.Path = nil
	s.PC = 0
	s.Println("back to root")
	return nil
}

// cmdConsts prints the selected prototype's constant pool.
func (s *Session) cmdConsts(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}
	if len(p.Constants) == 0 {
		s.Println("no constants")
		return nil
	}
	s.Println(disasm.Constants(p))
	return nil
}

// cmdLocals prints the selected prototype's debug-info local table.
func (s *Session) cmdLocals(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}
	if len(p.Locals) == 0 {
		s.Println("no debug-info locals")
		return nil
	}
	for i, l := range p.Locals {
		s.Printf("  %d: %s (pc %d-%d)\n", i, l.Name, l.StartPC, l.EndPC)
	}
	return nil
}

// cmdDisasm prints the full disassembly of the selected prototype.
func (s *Session) cmdDisasm(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}
	s.Println(disasm.Render(p))
	return nil
}

// cmdDecompile runs the decompiler over the selected prototype and
// prints the reconstructed pseudo-source.
func (s *Session) cmdDecompile(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}
	out, err := decompiler.New(p, s.Options, len(s.Path)).Decompile()
	if err != nil {
		return fmt.Errorf("decompile failed: %w", err)
	}
	s.Println(out)
	return nil
}

// cmdList shows disassembly context around the cursor PC.
func (s *Session) cmdList(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}

	context := DisasmContextLinesCompact
	if len(args) > 0 {
		if n, perr := strconv.Atoi(args[0]); perr == nil && n > 0 {
			context = n
		}
	}

	lines := disasm.Disassemble(p)
	start := s.PC - context
	if start < 0 {
		start = 0
	}
	end := s.PC + context
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	for i := start; i <= end; i++ {
		marker := "  "
		if i == s.PC {
			marker = "=>"
		}
		ln := lines[i]
		if ln.Source > 0 {
			s.Printf("%s [%4d] %s  ; line %d\n", marker, ln.PC, ln.Text, ln.Source)
		} else {
			s.Printf("%s [%4d] %s\n", marker, ln.PC, ln.Text)
		}
	}
	return nil
}

// cmdSeek moves the cursor PC within the selected prototype.
func (s *Session) cmdSeek(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: seek <pc>")
	}
	p, err := s.Selected()
	if err != nil {
		return err
	}
	pc, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid pc: %s", args[0])
	}
	if pc < 0 || pc >= len(p.Instructions) {
		return fmt.Errorf("pc %d out of range (0-%d)", pc, len(p.Instructions)-1)
	}
	s.PC = pc
	return nil
}

// cmdInfo prints prototype header information.
func (s *Session) cmdInfo(args []string) error {
	p, err := s.Selected()
	if err != nil {
		return err
	}

	s.Printf("prototype %s\n", s.PathString())
	s.Printf("  source:        %s\n", displayOr(p.Source, "?"))
	s.Printf("  lines:         %d-%d\n", p.FirstLine, p.LastLine)
	s.Printf("  params:        %d (vararg: %t)\n", p.NumParams, p.IsVararg)
	s.Printf("  upvalues:      %d\n", p.NumUpvals)
	s.Printf("  max stack:     %d\n", p.MaxStackSize)
	s.Printf("  instructions:  %d\n", len(p.Instructions))
	s.Printf("  constants:     %d\n", len(p.Constants))
	s.Printf("  child protos:  %d\n", len(p.Protos))
	s.Printf("  debug info:    %t\n", p.HasDebugInfo())
	return nil
}

func displayOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// cmdSet updates an inspector option (aggressive-locals, annotate,
// indent-width).
func (s *Session) cmdSet(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set <option> <value>")
	}

	switch strings.ToLower(args[0]) {
	case "aggressive-locals":
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid bool: %s", args[1])
		}
		s.Options.AggressiveLocals = v
	case "annotate":
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid bool: %s", args[1])
		}
		s.Options.AnnotateLines = v
	case "indent-width":
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid int: %s", args[1])
		}
		s.Options.IndentWidth = v
	default:
		return fmt.Errorf("unknown option: %s", args[0])
	}

	s.Printf("%s = %s\n", args[0], args[1])
	return nil
}

// cmdHelp prints the command reference.
func (s *Session) cmdHelp(args []string) error {
	if len(args) > 0 {
		return s.showCommandHelp(args[0])
	}

	s.Println("Lua bytecode inspector commands:")
	s.Println()
	s.Println("Navigation:")
	s.Println("  protos (children)    - List child prototypes of the selection")
	s.Println("  goto (enter, g) <n>  - Descend into child prototype n")
	s.Println("  up (u)               - Return to parent prototype")
	s.Println("  root                 - Return to the top-level prototype")
	s.Println("  seek <pc>            - Move the list cursor to instruction pc")
	s.Println()
	s.Println("Inspection:")
	s.Println("  info (i)             - Show prototype header information")
	s.Println("  consts (c)           - Show the constant pool")
	s.Println("  locals               - Show debug-info locals")
	s.Println("  disasm (dis)         - Show full disassembly")
	s.Println("  decompile (dc)       - Show decompiled pseudo-source")
	s.Println("  list (l) [n]         - Show disassembly around the cursor")
	s.Println()
	s.Println("Options:")
	s.Println("  set <opt> <value>    - Set aggressive-locals/annotate/indent-width")
	s.Println()
	s.Println("Type 'help <command>' for detailed help on a specific command.")

	return nil
}

func (s *Session) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"goto":      "goto <index>\n  Descend into the child prototype at the given index.",
		"decompile": "decompile\n  Run the decompiler over the selected prototype.",
		"set":       "set <aggressive-locals|annotate|indent-width> <value>\n  Update a decompiler option for subsequent 'decompile' commands.",
	}

	if help, exists := helpText[cmd]; exists {
		s.Println(help)
		return nil
	}

	return fmt.Errorf("no help available for command: %s", cmd)
}
