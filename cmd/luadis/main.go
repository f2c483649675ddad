// Command luadis is a cobra-based front end over the same
// decode/disassemble/decompile pipeline as the root luadecompy
// command, grounded on oisee-z80-optimizer's cmd/z80opt subcommand
// structure (one cobra.Command per analysis mode, flags scoped to
// each subcommand rather than global).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/internal/disasm"
	"github.com/cpunch-go/luadecompy/loader"
	"github.com/cpunch-go/luadecompy/tools"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "luadis",
		Short: "Lua 5.1 bytecode disassembler/decompiler toolkit",
	}

	var disasmPath string
	disasmCmd := &cobra.Command{
		Use:   "disasm <bytecode-file>",
		Short: "Print a disassembly listing with raw operand values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proto, err := resolveProto(args[0], disasmPath)
			if err != nil {
				return err
			}
			for _, line := range disasm.Disassemble(proto) {
				fmt.Println(line.Text)
			}
			return nil
		},
	}
	disasmCmd.Flags().StringVar(&disasmPath, "path", "", "Dotted child-index path to a nested prototype (e.g. 0.1.2)")

	var (
		decompilePath        string
		aggressiveLocals     bool
		annotateLines        bool
		indentWidth          int
		decompileFormatStyle string
	)
	decompileCmd := &cobra.Command{
		Use:   "decompile <bytecode-file>",
		Short: "Print decompiled Lua-like pseudo-source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proto, err := resolveProto(args[0], decompilePath)
			if err != nil {
				return err
			}

			opts := decompiler.Options{
				AggressiveLocals: aggressiveLocals,
				AnnotateLines:    annotateLines,
				IndentWidth:      indentWidth,
			}
			source, err := decompiler.New(proto, opts, 0).Decompile()
			if err != nil {
				return fmt.Errorf("decompile failed: %w", err)
			}

			if decompileFormatStyle != "" {
				style, err := parseFormatStyle(decompileFormatStyle)
				if err != nil {
					return err
				}
				source, err = tools.FormatSourceWithStyle(source, style)
				if err != nil {
					return fmt.Errorf("format failed: %w", err)
				}
			}

			fmt.Print(source)
			return nil
		},
	}
	decompileCmd.Flags().StringVar(&decompilePath, "path", "", "Dotted child-index path to a nested prototype (e.g. 0.1.2)")
	decompileCmd.Flags().BoolVar(&aggressiveLocals, "aggressive-locals", false, "Promote every written non-local register to a fresh local")
	decompileCmd.Flags().BoolVar(&annotateLines, "annotate", false, "Prepend a PC-range comment to every emitted line")
	decompileCmd.Flags().IntVar(&indentWidth, "indent-width", 4, "Spaces per indent level")
	decompileCmd.Flags().StringVar(&decompileFormatStyle, "style", "", "Reformat with this style: default, compact, expanded")

	var xrefPath string
	xrefCmd := &cobra.Command{
		Use:   "xref <bytecode-file>",
		Short: "Print register/constant/upvalue cross-references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proto, err := resolveProto(args[0], xrefPath)
			if err != nil {
				return err
			}

			symbols, err := tools.CrossReference(proto)
			if err != nil {
				return fmt.Errorf("cross-reference failed: %w", err)
			}

			for _, name := range tools.SortedNames(symbols) {
				sym := symbols[name]
				fmt.Printf("%s (%d references)\n", name, len(sym.References))
				if sym.Definition != nil {
					fmt.Printf("  defined at pc %d: %s\n", sym.Definition.PC, sym.Definition.Text)
				}
				for _, ref := range sym.References {
					fmt.Printf("  used at pc %d: %s\n", ref.PC, ref.Text)
				}
			}
			return nil
		},
	}
	xrefCmd.Flags().StringVar(&xrefPath, "path", "", "Dotted child-index path to a nested prototype (e.g. 0.1.2)")

	var lintPath string
	lintCmd := &cobra.Command{
		Use:   "lint <bytecode-file>",
		Short: "Decompile and lint the result for common issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proto, err := resolveProto(args[0], lintPath)
			if err != nil {
				return err
			}

			source, err := decompiler.New(proto, decompiler.DefaultOptions(), 0).Decompile()
			if err != nil {
				return fmt.Errorf("decompile failed: %w", err)
			}

			issues := tools.Lint(proto, source)
			if len(issues) == 0 {
				fmt.Println("no issues found")
				return nil
			}
			for _, issue := range issues {
				fmt.Println(issue.String())
			}
			return nil
		},
	}
	lintCmd.Flags().StringVar(&lintPath, "path", "", "Dotted child-index path to a nested prototype (e.g. 0.1.2)")

	rootCmd.AddCommand(disasmCmd, decompileCmd, xrefCmd, lintCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveProto loads the bytecode image at path and walks down to the
// prototype named by a dotted child-index string such as "0.1.2", the
// same addressing scheme inspector.Session and service.DecompileService
// use. An empty dotted path selects the root prototype.
func resolveProto(imagePath, dottedPath string) (*bytecode.Prototype, error) {
	root, err := loader.LoadFile(imagePath)
	if err != nil {
		return nil, err
	}

	if dottedPath == "" {
		return root, nil
	}

	proto := root
	for _, part := range strings.Split(dottedPath, ".") {
		idx := 0
		if _, err := fmt.Sscanf(part, "%d", &idx); err != nil {
			return nil, fmt.Errorf("invalid path segment %q in %q", part, dottedPath)
		}
		if idx < 0 || idx >= len(proto.Protos) {
			return nil, fmt.Errorf("no child prototype %d at %q", idx, dottedPath)
		}
		proto = proto.Protos[idx]
	}
	return proto, nil
}

func parseFormatStyle(s string) (tools.FormatStyle, error) {
	switch strings.ToLower(s) {
	case "default":
		return tools.FormatDefault, nil
	case "compact":
		return tools.FormatCompact, nil
	case "expanded":
		return tools.FormatExpanded, nil
	default:
		return 0, fmt.Errorf("unknown format style %q: use default, compact, or expanded", s)
	}
}
