// Package tools adapts the teacher's assembly formatter/cross-
// referencer/linter (tools/format.go, xref.go, lint.go) to operate on
// decoded prototypes and decompiler output instead of ARM assembly
// source.
package tools

import (
	"strings"
)

// FormatStyle selects the formatter's indentation/spacing choices.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // Standard reindentation
	FormatCompact                     // Minimal blank lines, tight indent
	FormatExpanded                    // Extra blank line between blocks
)

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	Style            FormatStyle
	IndentWidth      int  // spaces per nesting level
	BlankLineBetween bool // insert a blank line after each closed top-level block
}

// DefaultFormatOptions returns the formatter's default options.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:            FormatDefault,
		IndentWidth:      4,
		BlankLineBetween: false,
	}
}

// CompactFormatOptions returns options for tight, minimal-whitespace output.
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.IndentWidth = 2
	return opts
}

// ExpandedFormatOptions returns options for a more spaced-out rendering.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.IndentWidth = 4
	opts.BlankLineBetween = true
	return opts
}

// opensBlock reports whether a (trimmed) decompiled source line opens
// a new nesting level that a later "end"/"until" line closes.
func opensBlock(line string) bool {
	if line == "repeat" {
		return true
	}
	for _, kw := range []string{"then", "do"} {
		if strings.HasSuffix(line, kw) {
			return true
		}
	}
	return strings.Contains(line, "function(") && strings.HasSuffix(line, ")")
}

func closesBlock(line string) bool {
	return line == "end" || strings.HasPrefix(line, "end") || strings.HasPrefix(line, "until") ||
		line == "else" || line == "elseif" || strings.HasPrefix(line, "elseif ")
}

// dedentsFirst reports whether the line itself should be printed one
// level shallower than the block it's inside (else/elseif/end/until).
func dedentsFirst(line string) bool {
	return line == "end" || strings.HasPrefix(line, "end") || strings.HasPrefix(line, "until") ||
		line == "else" || strings.HasPrefix(line, "elseif")
}

// Formatter reindents decompiler output to a consistent style. The
// decompiler already emits syntactically stable Lua-like source; the
// formatter's job is purely cosmetic normalization (indent width,
// blank-line policy), grounded on the teacher's column-based
// assembly formatter reduced to a keyword-driven indent tracker since
// this domain has no fixed instruction/operand columns to align.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a formatter. A nil options falls back to
// DefaultFormatOptions.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format reindents decompiled Lua-like source according to f's style.
func (f *Formatter) Format(input string) (string, error) {
	lines := strings.Split(input, "\n")
	var out strings.Builder
	depth := 0
	unit := strings.Repeat(" ", f.options.IndentWidth)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if f.options.Style != FormatCompact {
				out.WriteByte('\n')
			}
			continue
		}

		lineDepth := depth
		if dedentsFirst(line) {
			lineDepth = depth - 1
			if lineDepth < 0 {
				lineDepth = 0
			}
		}

		out.WriteString(strings.Repeat(unit, lineDepth))
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}

		switch {
		case dedentsFirst(line) && !opensBlock(line):
			depth = lineDepth
		case opensBlock(line):
			depth = lineDepth + 1
		}

		if f.options.BlankLineBetween && closesBlock(line) && depth == 0 {
			out.WriteByte('\n')
		}
	}

	return out.String(), nil
}

// FormatSource is a convenience function formatting with default options.
func FormatSource(input string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(input)
}

// FormatSourceWithStyle formats input with the named style.
func FormatSourceWithStyle(input string, style FormatStyle) (string, error) {
	var opts *FormatOptions
	switch style {
	case FormatCompact:
		opts = CompactFormatOptions()
	case FormatExpanded:
		opts = ExpandedFormatOptions()
	default:
		opts = DefaultFormatOptions()
	}
	return NewFormatter(opts).Format(input)
}
