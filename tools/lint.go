package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
)

// LintLevel represents the severity of a lint issue.
type LintLevel int

const (
	LintError   LintLevel = iota // output that is almost certainly wrong
	LintWarning                  // likely indicates stripped/mismatched debug info
	LintInfo                     // stylistic observation
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	case LintInfo:
		return "info"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding against a decompiled prototype.
type LintIssue struct {
	Level   LintLevel
	Line    int // 1-based line in the decompiled source, 0 if not tied to a line
	Message string
	Code    string // "UNNAMED_LOCAL", "EMPTY_FUNCTION", "UNBALANCED_SCOPE"
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d: %s: %s [%s]", i.Line, i.Level, i.Message, i.Code)
}

// LintOptions controls linter behavior.
type LintOptions struct {
	CheckUnnamedLocals   bool // flag registers still reading __unknLocalN despite present debug info
	CheckEmptyFunctions  bool // flag "function(...) end" bodies
	CheckUnbalancedScope bool // flag mismatched then/do/repeat vs end/until counts
}

// DefaultLintOptions returns the linter's default options.
func DefaultLintOptions() *LintOptions {
	return &LintOptions{
		CheckUnnamedLocals:   true,
		CheckEmptyFunctions:  true,
		CheckUnbalancedScope: true,
	}
}

// Linter flags suspicious decompiler output, adapted from the
// teacher's assembly linter (undefined-label/unreachable-code checks)
// to this domain's register-naming and scope-balance concerns.
type Linter struct {
	options *LintOptions
	issues  []*LintIssue
}

// NewLinter creates a linter. A nil options falls back to
// DefaultLintOptions.
func NewLinter(options *LintOptions) *Linter {
	if options == nil {
		options = DefaultLintOptions()
	}
	return &Linter{options: options}
}

// Lint analyzes proto and its decompiled source, returning every issue found.
func (l *Linter) Lint(proto *bytecode.Prototype, source string) []*LintIssue {
	l.issues = nil

	if l.options.CheckUnnamedLocals {
		l.checkUnnamedLocals(proto, source)
	}
	if l.options.CheckEmptyFunctions {
		l.checkEmptyFunctions(source)
	}
	if l.options.CheckUnbalancedScope {
		l.checkUnbalancedScope(source)
	}

	sort.Slice(l.issues, func(i, j int) bool {
		if l.issues[i].Line != l.issues[j].Line {
			return l.issues[i].Line < l.issues[j].Line
		}
		return l.issues[i].Code < l.issues[j].Code
	})
	return l.issues
}

// checkUnnamedLocals flags "__unknLocalN" appearing in source when
// proto actually carries debug info: a correctly-matched local table
// should have named every live register, so a generated name here
// suggests the debug info and register numbering have drifted apart.
func (l *Linter) checkUnnamedLocals(proto *bytecode.Prototype, source string) {
	if !proto.HasDebugInfo() {
		return
	}
	for lineNo, line := range strings.Split(source, "\n") {
		if strings.Contains(line, "__unknLocal") {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintWarning,
				Line:    lineNo + 1,
				Message: "generated register name despite present debug info; locals table may be stripped or mismatched",
				Code:    "UNNAMED_LOCAL",
			})
		}
	}
}

// checkEmptyFunctions flags a function body with no statements
// between its header and "end", which more often indicates a missed
// fusion than genuine empty source.
func (l *Linter) checkEmptyFunctions(source string) {
	lines := strings.Split(source, "\n")
	for i := 0; i < len(lines)-1; i++ {
		cur := strings.TrimSpace(lines[i])
		next := strings.TrimSpace(lines[i+1])
		if strings.Contains(cur, "function(") && strings.HasSuffix(cur, ")") && next == "end" {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintInfo,
				Line:    i + 1,
				Message: "empty function body",
				Code:    "EMPTY_FUNCTION",
			})
		}
	}
}

// checkUnbalancedScope counts block openers (then/do/repeat) against
// closers (end/until); a mismatch means the decompiler's scope
// tracking and the emitted text have diverged.
func (l *Linter) checkUnbalancedScope(source string) {
	depth := 0
	for lineNo, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if opensBlock(line) {
			depth++
		}
		if closesBlock(line) && !strings.HasPrefix(line, "else") {
			depth--
		}
		if depth < 0 {
			l.issues = append(l.issues, &LintIssue{
				Level:   LintError,
				Line:    lineNo + 1,
				Message: "closing keyword with no matching opener",
				Code:    "UNBALANCED_SCOPE",
			})
			depth = 0
		}
	}
	if depth != 0 {
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    len(strings.Split(source, "\n")),
			Message: fmt.Sprintf("%d block(s) left unclosed", depth),
			Code:    "UNBALANCED_SCOPE",
		})
	}
}

// Lint is a convenience function using DefaultLintOptions.
func Lint(proto *bytecode.Prototype, source string) []*LintIssue {
	return NewLinter(DefaultLintOptions()).Lint(proto, source)
}
