package decompiler

import "regexp"

// identifierPattern is the Lua identifier grammar (spec.md §8 property
// 7): a leading letter or underscore, then letters, digits, or
// underscores.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isValidIdentifier reports whether name is a legal Lua identifier.
func isValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// isCompilerScaffoldName reports whether a debug-info local name is
// generated loop scaffolding rather than a user identifier (spec.md
// §4.5 identifier policy: names beginning with "(for " are skipped).
func isCompilerScaffoldName(name string) bool {
	return len(name) >= 5 && name[:5] == "(for "
}
