package service

// PrototypeSummary is a lightweight description of one prototype in
// the decoded tree, addressed by its Path (child index at each level
// below the root), for listing without forcing a client to pull the
// full instruction/constant data.
type PrototypeSummary struct {
	Path             []int  `json:"path"`
	Source           string `json:"source"`
	FirstLine        int    `json:"firstLine"`
	LastLine         int    `json:"lastLine"`
	NumParams        int    `json:"numParams"`
	NumUpvalues      int    `json:"numUpvalues"`
	IsVararg         bool   `json:"isVararg"`
	InstructionCount int    `json:"instructionCount"`
	ConstantCount    int    `json:"constantCount"`
	ChildCount       int    `json:"childCount"`
	HasDebugInfo     bool   `json:"hasDebugInfo"`
}
