package api

import (
	"time"

	"github.com/cpunch-go/luadecompy/internal/disasm"
	"github.com/cpunch-go/luadecompy/service"
)

// SessionCreateResponse is returned from POST /api/v1/session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStatusResponse describes an active session.
type SessionStatusResponse struct {
	SessionID      string `json:"sessionId"`
	PrototypeCount int    `json:"prototypeCount"`
}

// PrototypesResponse lists every prototype in a session's decoded tree.
type PrototypesResponse struct {
	Prototypes []service.PrototypeSummary `json:"prototypes"`
}

// DisasmLine is one line of a disassembly listing, over the wire.
type DisasmLine struct {
	PC     int    `json:"pc"`
	Text   string `json:"text"`
	Source int    `json:"source,omitempty"`
}

// DisasmResponse is returned from GET .../disasm.
type DisasmResponse struct {
	Path  string       `json:"path"`
	Lines []DisasmLine `json:"lines"`
}

// ToDisasmLines converts disasm.Line values to their wire form.
func ToDisasmLines(lines []disasm.Line) []DisasmLine {
	out := make([]DisasmLine, len(lines))
	for i, l := range lines {
		out[i] = DisasmLine{PC: l.PC, Text: l.Text, Source: l.Source}
	}
	return out
}

// DecompileResponse is returned from GET .../decompile.
type DecompileResponse struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse represents a simple success response.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
