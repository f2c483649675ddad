// Package lerrors defines the error kinds shared by the decoder and
// the decompiler (spec.md §7), in the same style as the teacher's
// encoder.EncodingError: a small struct carrying positional context
// plus the sentinel error it unwraps to, rather than a bare formatted
// string.
package lerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching. Concrete failures are
// returned as one of the wrapping types below, each of which Unwraps
// to the matching sentinel.
var (
	// ErrNotLuaBytecode means the 4-byte magic did not match `\x1bLua`.
	ErrNotLuaBytecode = errors.New("not a lua bytecode image")
	// ErrMalformedImage means the header or body is truncated or
	// internally inconsistent (bad opcode index, bad constant tag,
	// read past the end of the buffer).
	ErrMalformedImage = errors.New("malformed bytecode image")
	// ErrUnsupportedOpcode means the opcode is valid but outside the
	// decompiler's implemented subset.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")
	// ErrDecompilerInvariant means an internal invariant was violated,
	// e.g. a register was read before any write and no local is bound
	// to it.
	ErrDecompilerInvariant = errors.New("decompiler invariant violated")
)

// ImageError wraps ErrNotLuaBytecode or ErrMalformedImage with a byte
// offset into the image, when known.
type ImageError struct {
	Sentinel error
	Offset   int // byte offset, -1 if not applicable
	Message  string
}

func (e *ImageError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Sentinel, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Sentinel, e.Message)
}

func (e *ImageError) Unwrap() error { return e.Sentinel }

// NewNotLuaBytecode reports a magic-number mismatch.
func NewNotLuaBytecode(message string) error {
	return &ImageError{Sentinel: ErrNotLuaBytecode, Offset: 0, Message: message}
}

// NewMalformedImage reports a truncated or nonsensical image at the
// given byte offset. Pass offset -1 if no single offset applies.
func NewMalformedImage(offset int, message string) error {
	return &ImageError{Sentinel: ErrMalformedImage, Offset: offset, Message: message}
}

// OpError wraps a decompiler-stage error with the prototype-relative
// program counter and opcode that triggered it (spec.md §7: "All
// errors surface to the caller with opcode/pc context where
// available").
type OpError struct {
	Sentinel error
	PC       int
	OpName   string
	Message  string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: pc %d (%s): %s", e.Sentinel, e.PC, e.OpName, e.Message)
}

func (e *OpError) Unwrap() error { return e.Sentinel }

// NewUnsupportedOpcode reports an opcode outside the decompiler's
// covered subset.
func NewUnsupportedOpcode(pc int, opName string) error {
	return &OpError{Sentinel: ErrUnsupportedOpcode, PC: pc, OpName: opName, Message: "not implemented by this decompiler"}
}

// NewDecompilerInvariant reports an internal invariant violation, such
// as reading an unwritten, unbound register.
func NewDecompilerInvariant(pc int, opName, message string) error {
	return &OpError{Sentinel: ErrDecompilerInvariant, PC: pc, OpName: opName, Message: message}
}
