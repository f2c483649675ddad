// Package loader reads a compiled Lua 5.1 bytecode image from disk
// and decodes it into a bytecode.Prototype tree, grounded on the
// teacher's loader package (which wrote a parsed assembly program
// into VM memory) reduced to its I/O-boundary role: this project has
// no VM to load into, only a decoder to hand the bytes to.
package loader

import (
	"fmt"
	"os"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/undump"
)

// LoadFile reads the bytecode image at path and decodes its root
// prototype.
func LoadFile(path string) (*bytecode.Prototype, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied CLI path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes decodes a bytecode image already resident in memory (used
// by the API's upload-and-keep-in-memory session model, per
// SPEC_FULL.md's Open Question 2).
func LoadBytes(data []byte) (*bytecode.Prototype, error) {
	dec, err := undump.NewDecoder(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open bytecode image: %w", err)
	}

	proto, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode image: %w", err)
	}

	return proto, nil
}
