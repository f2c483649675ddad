// Package service provides a thread-safe wrapper around the decoder/
// decompiler core, used by the HTTP API (grounded on the teacher's service.DebuggerService, which played the
// same role for the VM/debugger).
package service

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/internal/disasm"
)

var serviceLog *log.Logger

func init() {
	if os.Getenv("LUADECOMPY_DEBUG") != "" {
		logPath := filepath.Join(os.TempDir(), "luadecompy-service-debug.log")
		f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename in temp dir
		if err != nil {
			serviceLog = log.New(os.Stderr, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		} else {
			serviceLog = log.New(f, "SERVICE: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
		}
	} else {
		serviceLog = log.New(io.Discard, "", 0)
	}
}

// DecompileService owns one decoded prototype tree and offers
// thread-safe read operations over it. It backs the HTTP API's
// per-session handlers; the inspector does not use it.
type DecompileService struct {
	mu   sync.RWMutex
	root *bytecode.Prototype
	opts decompiler.Options
}

// NewDecompileService creates a service over an already-decoded
// prototype tree.
func NewDecompileService(root *bytecode.Prototype, opts decompiler.Options) *DecompileService {
	return &DecompileService{root: root, opts: opts}
}

// Options returns the service's current default decompiler options.
func (s *DecompileService) Options() decompiler.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// SetOptions replaces the service's default decompiler options.
func (s *DecompileService) SetOptions(opts decompiler.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// selectProto walks path (child index at each level) from the root.
// Must be called with s.mu held.
func (s *DecompileService) selectProto(path []int) (*bytecode.Prototype, error) {
	p := s.root
	for depth, idx := range path {
		if idx < 0 || idx >= len(p.Protos) {
			return nil, fmt.Errorf("invalid prototype path %v at depth %d", path, depth)
		}
		p = p.Protos[idx]
	}
	return p, nil
}

// Prototypes returns a flattened summary of every prototype in the
// tree, in depth-first order.
func (s *DecompileService) Prototypes() []PrototypeSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PrototypeSummary
	var walk func(p *bytecode.Prototype, path []int)
	walk = func(p *bytecode.Prototype, path []int) {
		pathCopy := append([]int(nil), path...)
		out = append(out, PrototypeSummary{
			Path:             pathCopy,
			Source:           p.Source,
			FirstLine:        p.FirstLine,
			LastLine:         p.LastLine,
			NumParams:        p.NumParams,
			NumUpvalues:      p.NumUpvals,
			IsVararg:         p.IsVararg,
			InstructionCount: len(p.Instructions),
			ConstantCount:    len(p.Constants),
			ChildCount:       len(p.Protos),
			HasDebugInfo:     p.HasDebugInfo(),
		})
		for i, child := range p.Protos {
			walk(child, append(path, i))
		}
	}
	walk(s.root, nil)

	serviceLog.Printf("Prototypes: returning %d entries", len(out))
	return out
}

// Disassemble returns the disassembly listing for the prototype at
// path.
func (s *DecompileService) Disassemble(path []int) ([]disasm.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.selectProto(path)
	if err != nil {
		return nil, err
	}
	return disasm.Disassemble(p), nil
}

// Decompile returns the reconstructed pseudo-source for the prototype
// at path, using opts (falling back to the service default if opts is
// the zero value's IndentWidth of 0).
func (s *DecompileService) Decompile(path []int, opts decompiler.Options) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.selectProto(path)
	if err != nil {
		return "", err
	}

	if opts.IndentWidth == 0 {
		opts = s.opts
	}

	serviceLog.Printf("Decompile: path=%v", path)
	out, err := decompiler.New(p, opts, len(path)).Decompile()
	if err != nil {
		return "", fmt.Errorf("decompile failed: %w", err)
	}
	return out, nil
}
