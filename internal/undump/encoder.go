package undump

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
)

// Encoder serializes a bytecode.Prototype tree into a Lua 5.1
// bytecode image under a chosen Header. Given the header a Decoder
// produced, re-encoding its own Decode() result is byte-identical
// (spec.md §4.4 round-trip requirement).
type Encoder struct {
	header Header
	buf    []byte
}

// NewEncoder creates an Encoder that writes under the given header.
func NewEncoder(header Header) *Encoder {
	return &Encoder{header: header}
}

// Encode serializes the prototype tree, magic and header included.
func (e *Encoder) Encode(root *bytecode.Prototype) ([]byte, error) {
	e.buf = make([]byte, 0, 256)
	e.buf = append(e.buf, luaSignature[:]...)

	e.writeByte(e.header.VMVersion)
	e.writeByte(e.header.Format)
	if e.header.BigEndian {
		e.writeByte(0)
	} else {
		e.writeByte(1)
	}
	e.writeByte(e.header.IntSize)
	e.writeByte(e.header.SizeTSize)
	e.writeByte(e.header.InstructionSize)
	e.writeByte(e.header.NumberSize)
	e.writeByte(e.header.IntegralFlag)

	if err := e.encodePrototype(root); err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (e *Encoder) writeByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) byteOrder() binary.ByteOrder {
	if e.header.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (e *Encoder) writeUintN(v uint64, size byte) {
	var buf [8]byte
	if e.header.BigEndian {
		binary.BigEndian.PutUint64(buf[:], v)
		e.buf = append(e.buf, buf[8-int(size):]...)
		return
	}
	binary.LittleEndian.PutUint64(buf[:], v)
	e.buf = append(e.buf, buf[:size]...)
}

func (e *Encoder) writeInt(v int) { e.writeUintN(uint64(v), e.header.IntSize) }

func (e *Encoder) writeSizeT(v int) { e.writeUintN(uint64(v), e.header.SizeTSize) }

func (e *Encoder) writeDouble(v float64) {
	var buf [8]byte
	e.byteOrder().PutUint64(buf[:], math.Float64bits(v))
	e.buf = append(e.buf, buf[:]...)
}

// writeString writes a size_t-prefixed, NUL-terminated string; the
// length prefix counts the NUL (spec.md §4.4).
func (e *Encoder) writeString(s string) {
	if s == "" {
		e.writeSizeT(0)
		return
	}
	e.writeSizeT(len(s) + 1)
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

func (e *Encoder) writeInstructionWord(word uint32) {
	e.writeUintN(uint64(word), e.header.InstructionSize)
}

func (e *Encoder) encodePrototype(p *bytecode.Prototype) error {
	e.writeString(p.Source)
	e.writeInt(p.FirstLine)
	e.writeInt(p.LastLine)

	if p.NumUpvals > 0xff || p.NumParams > 0xff || p.MaxStackSize > 0xff {
		return lerrors.NewMalformedImage(-1, "prototype header field exceeds one byte")
	}
	e.writeByte(byte(p.NumUpvals))
	e.writeByte(byte(p.NumParams))
	if p.IsVararg {
		e.writeByte(1)
	} else {
		e.writeByte(0)
	}
	e.writeByte(byte(p.MaxStackSize))

	e.writeInt(len(p.Instructions))
	for _, inst := range p.Instructions {
		word, err := bytecode.EncodeInstruction(inst)
		if err != nil {
			return err
		}
		e.writeInstructionWord(word)
	}

	e.writeInt(len(p.Constants))
	for _, c := range p.Constants {
		if err := e.encodeConstant(c); err != nil {
			return err
		}
	}

	e.writeInt(len(p.Protos))
	for _, child := range p.Protos {
		if err := e.encodePrototype(child); err != nil {
			return err
		}
	}

	e.writeInt(len(p.LineInfo))
	for _, line := range p.LineInfo {
		e.writeInt(line)
	}

	e.writeInt(len(p.Locals))
	for _, l := range p.Locals {
		e.writeString(l.Name)
		e.writeInt(l.StartPC)
		e.writeInt(l.EndPC)
	}

	e.writeInt(len(p.UpvalueNames))
	for _, name := range p.UpvalueNames {
		e.writeString(name)
	}

	return nil
}

func (e *Encoder) encodeConstant(c bytecode.Constant) error {
	switch c.Kind {
	case bytecode.ConstantNil:
		e.writeByte(byte(bytecode.ConstantNil))
	case bytecode.ConstantBool:
		e.writeByte(byte(bytecode.ConstantBool))
		if c.Bool {
			e.writeByte(1)
		} else {
			e.writeByte(0)
		}
	case bytecode.ConstantNumber:
		e.writeByte(byte(bytecode.ConstantNumber))
		e.writeDouble(c.Number)
	case bytecode.ConstantString:
		e.writeByte(byte(bytecode.ConstantString))
		e.writeString(c.Str)
	default:
		return lerrors.NewMalformedImage(-1, fmt.Sprintf("unknown constant kind %d", c.Kind))
	}
	return nil
}
