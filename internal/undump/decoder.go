package undump

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
)

// Decoder reads a Lua 5.1 bytecode image into a bytecode.Prototype
// tree. It holds the byte slice, a cursor, and the header-derived
// widths/endianness that govern every subsequent multi-byte read
// (spec.md §4.3).
type Decoder struct {
	data   []byte
	cursor int
	header Header
}

// NewDecoder checks the magic and reads the 8 header bytes (their
// values are not checked), returning a Decoder
// positioned at the start of the root prototype.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) < 4 || [4]byte{data[0], data[1], data[2], data[3]} != luaSignature {
		return nil, lerrors.NewNotLuaBytecode("missing \\x1bLua magic")
	}

	d := &Decoder{data: data, cursor: 4}

	h := Header{}
	var err error
	if h.VMVersion, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.Format, err = d.readByte(); err != nil {
		return nil, err
	}
	var endianByte byte
	if endianByte, err = d.readByte(); err != nil {
		return nil, err
	}
	h.BigEndian = endianByte == 0
	if h.IntSize, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.SizeTSize, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.InstructionSize, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.NumberSize, err = d.readByte(); err != nil {
		return nil, err
	}
	if h.IntegralFlag, err = d.readByte(); err != nil {
		return nil, err
	}

	d.header = h
	return d, nil
}

// Header returns the header read from the image.
func (d *Decoder) Header() Header { return d.header }

// Decode decodes the root prototype and, recursively, every nested
// prototype reachable from its CLOSURE children.
func (d *Decoder) Decode() (*bytecode.Prototype, error) {
	return d.decodePrototype()
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.cursor+n > len(d.data) {
		return nil, lerrors.NewMalformedImage(d.cursor, fmt.Sprintf("read past end of buffer (need %d bytes, have %d)", n, len(d.data)-d.cursor))
	}
	b := d.data[d.cursor : d.cursor+n]
	d.cursor += n
	return b, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) byteOrder() binary.ByteOrder {
	if d.header.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (d *Decoder) readUintN(size byte) (uint64, error) {
	b, err := d.take(int(size))
	if err != nil {
		return 0, err
	}
	var buf [8]byte
	if d.header.BigEndian {
		// left-pad so the value lands in the low bits
		copy(buf[8-int(size):], b)
		return binary.BigEndian.Uint64(buf[:]), nil
	}
	copy(buf[:size], b)
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (d *Decoder) readInt() (int, error) {
	v, err := d.readUintN(d.header.IntSize)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (d *Decoder) readSizeT() (int, error) {
	v, err := d.readUintN(d.header.SizeTSize)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (d *Decoder) readDouble() (float64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	bits := d.byteOrder().Uint64(b)
	return math.Float64frombits(bits), nil
}

// readString reads a size_t-prefixed, NUL-terminated string, stripping
// the trailing NUL (spec.md §3: "string payloads carry an on-wire
// trailing NUL that is not part of the string value").
func (d *Decoder) readString() (string, error) {
	size, err := d.readSizeT()
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}
	b, err := d.take(size)
	if err != nil {
		return "", err
	}
	if b[size-1] != 0 {
		return "", lerrors.NewMalformedImage(d.cursor-size, "string payload missing trailing NUL")
	}
	return string(b[:size-1]), nil
}

func (d *Decoder) readInstructionWord() (uint32, error) {
	v, err := d.readUintN(d.header.InstructionSize)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func (d *Decoder) decodePrototype() (*bytecode.Prototype, error) {
	p := &bytecode.Prototype{}

	name, err := d.readString()
	if err != nil {
		return nil, err
	}
	p.Source = name

	if p.FirstLine, err = d.readInt(); err != nil {
		return nil, err
	}
	if p.LastLine, err = d.readInt(); err != nil {
		return nil, err
	}

	numUpvals, err := d.readByte()
	if err != nil {
		return nil, err
	}
	p.NumUpvals = int(numUpvals)

	numParams, err := d.readByte()
	if err != nil {
		return nil, err
	}
	p.NumParams = int(numParams)

	isVararg, err := d.readByte()
	if err != nil {
		return nil, err
	}
	p.IsVararg = isVararg != 0

	maxStack, err := d.readByte()
	if err != nil {
		return nil, err
	}
	p.MaxStackSize = int(maxStack)

	numInstr, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.Instructions = make([]bytecode.Instruction, 0, numInstr)
	for i := 0; i < numInstr; i++ {
		word, err := d.readInstructionWord()
		if err != nil {
			return nil, err
		}
		inst, err := bytecode.DecodeInstruction(word)
		if err != nil {
			return nil, err
		}
		p.Instructions = append(p.Instructions, inst)
	}

	numConst, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.Constants = make([]bytecode.Constant, 0, numConst)
	for i := 0; i < numConst; i++ {
		c, err := d.decodeConstant()
		if err != nil {
			return nil, err
		}
		p.Constants = append(p.Constants, c)
	}

	numProtos, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.Protos = make([]*bytecode.Prototype, 0, numProtos)
	for i := 0; i < numProtos; i++ {
		child, err := d.decodePrototype()
		if err != nil {
			return nil, err
		}
		p.Protos = append(p.Protos, child)
	}

	numLines, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.LineInfo = make([]int, 0, numLines)
	for i := 0; i < numLines; i++ {
		line, err := d.readInt()
		if err != nil {
			return nil, err
		}
		p.LineInfo = append(p.LineInfo, line)
	}

	numLocals, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.Locals = make([]bytecode.Local, 0, numLocals)
	for i := 0; i < numLocals; i++ {
		local, err := d.decodeLocal()
		if err != nil {
			return nil, err
		}
		p.Locals = append(p.Locals, local)
	}

	numUpvalNames, err := d.readInt()
	if err != nil {
		return nil, err
	}
	p.UpvalueNames = make([]string, 0, numUpvalNames)
	for i := 0; i < numUpvalNames; i++ {
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		p.UpvalueNames = append(p.UpvalueNames, name)
	}

	return p, nil
}

func (d *Decoder) decodeConstant() (bytecode.Constant, error) {
	tagByte, err := d.readByte()
	if err != nil {
		return bytecode.Constant{}, err
	}

	switch bytecode.ConstantKind(tagByte) {
	case bytecode.ConstantNil:
		return bytecode.NilConstant(), nil
	case bytecode.ConstantBool:
		b, err := d.readByte()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.BoolConstant(b != 0), nil
	case bytecode.ConstantNumber:
		v, err := d.readDouble()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.NumberConstant(v), nil
	case bytecode.ConstantString:
		s, err := d.readString()
		if err != nil {
			return bytecode.Constant{}, err
		}
		return bytecode.StringConstant(s), nil
	default:
		return bytecode.Constant{}, lerrors.NewMalformedImage(d.cursor-1, fmt.Sprintf("unknown constant tag %d", tagByte))
	}
}

func (d *Decoder) decodeLocal() (bytecode.Local, error) {
	name, err := d.readString()
	if err != nil {
		return bytecode.Local{}, err
	}
	start, err := d.readInt()
	if err != nil {
		return bytecode.Local{}, err
	}
	end, err := d.readInt()
	if err != nil {
		return bytecode.Local{}, err
	}
	return bytecode.Local{Name: name, StartPC: start, EndPC: end}, nil
}
