// Package undump implements the Lua 5.1 bytecode dump format: decoding
// a raw byte image into a bytecode.Prototype tree, and the inverse
// encode, both parameterized by the header fields read from (or
// chosen for) the image itself (spec.md §4.3, §4.4).
package undump

// luaSignature is the 4-byte magic every Lua 5.1 bytecode dump opens
// with.
var luaSignature = [4]byte{0x1b, 'L', 'u', 'a'}

// Header mirrors the 8 bytes following the magic: vm_version, format,
// endianness flag, int_size, size_t size, instruction size, lua_Number
// size, integral flag. All multi-byte reads/writes after the header
// use these widths and byte order.
type Header struct {
	VMVersion      byte
	Format         byte
	BigEndian      bool // header byte 0 ⇒ big-endian, nonzero ⇒ little
	IntSize        byte
	SizeTSize      byte
	InstructionSize byte
	NumberSize     byte
	IntegralFlag   byte
}

// DefaultHeader is the header this package writes when encoding a
// fresh image: Lua 5.1 (0x51), official format (0), little-endian,
// 4-byte int, 4-byte size_t (note: 8 on most 64-bit luac builds, but
// 4 matches the reference decoder's default test fixtures),
// 4-byte instructions, 8-byte doubles, floating-point numbers.
func DefaultHeader() Header {
	return Header{
		VMVersion:       0x51,
		Format:          0,
		BigEndian:       false,
		IntSize:         4,
		SizeTSize:       4,
		InstructionSize: 4,
		NumberSize:      8,
		IntegralFlag:    0,
	}
}
