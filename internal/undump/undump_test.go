package undump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunch-go/luadecompy/internal/bytecode"
	"github.com/cpunch-go/luadecompy/internal/lerrors"
	"github.com/cpunch-go/luadecompy/internal/opcode"
)

func samplePrototype() *bytecode.Prototype {
	return &bytecode.Prototype{
		Source:       "test.lua",
		FirstLine:    1,
		LastLine:     10,
		NumUpvals:    0,
		NumParams:    1,
		IsVararg:     false,
		MaxStackSize: 3,
		Instructions: []bytecode.Instruction{
			{Op: opcode.OpLoadK, A: 0, Bx: 0},
			{Op: opcode.OpReturn, A: 0, B: 1},
		},
		Constants: []bytecode.Constant{
			bytecode.NumberConstant(42),
			bytecode.StringConstant("hello"),
			bytecode.BoolConstant(true),
			bytecode.NilConstant(),
		},
		Protos: []*bytecode.Prototype{
			{
				Source:       "",
				FirstLine:    2,
				LastLine:     4,
				NumParams:    0,
				MaxStackSize: 1,
				Instructions: []bytecode.Instruction{{Op: opcode.OpReturn, A: 0, B: 1}},
				LineInfo:     []int{2},
			},
		},
		LineInfo: []int{1, 9},
		Locals: []bytecode.Local{
			{Name: "x", StartPC: 0, EndPC: 2},
		},
		UpvalueNames: []string{},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := samplePrototype()

	enc := NewEncoder(DefaultHeader())
	data, err := enc.Encode(p)
	require.NoError(t, err, "encode")

	dec, err := NewDecoder(data)
	require.NoError(t, err, "new decoder")
	got, err := dec.Decode()
	require.NoError(t, err, "decode")

	assertPrototypesEqual(t, p, got)
}

func TestEncodeDecodeRoundTripBigEndian(t *testing.T) {
	p := samplePrototype()
	h := DefaultHeader()
	h.BigEndian = true

	enc := NewEncoder(h)
	data, err := enc.Encode(p)
	require.NoError(t, err, "encode")

	dec, err := NewDecoder(data)
	require.NoError(t, err, "new decoder")
	assert.True(t, dec.Header().BigEndian, "expected decoded header to report big-endian")

	got, err := dec.Decode()
	require.NoError(t, err, "decode")
	assertPrototypesEqual(t, p, got)
}

func TestDoubleEncodeIsByteIdentical(t *testing.T) {
	p := samplePrototype()
	enc := NewEncoder(DefaultHeader())
	data1, err := enc.Encode(p)
	require.NoError(t, err, "encode")

	dec, err := NewDecoder(data1)
	require.NoError(t, err, "new decoder")
	decoded, err := dec.Decode()
	require.NoError(t, err, "decode")

	enc2 := NewEncoder(dec.Header())
	data2, err := enc2.Encode(decoded)
	require.NoError(t, err, "re-encode")

	assert.Equal(t, data1, data2, "re-encoding a decoded image should be byte-identical")
}

func TestNewDecoderBadMagic(t *testing.T) {
	_, err := NewDecoder([]byte{0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, lerrors.ErrNotLuaBytecode)
}

func TestNewDecoderTruncatedHeader(t *testing.T) {
	_, err := NewDecoder([]byte{0x1b, 'L', 'u', 'a', 0x51})
	require.ErrorIs(t, err, lerrors.ErrMalformedImage)
}

func TestDecodeUnknownConstantTag(t *testing.T) {
	p := &bytecode.Prototype{Source: "x", MaxStackSize: 0}
	enc := NewEncoder(DefaultHeader())
	data, err := enc.Encode(p)
	require.NoError(t, err, "encode")

	// Patch in one constant entry with an invalid tag byte (2).
	dec, err := NewDecoder(data)
	require.NoError(t, err, "new decoder")
	raw := dec.data
	// Find the constants-count int (zero) just after the empty locals/
	// protos/lines sections is brittle to hand-splice; instead exercise
	// decodeConstant directly via a controlled buffer.
	_ = raw

	badConst := []byte{2} // unknown tag
	d2 := &Decoder{data: badConst, header: DefaultHeader()}
	_, err = d2.decodeConstant()
	require.ErrorIs(t, err, lerrors.ErrMalformedImage, "unknown constant tag")
}

func assertPrototypesEqual(t *testing.T, want, got *bytecode.Prototype) {
	t.Helper()
	assert.Equal(t, want.Source, got.Source, "Source")
	assert.Equal(t, want.FirstLine, got.FirstLine, "FirstLine")
	assert.Equal(t, want.LastLine, got.LastLine, "LastLine")
	assert.Equal(t, want.NumParams, got.NumParams, "NumParams")
	assert.Equal(t, want.NumUpvals, got.NumUpvals, "NumUpvals")
	assert.Equal(t, want.IsVararg, got.IsVararg, "IsVararg")
	assert.Equal(t, want.MaxStackSize, got.MaxStackSize, "MaxStackSize")

	require.Len(t, got.Instructions, len(want.Instructions), "instruction count")
	assert.Equal(t, want.Instructions, got.Instructions, "instructions")

	require.Len(t, got.Constants, len(want.Constants), "constant count")
	assert.Equal(t, want.Constants, got.Constants, "constants")

	require.Len(t, got.Protos, len(want.Protos), "proto count")
	for i := range want.Protos {
		assertPrototypesEqual(t, want.Protos[i], got.Protos[i])
	}

	require.Len(t, got.Locals, len(want.Locals), "local count")
	assert.Equal(t, want.Locals, got.Locals, "locals")
}
