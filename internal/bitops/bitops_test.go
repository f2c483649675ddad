package bitops

import "testing"

func TestGetSetBitsRoundTrip(t *testing.T) {
	tests := []struct {
		pos, size uint
		value     uint32
	}{
		{0, 6, 37},
		{6, 8, 255},
		{14, 9, 511},
		{23, 9, 700}, // masked to 9 bits
		{14, 18, 1 << 17},
	}

	for _, tt := range tests {
		word := SetBits(0, tt.value, tt.pos, tt.size)
		got := GetBits(word, tt.pos, tt.size)
		want := tt.value & (uint32(1)<<tt.size - 1)
		if got != want {
			t.Errorf("GetBits(SetBits(0, %d, %d, %d)) = %d, want %d", tt.value, tt.pos, tt.size, got, want)
		}
	}
}

func TestSetBitsPreservesOtherFields(t *testing.T) {
	word := SetBits(0, 0x3F, 0, 6)
	word = SetBits(word, 0xAB, 6, 8)
	if GetBits(word, 0, 6) != 0x3F {
		t.Errorf("opcode field clobbered: %#x", word)
	}
	if GetBits(word, 6, 8) != 0xAB {
		t.Errorf("A field not set: %#x", word)
	}
}

func TestIsRKConstant(t *testing.T) {
	tests := []struct {
		rk   uint32
		want bool
	}{
		{0, false},
		{255, false},
		{256, true},
		{256 | 42, true},
	}
	for _, tt := range tests {
		if got := IsRKConstant(tt.rk); got != tt.want {
			t.Errorf("IsRKConstant(%d) = %v, want %v", tt.rk, got, tt.want)
		}
	}
}

func TestRKToConstantIndex(t *testing.T) {
	tests := []struct {
		rk   uint32
		want uint32
	}{
		{256, 0},
		{256 | 42, 42},
		{256 | 255, 255},
	}
	for _, tt := range tests {
		if got := RKToConstantIndex(tt.rk); got != tt.want {
			t.Errorf("RKToConstantIndex(%d) = %d, want %d", tt.rk, got, tt.want)
		}
	}
}
