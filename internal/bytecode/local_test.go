package bytecode

import "testing"

func TestLocalLiveAt(t *testing.T) {
	l := Local{Name: "x", StartPC: 2, EndPC: 5}
	tests := []struct {
		pc   int
		want bool
	}{
		{1, false},
		{2, true},
		{4, true},
		{5, false},
	}
	for _, tt := range tests {
		if got := l.LiveAt(tt.pc); got != tt.want {
			t.Errorf("LiveAt(%d) = %v, want %v", tt.pc, got, tt.want)
		}
	}
}
