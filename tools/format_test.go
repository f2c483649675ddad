package tools

import (
	"strings"
	"testing"
)

func TestFormatReindent(t *testing.T) {
	input := "if x then\nprint(x)\nend"
	out, err := FormatSource(input)
	if err != nil {
		t.Fatalf("FormatSource: %v", err)
	}

	lines := strings.Split(out, "\n")
	if lines[0] != "if x then" {
		t.Errorf("line 0 = %q, want %q", lines[0], "if x then")
	}
	if lines[1] != "    print(x)" {
		t.Errorf("line 1 = %q, want 4-space indent", lines[1])
	}
	if lines[2] != "end" {
		t.Errorf("line 2 = %q, want %q", lines[2], "end")
	}
}

func TestFormatNestedBlocks(t *testing.T) {
	input := "while true do\nif x then\nbreak\nend\nend"
	out, err := FormatSource(input)
	if err != nil {
		t.Fatalf("FormatSource: %v", err)
	}

	lines := strings.Split(out, "\n")
	if lines[2] != "        break" {
		t.Errorf("nested line = %q, want 8-space indent", lines[2])
	}
}

func TestFormatCompactStyle(t *testing.T) {
	out, err := FormatSourceWithStyle("if x then\nprint(x)\nend", FormatCompact)
	if err != nil {
		t.Fatalf("FormatSourceWithStyle: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[1] != "  print(x)" {
		t.Errorf("compact line = %q, want 2-space indent", lines[1])
	}
}

func TestFormatRepeatUntil(t *testing.T) {
	input := "repeat\nx = x - 1\nuntil x == 0"
	out, err := FormatSource(input)
	if err != nil {
		t.Fatalf("FormatSource: %v", err)
	}
	lines := strings.Split(out, "\n")
	if lines[1] != "    x = x - 1" {
		t.Errorf("repeat body = %q, want 4-space indent", lines[1])
	}
	if lines[2] != "until x == 0" {
		t.Errorf("until line = %q, want no indent", lines[2])
	}
}
