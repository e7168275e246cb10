package listing

import (
	"strings"
	"testing"

	"zx16asm/assembler"
)

func TestGenerateIncludesSourceAndSymbols(t *testing.T) {
	a := assembler.New("test.asm")
	source := "L1:\nnop\nj L1\n"
	if !a.Assemble(source) {
		t.Fatalf("Assemble failed: %v", a.Diagnostics.Errors)
	}
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	out := Generate(a, lines)

	if !strings.Contains(out, "ZX16 Assembler Listing") {
		t.Fatal("missing banner")
	}
	if !strings.Contains(out, "   1      L1:") {
		t.Fatalf("missing numbered source line: %s", out)
	}
	if !strings.Contains(out, "L1") || !strings.Contains(out, "(local)") {
		t.Fatal("missing L1 symbol table entry")
	}
	if strings.Contains(out, "__ZX16__") {
		t.Fatal("dunder-named constants should not appear in the printed symbol table")
	}
	if !strings.Contains(out, "RESET_VECTOR") {
		t.Fatal("non-dunder built-in constants should appear in the printed symbol table, matching the original's name.startswith('__') filter")
	}
	if !strings.Contains(out, "Code size:") {
		t.Fatal("missing statistics block")
	}
}
