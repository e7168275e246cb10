// Package listing renders a human-readable assembly listing: numbered
// source lines, the resolved symbol table, and summary statistics.
package listing

import (
	"fmt"
	"sort"
	"strings"

	"zx16asm/assembler"
	"zx16asm/section"
)

// Generate renders a, its sourceLines, into a listing report matching
// the shape of the original ZX16 assembler's listing output: a
// banner, numbered source, the symbol table, and a statistics block.
// Like the original, only the dunder-named internal constants
// (__ZX16__, __VERSION__) are hidden from the printed table; the
// other built-in constants and register aliases are shown like any
// other defined symbol.
func Generate(a *assembler.Assembler, sourceLines []string) string {
	var sb strings.Builder

	sb.WriteString("ZX16 Assembler Listing\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, line := range sourceLines {
		fmt.Fprintf(&sb, "%4d      %s\n", i+1, line)
	}

	sb.WriteString("\nSymbol Table:\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")

	symbols := a.Symbols.All()
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })
	definedCount := 0
	for _, sym := range symbols {
		if !sym.Defined {
			continue
		}
		definedCount++
		if strings.HasPrefix(sym.Name, "__") {
			continue
		}
		scope := "local"
		if sym.Global {
			scope = "global"
		}
		fmt.Fprintf(&sb, "%-20s = 0x%04X  (%s)\n", sym.Name, sym.Value, scope)
	}

	textSize := a.Sections.Len(section.Text)
	dataSize := a.Sections.Len(section.Data)

	sb.WriteString("\nStatistics:\n")
	fmt.Fprintf(&sb, "  Code size:    %d bytes\n", textSize)
	fmt.Fprintf(&sb, "  Data size:    %d bytes\n", dataSize)
	fmt.Fprintf(&sb, "  Total size:   %d bytes\n", textSize+dataSize)
	fmt.Fprintf(&sb, "  Symbols:      %d\n", definedCount)
	fmt.Fprintf(&sb, "  Lines:        %d\n", len(sourceLines))

	return sb.String()
}
