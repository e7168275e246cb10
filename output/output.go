// Package output renders an assembled program's sections into the
// formats a ZX16 toolchain consumes downstream: a flat binary image,
// Intel HEX records, a synthesizable Verilog lookup module, and a
// $readmemh-compatible memory file (dense or sparse).
package output

import (
	"fmt"
	"strings"

	"zx16asm/section"
)

// Binary returns the full 64KiB memory image with .text and .data
// placed at their section bases. .bss occupies address space but is
// never written into this image — it holds no initialized data.
func Binary(sections *section.Map) []byte {
	image := make([]byte, section.MemSize)
	place(image, sections, section.Text)
	place(image, sections, section.Data)
	return image
}

func place(image []byte, sections *section.Map, name section.Name) {
	start := section.Base(name)
	copy(image[start:], sections.Bytes(name))
}

// IntelHex returns the program as Intel HEX text: one data record per
// 16-byte chunk of .text then .data, terminated by an EOF record.
func IntelHex(sections *section.Map) string {
	var lines []string
	lines = append(lines, hexRecordsFor(sections, section.Text)...)
	lines = append(lines, hexRecordsFor(sections, section.Data)...)
	lines = append(lines, ":00000001FF")
	return strings.Join(lines, "\n")
}

func hexRecordsFor(sections *section.Map, name section.Name) []string {
	data := sections.Bytes(name)
	if len(data) == 0 {
		return nil
	}
	start := section.Base(name)
	var lines []string
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, hexRecord(start+uint16(i), data[i:end]))
	}
	return lines
}

func hexRecord(address uint16, data []byte) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ":%02X%04X00", len(data), address)
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X", b)
	}
	checksum := uint32(len(data)) + uint32(address>>8) + uint32(address&0xFF)
	for _, b := range data {
		checksum += uint32(b)
	}
	checksum = (-checksum) & 0xFF
	fmt.Fprintf(&sb, "%02X", checksum)
	return sb.String()
}

// Verilog returns a combinational lookup module named moduleName that
// maps a 16-bit address to the word stored there, defaulting to zero
// outside .text/.data.
func Verilog(sections *section.Map, moduleName string) string {
	lines := []string{
		"// ZX16 Program Memory Initialization",
		"// Generated by the ZX16 assembler",
		"",
		fmt.Sprintf("module %s(", moduleName),
		"    input [15:0] addr,",
		"    output reg [15:0] data",
		");",
		"",
		"always @(*) begin",
		"    case (addr)",
	}
	lines = append(lines, verilogCaseArms(sections, section.Text)...)
	lines = append(lines, verilogCaseArms(sections, section.Data)...)
	lines = append(lines,
		"        default: data = 16'h0000;",
		"    endcase",
		"end",
		"",
		"endmodule",
	)
	return strings.Join(lines, "\n")
}

func verilogCaseArms(sections *section.Map, name section.Name) []string {
	data := sections.Bytes(name)
	start := section.Base(name)
	var lines []string
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i]) | uint16(data[i+1])<<8
		addr := start + uint16(i)
		lines = append(lines, fmt.Sprintf("        16'h%04X: data = 16'h%04X;", addr, word))
	}
	return lines
}

// MemoryFile returns a $readmemh-style memory listing: sparse emits
// one "@addr word" line per populated word, dense emits every word of
// the 32768-word address space in order.
func MemoryFile(sections *section.Map, sparse bool) string {
	if sparse {
		return sparseMemoryFile(sections)
	}
	return denseMemoryFile(sections)
}

func sparseMemoryFile(sections *section.Map) string {
	lines := []string{"# ZX16 Sparse Memory File"}
	lines = append(lines, sparseWords(sections, section.Text)...)
	lines = append(lines, sparseWords(sections, section.Data)...)
	return strings.Join(lines, "\n")
}

func sparseWords(sections *section.Map, name section.Name) []string {
	data := sections.Bytes(name)
	start := section.Base(name)
	var lines []string
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i]) | uint16(data[i+1])<<8
		addr := start + uint16(i)
		lines = append(lines, fmt.Sprintf("@%04X %04X", addr, word))
	}
	return lines
}

func denseMemoryFile(sections *section.Map) string {
	const wordCount = section.MemSize / 2
	memory := make([]uint16, wordCount)
	fillWords(memory, sections, section.Text)
	fillWords(memory, sections, section.Data)

	lines := make([]string, 0, wordCount+1)
	lines = append(lines, "# ZX16 Memory File")
	for _, word := range memory {
		lines = append(lines, fmt.Sprintf("%04X", word))
	}
	return strings.Join(lines, "\n")
}

func fillWords(memory []uint16, sections *section.Map, name section.Name) {
	data := sections.Bytes(name)
	start := int(section.Base(name)) / 2
	for i := 0; i+1 < len(data); i += 2 {
		word := uint16(data[i]) | uint16(data[i+1])<<8
		memory[start+i/2] = word
	}
}
