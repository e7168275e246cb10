// Package section implements the ZX16 assembler's three fixed output
// sections as append-only byte buffers with known base addresses.
package section

// Name identifies one of the three fixed ZX16 sections.
type Name string

const (
	Text Name = ".text"
	Data Name = ".data"
	BSS  Name = ".bss"
)

// MemSize is the full 16-bit address space, 64 KiB.
const MemSize = 0x10000

// MMIOBase is the reserved memory-mapped I/O region start. The
// assembler neither emits there specially nor diagnoses overlap.
const MMIOBase = 0xF000

var bases = map[Name]uint16{
	Text: 0x0020,
	Data: 0x8000,
	BSS:  0x9000,
}

// Base returns name's fixed base address.
func Base(name Name) uint16 {
	return bases[name]
}

// Map holds the three section buffers for one assemble invocation.
type Map struct {
	buffers map[Name][]byte
}

// New returns an empty Map with all three sections present.
func New() *Map {
	return &Map{buffers: map[Name][]byte{Text: {}, Data: {}, BSS: {}}}
}

// Append adds bytes to the end of name's buffer.
func (m *Map) Append(name Name, b ...byte) {
	m.buffers[name] = append(m.buffers[name], b...)
}

// AppendWord appends a 16-bit word little-endian: low byte, then high
// byte, per §3's encoding invariant.
func (m *Map) AppendWord(name Name, word uint16) {
	m.Append(name, byte(word&0xFF), byte(word>>8))
}

// Bytes returns name's buffer.
func (m *Map) Bytes(name Name) []byte {
	return m.buffers[name]
}

// Len returns the number of bytes written to name so far.
func (m *Map) Len(name Name) int {
	return len(m.buffers[name])
}
