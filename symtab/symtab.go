// Package symtab implements the ZX16 assembler's symbol table:
// built-in constants, label/constant definitions, resolution, and
// reference tracking for the cross-reference report.
package symtab

import (
	"fmt"
	"sort"

	"zx16asm/diag"
)

// Symbol is a named 16-bit value tracked by the assembler.
type Symbol struct {
	Name       string
	Value      uint16
	Defined    bool
	Global     bool
	Pos        diag.Position
	References []diag.Position
}

// Table is the symbol table for a single assemble invocation. It is
// keyed by case-sensitive name, per §3 of the data model.
type Table struct {
	symbols map[string]*Symbol
	memSize uint32
}

// builtinRegisterAliases supplements the architecture constants with
// uppercase register-alias symbols (T0, RA, SP, S0, S1, T1, A0, A1)
// bound to their register numbers, matching the original ZX16
// assembler's symbol table population.
var builtinRegisterAliases = []string{"T0", "RA", "SP", "S0", "S1", "T1", "A0", "A1"}

// New creates a Table pre-populated with the built-in architecture
// symbols and register aliases, all defined and global.
func New() *Table {
	t := &Table{symbols: make(map[string]*Symbol)}

	builtins := []struct {
		name  string
		value uint16
	}{
		{"__ZX16__", 1},
		{"__VERSION__", 0x0100},
		{"RESET_VECTOR", 0x0000},
		{"CODE_START", 0x0020},
		{"MMIO_BASE", 0xF000},
		// MEM_SIZE (0x10000) does not fit in 16 bits: it is the size of
		// the address space, one past the largest representable
		// address. Its Value field is 0; the true size is in memSize.
		{"MEM_SIZE", 0x0000},
	}
	for _, b := range builtins {
		t.symbols[b.name] = &Symbol{Name: b.name, Value: b.value, Defined: true, Global: true}
	}
	t.memSize = 0x10000

	for i, name := range builtinRegisterAliases {
		t.symbols[name] = &Symbol{Name: name, Value: uint16(i), Defined: true, Global: true}
	}
	return t
}

// memSize holds MEM_SIZE's true value (0x10000), which overflows the
// 16-bit Symbol.Value field used by every other symbol.
func (t *Table) MemSize() uint32 { return t.memSize }

// Define binds name to value at pos. Redefining an already-defined
// symbol is an error (built-ins may never be redefined, only marked
// global via MarkGlobal).
func (t *Table) Define(name string, value uint16, pos diag.Position, global bool) error {
	if existing, ok := t.symbols[name]; ok && existing.Defined {
		return fmt.Errorf("symbol %q already defined", name)
	}
	t.symbols[name] = &Symbol{Name: name, Value: value, Defined: true, Global: global, Pos: pos}
	return nil
}

// MarkGlobal implements the `.global NAME` directive: it flips an
// already-defined symbol's Global flag. Referencing an undefined name
// is an error.
func (t *Table) MarkGlobal(name string) error {
	sym, ok := t.symbols[name]
	if !ok || !sym.Defined {
		return fmt.Errorf("symbol %q is not defined", name)
	}
	sym.Global = true
	return nil
}

// Resolve returns name's value. Unknown or undefined names are an
// error; callers (package assembler) record the error and substitute
// 0 so pass 2 can continue, per §4.2/§7.
func (t *Table) Resolve(name string, refPos diag.Position) (uint16, error) {
	sym, ok := t.symbols[name]
	if !ok {
		return 0, fmt.Errorf("unknown symbol %q", name)
	}
	if !sym.Defined {
		return 0, fmt.Errorf("undefined symbol %q", name)
	}
	sym.References = append(sym.References, refPos)
	return sym.Value, nil
}

// Reference records a use of name without resolving it. Unknown names
// are ignored. The assembler itself records references through Resolve.
func (t *Table) Reference(name string, pos diag.Position) {
	if sym, ok := t.symbols[name]; ok {
		sym.References = append(sym.References, pos)
	}
}

// Get returns the symbol named name, if any.
func (t *Table) Get(name string) (*Symbol, bool) {
	sym, ok := t.symbols[name]
	return sym, ok
}

// All returns every symbol, sorted by name, for listings and
// cross-reference reports.
func (t *Table) All() []*Symbol {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Symbol, 0, len(names))
	for _, name := range names {
		out = append(out, t.symbols[name])
	}
	return out
}

// IsBuiltin reports whether name names a pre-populated architecture
// constant or register alias rather than a user-defined symbol.
func IsBuiltin(name string) bool {
	switch name {
	case "__ZX16__", "__VERSION__", "RESET_VECTOR", "CODE_START", "MMIO_BASE", "MEM_SIZE":
		return true
	}
	for _, alias := range builtinRegisterAliases {
		if name == alias {
			return true
		}
	}
	return false
}
