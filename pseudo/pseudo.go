// Package pseudo expands ZX16 pseudo-instructions into one or more
// real ISA instructions. Like package isa, it operates purely on
// register indices and resolved integers; symbol resolution happens
// upstream in package assembler before either package ever sees an
// operand.
package pseudo

import (
	"fmt"

	"zx16asm/isa"
)

// Instruction is a real-ISA mnemonic paired with operands ready for
// isa.Encode.
type Instruction struct {
	Mnemonic string
	Operands []int32
}

// spRegister and raRegister are the register indices push/pop/call/ret
// hard-code, matching the t0..a1 aliasing (sp=2, ra=1).
const (
	spRegister = 2
	raRegister = 1
)

// fixedSize gives the encoded byte size of every pseudo-instruction
// except `li`, whose size depends on its immediate (see SizeOfLI).
// li16, la, push, pop and neg expand to two real instructions (4
// bytes); everything else here expands to exactly one (2 bytes).
var fixedSize = map[string]int{
	"li16": 4, "la": 4, "push": 4, "pop": 4, "call": 2, "ret": 2,
	"inc": 2, "dec": 2, "neg": 4, "not": 2, "clr": 2, "nop": 2,
}

// IsPseudo reports whether mnemonic is a pseudo-instruction handled by
// this package. `li` is deliberately excluded: it is a real I-type
// instruction that only sometimes expands (see IsLI).
func IsPseudo(mnemonic string) bool {
	_, ok := fixedSize[mnemonic]
	return ok
}

// IsLI reports whether mnemonic is the dual-natured `li`.
func IsLI(mnemonic string) bool {
	return mnemonic == "li"
}

// FixedSize returns the encoded size in bytes of a non-`li` pseudo-instruction.
func FixedSize(mnemonic string) int {
	return fixedSize[mnemonic]
}

// SizeOfLI returns the encoded size of `li rd, imm`: 2 bytes if imm
// fits the real I-type's signed 7-bit range, else 4 (it expands to
// li16, a lui+ori pair).
func SizeOfLI(imm int32) int {
	if imm >= -64 && imm <= 63 {
		return 2
	}
	return 4
}

// Expand lowers a pseudo-instruction (or a too-large `li`) into one or
// more real-ISA instructions at currentAddr. la and call/jal targets
// must already be resolved to absolute addresses by the caller.
func Expand(mnemonic string, operands []int32, currentAddr uint16) ([]Instruction, error) {
	switch mnemonic {
	case "li":
		return expandLI(operands)
	case "li16":
		return expandLI16(operands)
	case "la":
		return expandLA(operands, currentAddr)
	case "push":
		return expandPush(operands)
	case "pop":
		return expandPop(operands)
	case "call":
		return expandCall(operands)
	case "ret":
		return expandRet(operands)
	case "inc":
		return expandInc(operands)
	case "dec":
		return expandDec(operands)
	case "neg":
		return expandNeg(operands)
	case "not":
		return expandNot(operands)
	case "clr":
		return expandClr(operands)
	case "nop":
		return expandNop(operands)
	default:
		return nil, fmt.Errorf("pseudo: %s is not a pseudo-instruction", mnemonic)
	}
}

func requireOperands(mnemonic string, operands []int32, want int) error {
	if len(operands) != want {
		return &isa.OperandCountError{Mnemonic: mnemonic, Want: want, Got: len(operands)}
	}
	return nil
}

func expandLI(operands []int32) ([]Instruction, error) {
	if err := requireOperands("li", operands, 2); err != nil {
		return nil, err
	}
	rd, imm := operands[0], operands[1]
	if imm >= -64 && imm <= 63 {
		return []Instruction{{"li", []int32{rd, imm}}}, nil
	}
	return expandLI16([]int32{rd, imm})
}

func expandLI16(operands []int32) ([]Instruction, error) {
	if err := requireOperands("li16", operands, 2); err != nil {
		return nil, err
	}
	rd, imm16 := operands[0], operands[1]
	upper := (imm16 >> 7) & 0x1FF
	lower := imm16 & 0x7F
	return []Instruction{
		{"lui", []int32{rd, upper}},
		{"ori", []int32{rd, lower}},
	}, nil
}

// expandLA implements §9's corrected fix for the PC-relative `la`
// pseudo. The original expansion wrapped a negative offset into 16
// bits and only patched the lower 7-bit field when it exceeded 63,
// which leaves the upper field wrong for many negative offsets. Here
// the offset is split by sign-extending the low 7 bits first and
// deriving the high field from what remains, so auipc+addi always
// reconstruct the exact offset regardless of sign.
func expandLA(operands []int32, currentAddr uint16) ([]Instruction, error) {
	if err := requireOperands("la", operands, 2); err != nil {
		return nil, err
	}
	rd, target := operands[0], operands[1]
	offset := target - int32(currentAddr)
	lower := isa.SignExtend7(offset & 0x7F)
	upper := (offset - lower) >> 7
	return []Instruction{
		{"auipc", []int32{rd, upper & 0x1FF}},
		{"addi", []int32{rd, lower}},
	}, nil
}

func expandPush(operands []int32) ([]Instruction, error) {
	if err := requireOperands("push", operands, 1); err != nil {
		return nil, err
	}
	rs := operands[0]
	return []Instruction{
		{"addi", []int32{spRegister, -2}},
		{"sw", []int32{rs, 0, spRegister}},
	}, nil
}

func expandPop(operands []int32) ([]Instruction, error) {
	if err := requireOperands("pop", operands, 1); err != nil {
		return nil, err
	}
	rd := operands[0]
	return []Instruction{
		{"lw", []int32{rd, 0, spRegister}},
		{"addi", []int32{spRegister, 2}},
	}, nil
}

func expandCall(operands []int32) ([]Instruction, error) {
	if err := requireOperands("call", operands, 1); err != nil {
		return nil, err
	}
	target := operands[0]
	return []Instruction{{"jal", []int32{raRegister, target}}}, nil
}

func expandRet(operands []int32) ([]Instruction, error) {
	if err := requireOperands("ret", operands, 0); err != nil {
		return nil, err
	}
	return []Instruction{{"jr", []int32{raRegister, 0}}}, nil
}

func expandInc(operands []int32) ([]Instruction, error) {
	if err := requireOperands("inc", operands, 1); err != nil {
		return nil, err
	}
	return []Instruction{{"addi", []int32{operands[0], 1}}}, nil
}

func expandDec(operands []int32) ([]Instruction, error) {
	if err := requireOperands("dec", operands, 1); err != nil {
		return nil, err
	}
	return []Instruction{{"addi", []int32{operands[0], -1}}}, nil
}

func expandNeg(operands []int32) ([]Instruction, error) {
	if err := requireOperands("neg", operands, 1); err != nil {
		return nil, err
	}
	rd := operands[0]
	return []Instruction{
		{"xori", []int32{rd, -1}},
		{"addi", []int32{rd, 1}},
	}, nil
}

func expandNot(operands []int32) ([]Instruction, error) {
	if err := requireOperands("not", operands, 1); err != nil {
		return nil, err
	}
	return []Instruction{{"xori", []int32{operands[0], -1}}}, nil
}

func expandClr(operands []int32) ([]Instruction, error) {
	if err := requireOperands("clr", operands, 1); err != nil {
		return nil, err
	}
	rd := operands[0]
	return []Instruction{{"xor", []int32{rd, rd}}}, nil
}

func expandNop(operands []int32) ([]Instruction, error) {
	if err := requireOperands("nop", operands, 0); err != nil {
		return nil, err
	}
	return []Instruction{{"add", []int32{0, 0}}}, nil
}
