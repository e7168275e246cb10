// Package assembler drives the ZX16 two-pass assembly algorithm: it
// walks the token stream once to size every statement and assign
// label addresses, then walks it again to resolve symbols and emit
// bytes. It is the only package that understands symbol resolution —
// isa and pseudo work exclusively on already-resolved integers.
package assembler

import (
	"strconv"
	"strings"

	"zx16asm/diag"
	"zx16asm/isa"
	"zx16asm/lexer"
	"zx16asm/pseudo"
	"zx16asm/section"
	"zx16asm/symtab"
)

// Assembler holds all state for one source file's assembly: the
// symbol table, the three output sections, and the accumulated
// diagnostics. It is not safe for concurrent use.
type Assembler struct {
	Diagnostics *diag.List
	Symbols     *symtab.Table
	Sections    *section.Map

	filename       string
	tokens         []lexer.Token
	sourceLines    []string
	currentSection section.Name
	currentAddress uint16
	pendingGlobals []pendingGlobal
}

// pendingGlobal records a .global directive seen during pass 1, whose
// target may be a label defined later in the same file; it is applied
// once the whole file's labels are known.
type pendingGlobal struct {
	name string
	pos  diag.Position
}

// New creates an Assembler for source attributed to filename.
func New(filename string) *Assembler {
	return &Assembler{
		Diagnostics: &diag.List{},
		Symbols:     symtab.New(),
		Sections:    section.New(),
		filename:    filename,
	}
}

// Assemble tokenizes and assembles source, returning true iff no
// error-severity diagnostic was recorded. Warnings never fail the
// build. Safe to call once per Assembler; call New again to reuse.
func (a *Assembler) Assemble(source string) bool {
	a.tokens = lexer.New(source, a.filename).TokenizeAll()
	a.sourceLines = strings.Split(source, "\n")

	a.currentSection = section.Text
	a.currentAddress = section.Base(section.Text)
	a.pass1()

	if a.Diagnostics.HasErrors() {
		return false
	}

	a.currentSection = section.Text
	a.currentAddress = section.Base(section.Text)
	a.pass2()

	return !a.Diagnostics.HasErrors()
}

// cursor is a read-only walk position into a.tokens, used identically
// by both passes.
type cursor struct {
	tokens []lexer.Token
	pos    int
}

func (c *cursor) current() lexer.Token {
	if c.pos >= len(c.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return c.tokens[c.pos]
}

func (c *cursor) advance() {
	if c.pos < len(c.tokens) {
		c.pos++
	}
}

func (c *cursor) atLineEnd() bool {
	t := c.current().Type
	return t == lexer.TokenNewline || t == lexer.TokenEOF || t == lexer.TokenComment
}

func (c *cursor) skipToLineEnd() {
	for !c.atLineEnd() {
		c.advance()
	}
}

func parseImmediate(literal string) int32 {
	v, _ := strconv.ParseInt(literal, 10, 32)
	return int32(v)
}

// addError records an error alongside its source line, when pos falls
// within the assembled text, so downstream diagnostics (Error.Error())
// can render the indented source-context line callers expect.
func (a *Assembler) addError(pos diag.Position, category diag.Category, message string) {
	if pos.Line >= 1 && pos.Line <= len(a.sourceLines) {
		a.Diagnostics.AddErrorWithSource(pos, category, message, a.sourceLines[pos.Line-1])
		return
	}
	a.Diagnostics.AddError(pos, category, message)
}

// --- Pass 1: sizing and label/symbol collection ---

func (a *Assembler) pass1() {
	c := &cursor{tokens: a.tokens}

	for c.current().Type != lexer.TokenEOF {
		tok := c.current()

		switch tok.Type {
		case lexer.TokenNewline, lexer.TokenComment:
			c.advance()

		case lexer.TokenLabel:
			a.defineLabel(tok)
			c.advance()

		case lexer.TokenDirective:
			c.advance()
			a.sizeDirective(tok, c)
			c.skipToLineEnd()

		case lexer.TokenInstruction:
			mnemonic := lowerASCII(tok.Literal)
			c.advance()
			a.sizeInstruction(mnemonic, c)
			c.skipToLineEnd()

		default:
			c.advance()
		}
	}

	for _, g := range a.pendingGlobals {
		if err := a.Symbols.MarkGlobal(g.name); err != nil {
			a.addError(g.pos, diag.CategorySemantic, err.Error())
		}
	}
}

func (a *Assembler) defineLabel(tok lexer.Token) {
	if err := a.Symbols.Define(tok.Literal, a.currentAddress, tok.Pos, false); err != nil {
		a.addError(tok.Pos, diag.CategorySemantic, err.Error())
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (a *Assembler) sizeDirective(directive lexer.Token, c *cursor) {
	name := lowerASCII(directive.Literal)
	switch name {
	case ".org":
		if c.current().Type == lexer.TokenImmediate {
			a.currentAddress = uint16(parseImmediate(c.current().Literal))
			c.advance()
		} else {
			a.addError(directive.Pos, diag.CategorySyntax, "expected address after .org")
		}

	case ".text":
		a.currentSection = section.Text
		a.currentAddress = section.Base(section.Text)

	case ".data":
		a.currentSection = section.Data
		a.currentAddress = section.Base(section.Data)

	case ".bss":
		a.currentSection = section.BSS
		a.currentAddress = section.Base(section.BSS)

	case ".equ", ".set":
		a.sizeEquOrSet(directive, c)

	case ".global":
		if c.current().Type == lexer.TokenInstruction {
			a.pendingGlobals = append(a.pendingGlobals, pendingGlobal{name: c.current().Literal, pos: directive.Pos})
			c.advance()
		} else {
			a.addError(directive.Pos, diag.CategorySyntax, "expected symbol name after .global")
		}

	case ".byte":
		for c.current().Type == lexer.TokenImmediate || c.current().Type == lexer.TokenCharacter {
			a.currentAddress++
			c.advance()
			if c.current().Type == lexer.TokenComma {
				c.advance()
				continue
			}
			break
		}

	case ".word":
		for c.current().Type == lexer.TokenImmediate {
			a.currentAddress += 2
			c.advance()
			if c.current().Type == lexer.TokenComma {
				c.advance()
				continue
			}
			break
		}

	case ".string", ".ascii":
		if c.current().Type == lexer.TokenString {
			n := len(c.current().Literal)
			if name == ".string" {
				n++
			}
			a.currentAddress += uint16(n)
			c.advance()
		} else {
			a.addError(directive.Pos, diag.CategorySyntax, "expected string after "+name)
		}

	case ".space":
		if c.current().Type == lexer.TokenImmediate {
			a.currentAddress += uint16(parseImmediate(c.current().Literal))
			c.advance()
		} else {
			a.addError(directive.Pos, diag.CategorySyntax, "expected size after .space")
		}

	default:
		a.addError(directive.Pos, diag.CategorySemantic, "unknown directive "+name)
	}
}

func (a *Assembler) sizeEquOrSet(directive lexer.Token, c *cursor) {
	if c.current().Type != lexer.TokenInstruction {
		a.addError(directive.Pos, diag.CategorySyntax, "expected symbol name after "+directive.Literal)
		return
	}
	name := c.current().Literal
	pos := c.current().Pos
	c.advance()
	if c.current().Type == lexer.TokenComma {
		c.advance()
	}
	switch c.current().Type {
	case lexer.TokenImmediate:
		value := parseImmediate(c.current().Literal)
		if err := a.Symbols.Define(name, uint16(value), pos, false); err != nil {
			a.addError(pos, diag.CategorySemantic, err.Error())
		}
		c.advance()
	case lexer.TokenInstruction:
		// A forward-referenced symbol here can't be resolved on pass
		// 1 (symbols are only known as defined so far); the original
		// implementation treats this as undefined, and so do we,
		// recording it as a warning rather than silently defining 0.
		ref := c.current().Literal
		if sym, ok := a.Symbols.Get(ref); ok && sym.Defined {
			if err := a.Symbols.Define(name, sym.Value, pos, false); err != nil {
				a.addError(pos, diag.CategorySemantic, err.Error())
			}
		} else {
			a.Diagnostics.AddWarning(pos, "forward reference to '"+ref+"' in "+directive.Literal+" is not supported; "+name+" defined as 0")
			if err := a.Symbols.Define(name, 0, pos, false); err != nil {
				a.addError(pos, diag.CategorySemantic, err.Error())
			}
		}
		c.advance()
	default:
		a.addError(pos, diag.CategorySyntax, "expected value after symbol name")
	}
}

func (a *Assembler) sizeInstruction(mnemonic string, c *cursor) {
	if mnemonic == "li" {
		size := a.peekLISize(c)
		a.currentAddress += uint16(size)
		return
	}
	if pseudo.IsPseudo(mnemonic) {
		a.currentAddress += uint16(pseudo.FixedSize(mnemonic))
		return
	}
	a.currentAddress += 2
}

// peekLISize scans ahead (without consuming) for li's immediate
// operand to decide whether it fits the real instruction (2 bytes) or
// must expand to li16 (4 bytes), matching the original's speculative
// lookahead during sizing.
func (a *Assembler) peekLISize(c *cursor) int {
	saved := c.pos
	var imm int32
	found := false
	for !c.atLineEnd() {
		switch c.current().Type {
		case lexer.TokenImmediate, lexer.TokenCharacter:
			imm = parseImmediate(c.current().Literal)
			found = true
			c.advance()
		default:
			c.advance()
		}
	}
	c.pos = saved
	if !found {
		return 2
	}
	return pseudo.SizeOfLI(imm)
}

// --- Pass 2: symbol resolution, pseudo-expansion, encoding, emission ---

func (a *Assembler) pass2() {
	c := &cursor{tokens: a.tokens}

	for c.current().Type != lexer.TokenEOF {
		tok := c.current()

		switch tok.Type {
		case lexer.TokenNewline, lexer.TokenComment, lexer.TokenLabel:
			c.advance()

		case lexer.TokenDirective:
			c.advance()
			a.emitDirective(tok, c)
			c.skipToLineEnd()

		case lexer.TokenInstruction:
			mnemonic := lowerASCII(tok.Literal)
			c.advance()
			a.emitInstruction(mnemonic, tok.Pos, c)
			c.skipToLineEnd()

		default:
			c.advance()
		}
	}
}

func (a *Assembler) emitDirective(directive lexer.Token, c *cursor) {
	name := lowerASCII(directive.Literal)
	switch name {
	case ".org":
		if c.current().Type == lexer.TokenImmediate {
			a.currentAddress = uint16(parseImmediate(c.current().Literal))
			c.advance()
		}

	case ".text":
		a.currentSection = section.Text
		a.currentAddress = section.Base(section.Text)

	case ".data":
		a.currentSection = section.Data
		a.currentAddress = section.Base(section.Data)

	case ".bss":
		a.currentSection = section.BSS
		a.currentAddress = section.Base(section.BSS)

	case ".equ", ".set", ".global":
		// Fully resolved in pass 1; pass 2 only needs to skip past it,
		// which skipToLineEnd already does for us via c.skipToLineEnd.

	case ".byte":
		for c.current().Type == lexer.TokenImmediate || c.current().Type == lexer.TokenCharacter {
			value := byte(parseImmediate(c.current().Literal))
			a.Sections.Append(a.currentSection, value)
			a.currentAddress++
			c.advance()
			if c.current().Type == lexer.TokenComma {
				c.advance()
				continue
			}
			break
		}

	case ".word":
		for c.current().Type == lexer.TokenImmediate {
			value := uint16(parseImmediate(c.current().Literal))
			a.Sections.AppendWord(a.currentSection, value)
			a.currentAddress += 2
			c.advance()
			if c.current().Type == lexer.TokenComma {
				c.advance()
				continue
			}
			break
		}

	case ".string", ".ascii":
		if c.current().Type == lexer.TokenString {
			data := []byte(c.current().Literal)
			a.Sections.Append(a.currentSection, data...)
			a.currentAddress += uint16(len(data))
			if name == ".string" {
				a.Sections.Append(a.currentSection, 0)
				a.currentAddress++
			}
			c.advance()
		}

	case ".space":
		if c.current().Type == lexer.TokenImmediate {
			n := parseImmediate(c.current().Literal)
			a.Sections.Append(a.currentSection, make([]byte, n)...)
			a.currentAddress += uint16(n)
			c.advance()
		}
	}
}

// operand is one parsed operand token, still tagged by kind so the
// caller can tell a register index from a resolved integer.
type operand struct {
	isRegister bool
	value      int32
}

func (a *Assembler) parseOperands(c *cursor) []operand {
	var operands []operand
	for !c.atLineEnd() {
		tok := c.current()
		switch tok.Type {
		case lexer.TokenComma:
			c.advance()

		case lexer.TokenRegister:
			operands = append(operands, operand{isRegister: true, value: int32(registerIndex(tok.Literal))})
			c.advance()

		case lexer.TokenImmediate, lexer.TokenCharacter:
			operands = append(operands, operand{value: parseImmediate(tok.Literal)})
			c.advance()

		case lexer.TokenInstruction:
			value, err := a.Symbols.Resolve(tok.Literal, tok.Pos)
			if err != nil {
				a.addError(tok.Pos, diag.CategorySemantic, err.Error())
			}
			operands = append(operands, operand{value: int32(value)})
			c.advance()

		case lexer.TokenLParen:
			c.advance()
			if c.current().Type == lexer.TokenRegister {
				operands = append(operands, operand{isRegister: true, value: int32(registerIndex(c.current().Literal))})
				c.advance()
			}
			if c.current().Type == lexer.TokenRParen {
				c.advance()
			}

		default:
			c.advance()
		}
	}
	return operands
}

var registerNumbers = map[string]int{
	"x0": 0, "x1": 1, "x2": 2, "x3": 3, "x4": 4, "x5": 5, "x6": 6, "x7": 7,
	"t0": 0, "ra": 1, "sp": 2, "s0": 3, "s1": 4, "t1": 5, "a0": 6, "a1": 7,
}

func registerIndex(literal string) int {
	return registerNumbers[lowerASCII(literal)]
}

func operandInts(operands []operand) []int32 {
	out := make([]int32, len(operands))
	for i, o := range operands {
		out[i] = o.value
	}
	return out
}

func (a *Assembler) emitInstruction(mnemonic string, pos diag.Position, c *cursor) {
	operandStart := c.pos
	operands := a.parseOperands(c)
	ints := operandInts(operands)

	if mnemonic == "li" || pseudo.IsPseudo(mnemonic) {
		expanded, err := pseudo.Expand(mnemonic, ints, a.currentAddress)
		if err != nil {
			a.addError(pos, diag.CategorySemantic, err.Error())
			// Pass 1 already committed to this statement's size; advance
			// the address by the same amount here so later addresses
			// match pass 1's even when expansion itself fails. No bytes
			// are emitted for this statement.
			a.currentAddress += uint16(a.pseudoSizeFallback(mnemonic, &cursor{tokens: a.tokens, pos: operandStart}))
			return
		}
		for _, insn := range expanded {
			a.encodeAndEmit(insn.Mnemonic, insn.Operands, pos)
		}
		return
	}

	a.encodeAndEmit(mnemonic, ints, pos)
}

// pseudoSizeFallback mirrors peekLISize's sizing decision for a
// pseudo-instruction whose expansion failed outright (e.g. the wrong
// operand count), so pass 2 still advances the address the way pass 1
// already sized it.
func (a *Assembler) pseudoSizeFallback(mnemonic string, operandsAt *cursor) int {
	if mnemonic == "li" {
		return a.peekLISize(operandsAt)
	}
	return pseudo.FixedSize(mnemonic)
}

func (a *Assembler) encodeAndEmit(mnemonic string, operands []int32, pos diag.Position) {
	word, err := isa.Encode(mnemonic, operands, a.currentAddress)
	if err != nil {
		a.addError(pos, diag.CategorySemantic, err.Error())
		a.currentAddress += 2
		return
	}
	a.Sections.AppendWord(a.currentSection, word)
	a.currentAddress += 2
}
