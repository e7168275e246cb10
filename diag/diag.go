// Package diag defines the diagnostic types shared by every assembly
// stage: a source position, a single error or warning, and an ordered
// list that accumulates both without aborting assembly.
package diag

import "fmt"

// Position identifies a location in a source file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Category classifies why a diagnostic was raised.
type Category int

const (
	CategoryLexical Category = iota
	CategorySyntax
	CategorySemantic
	CategoryRange
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryLexical:
		return "lexical"
	case CategorySyntax:
		return "syntax"
	case CategorySemantic:
		return "semantic"
	case CategoryRange:
		return "range"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a diagnostic severe enough to make assembly fail.
type Error struct {
	Pos      Position
	Message  string
	Category Category
	Source   string // raw source line, when available
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: error: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("%s: error: %s\n    %s\n", e.Pos, e.Message, e.Source)
}

// Warning is a diagnostic that never blocks assembly.
type Warning struct {
	Pos     Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// List accumulates errors and warnings across both passes. Nothing
// here aborts on the first failure: callers append and keep going,
// per the "never abort mid-pass" policy.
type List struct {
	Errors   []*Error
	Warnings []*Warning
}

// AddError records an error with no associated source text.
func (l *List) AddError(pos Position, category Category, message string) {
	l.Errors = append(l.Errors, &Error{Pos: pos, Message: message, Category: category})
}

// AddErrorWithSource records an error along with the raw source line.
func (l *List) AddErrorWithSource(pos Position, category Category, message, source string) {
	l.Errors = append(l.Errors, &Error{Pos: pos, Message: message, Category: category, Source: source})
}

// AddWarning records a warning.
func (l *List) AddWarning(pos Position, message string) {
	l.Warnings = append(l.Warnings, &Warning{Pos: pos, Message: message})
}

// HasErrors reports whether any Error (not just Warning) was recorded.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// Summary renders the single terminal status line an assemble run ends
// with: success, or a count of errors and warnings.
func (l *List) Summary() string {
	switch {
	case l.HasErrors():
		return fmt.Sprintf("assembly failed with %d errors, %d warnings", len(l.Errors), len(l.Warnings))
	case len(l.Warnings) > 0:
		return fmt.Sprintf("assembly completed with %d warnings", len(l.Warnings))
	default:
		return "assembly completed successfully"
	}
}
