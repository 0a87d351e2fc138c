package lexer

import "fmt"

// ErrorKind classifies lexical failures.
type ErrorKind uint8

const (
	// UnknownSymbol covers unrecognised characters, words that are not legal
	// variables under the active configuration, out-of-range literals, and
	// `#` markers without a flag name.
	UnknownSymbol ErrorKind = iota
	// UnknownPragma is a `#name` whose name is not a configuration flag.
	UnknownPragma
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownSymbol:
		return "UnknownSymbol"
	case UnknownPragma:
		return "UnknownPragma"
	default:
		return "LexError"
	}
}

// LexError reports the first offending input. Line and Column are 1-based.
type LexError struct {
	Kind   ErrorKind
	Line   int
	Column int
	Text   string
}

func (e *LexError) Error() string {
	switch e.Kind {
	case UnknownPragma:
		return fmt.Sprintf("syntax error on line %d:%d: unknown pragma %q", e.Line, e.Column, e.Text)
	default:
		if e.Text == "" {
			return fmt.Sprintf("syntax error on line %d:%d: unknown symbol", e.Line, e.Column)
		}
		return fmt.Sprintf("syntax error on line %d:%d: unknown symbol %q", e.Line, e.Column, e.Text)
	}
}
