package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Fish-o/whily/pkg/lexer"
)

// Rule names the grammar production that failed.
type Rule string

const (
	RuleProgram    Rule = "program"
	RuleAssignment Rule = "assignment"
	RuleWhile      Rule = "while loop"
)

// ParseError describes a token sequence that does not fit the grammar.
// Found is nil when the input ended before the rule was complete.
type ParseError struct {
	Rule     Rule
	Expected string
	Found    *lexer.Token
	Context  string
	Message  string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.Found != nil {
		fmt.Fprintf(&b, " on line %d:%d", e.Found.Line, e.Found.Column)
	}
	fmt.Fprintf(&b, " in %s", e.Rule)
	if e.Context != "" {
		fmt.Fprintf(&b, " '%s'", e.Context)
	}
	fmt.Fprintf(&b, ": expected %s, found %s", e.Expected, describe(e.Found))
	if e.Message != "" {
		b.WriteString(" (")
		b.WriteString(e.Message)
		b.WriteString(")")
	}
	return b.String()
}

// IsIncomplete reports whether err is a parse failure caused by the input
// ending early. More input could still turn it into a valid program.
func IsIncomplete(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr) && perr.Found == nil
}

func describe(tok *lexer.Token) string {
	if tok == nil {
		return "end of program"
	}
	return fmt.Sprintf("'%s'", tok.String())
}
