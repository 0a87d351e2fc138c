package lexer

import (
	"strconv"

	"github.com/Fish-o/whily/pkg/ast"
)

// Kind identifies the variant held by a Token.
type Kind uint8

const (
	KindVariable Kind = iota
	KindConstant
	KindKeyword
	KindOperator
	KindDeclare        // :=
	KindNotEquals      // !=
	KindEndOfStatement // ;
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindKeyword:
		return "keyword"
	case KindOperator:
		return "operator"
	case KindDeclare:
		return "':='"
	case KindNotEquals:
		return "'!='"
	case KindEndOfStatement:
		return "';'"
	default:
		return "token"
	}
}

// Reserved words.
const (
	KeywordWhile = "while"
	KeywordDo    = "do"
	KeywordOd    = "od"
)

var keywords = []string{KeywordWhile, KeywordDo, KeywordOd}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	for _, kw := range keywords {
		if kw == word {
			return true
		}
	}
	return false
}

// Token is one lexical unit. Only the field matching Kind is meaningful;
// Line and Column locate the first character of the token.
type Token struct {
	Kind     Kind
	Name     string
	Value    uint64
	Keyword  string
	Operator ast.Operator
	Line     int
	Column   int
}

func Variable(name string) Token { return Token{Kind: KindVariable, Name: name} }

func Constant(value uint64) Token { return Token{Kind: KindConstant, Value: value} }

func Keyword(word string) Token { return Token{Kind: KindKeyword, Keyword: word} }

func Operator(op ast.Operator) Token { return Token{Kind: KindOperator, Operator: op} }

func Declare() Token { return Token{Kind: KindDeclare} }

func NotEquals() Token { return Token{Kind: KindNotEquals} }

func EndOfStatement() Token { return Token{Kind: KindEndOfStatement} }

// Is reports whether t is the given keyword.
func (t Token) Is(keyword string) bool {
	return t.Kind == KindKeyword && t.Keyword == keyword
}

// Same compares token content, ignoring position.
func (t Token) Same(other Token) bool {
	t.Line, t.Column = 0, 0
	other.Line, other.Column = 0, 0
	return t == other
}

// String renders the token as it is written in source.
func (t Token) String() string {
	switch t.Kind {
	case KindVariable:
		return t.Name
	case KindConstant:
		return strconv.FormatUint(t.Value, 10)
	case KindKeyword:
		return t.Keyword
	case KindOperator:
		return t.Operator.String()
	case KindDeclare:
		return ":="
	case KindNotEquals:
		return "!="
	case KindEndOfStatement:
		return ";"
	default:
		return "?"
	}
}
