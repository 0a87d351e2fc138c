// Package lexer turns WHILE-program source text into tokens.
package lexer

import (
	"strconv"
	"unicode"

	"fortio.org/log"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/config"
)

// Symbolize scans src left to right and returns its tokens in source order.
// Pragmas (`#flag`) switch flags on in cfg as they are encountered, so the
// remainder of src and every later stage of the run observe them. The first
// problem aborts the scan with a *LexError.
func Symbolize(cfg *config.Config, src string) ([]Token, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	s := &symbolizer{
		cfg:  cfg,
		src:  []rune(src),
		line: 1,
		col:  1,
	}
	return s.run()
}

type symbolizer struct {
	cfg    *config.Config
	src    []rune
	pos    int
	line   int
	col    int
	tokens []Token
}

func (s *symbolizer) run() ([]Token, error) {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		line, col := s.line, s.col
		switch {
		case ch == '#':
			if err := s.pragma(); err != nil {
				return nil, err
			}
		case ch == '[':
			s.comment()
		case ch == ':' || ch == '!':
			if s.peek() != '=' {
				return nil, s.fail(UnknownSymbol, line, col, string(ch))
			}
			s.advance()
			s.advance()
			if ch == ':' {
				s.emit(Declare(), line, col)
			} else {
				s.emit(NotEquals(), line, col)
			}
		case ch == '+':
			s.advance()
			s.emit(Operator(ast.OperatorAdd), line, col)
		case ch == '-':
			s.advance()
			s.emit(Operator(ast.OperatorSubtract), line, col)
		case ch == '*':
			s.advance()
			s.emit(Operator(ast.OperatorMultiply), line, col)
		case ch == ';':
			s.advance()
			s.emit(EndOfStatement(), line, col)
		case isDigit(ch):
			text := s.take(isDigit)
			value, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return nil, s.fail(UnknownSymbol, line, col, text)
			}
			s.emit(Constant(value), line, col)
		case isWordStart(ch):
			word := s.take(isWordPart)
			tok, ok := s.classify(word)
			if !ok {
				return nil, s.fail(UnknownSymbol, line, col, word)
			}
			s.emit(tok, line, col)
		case unicode.IsSpace(ch):
			s.advance()
		default:
			return nil, s.fail(UnknownSymbol, line, col, string(ch))
		}
	}
	return s.tokens, nil
}

// classify decides what a maximal identifier-like run means. A keyword must
// match the whole run, so `doer` is never `do` followed by `er`.
func (s *symbolizer) classify(word string) (Token, bool) {
	if IsKeyword(word) {
		return Keyword(word), true
	}
	if IsIndexedVariable(word) {
		return Variable(word), true
	}
	if s.cfg.AllowNamedVars {
		return Variable(word), true
	}
	return Token{}, false
}

func (s *symbolizer) pragma() error {
	line, col := s.line, s.col
	s.advance() // '#'
	name := s.take(isWordPart)
	if name == "" {
		return s.fail(UnknownSymbol, line, col, "#")
	}
	if err := s.cfg.Enable(name); err != nil {
		return s.fail(UnknownPragma, line, col, name)
	}
	log.LogVf("pragma #%s enabled at %d:%d", name, line, col)
	return nil
}

// comment skips to just past the next ']'. Comments do not nest; an
// unterminated comment swallows the rest of the input.
func (s *symbolizer) comment() {
	s.advance() // '['
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		s.advance()
		if ch == ']' {
			return
		}
	}
}

func (s *symbolizer) emit(tok Token, line, col int) {
	tok.Line = line
	tok.Column = col
	s.tokens = append(s.tokens, tok)
}

func (s *symbolizer) fail(kind ErrorKind, line, col int, text string) error {
	return &LexError{Kind: kind, Line: line, Column: col, Text: text}
}

func (s *symbolizer) peek() rune {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *symbolizer) advance() {
	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	s.pos++
}

func (s *symbolizer) take(accept func(rune) bool) string {
	start := s.pos
	for s.pos < len(s.src) && accept(s.src[s.pos]) {
		s.advance()
	}
	return string(s.src[start:s.pos])
}

// IsIndexedVariable reports whether name has the canonical x<digits> form.
func IsIndexedVariable(name string) bool {
	if len(name) < 2 || name[0] != 'x' {
		return false
	}
	for _, ch := range name[1:] {
		if !isDigit(ch) {
			return false
		}
	}
	return true
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isWordPart(ch rune) bool {
	return isWordStart(ch) || isDigit(ch)
}
