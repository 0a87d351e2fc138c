// Package parser builds statement trees from the token stream produced by
// the lexer.
package parser

import (
	"strings"

	"fortio.org/log"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/config"
	"github.com/Fish-o/whily/pkg/lexer"
)

// Parse reads a program starting at tokens[start]. It stops at the first
// `od` or at the end of tokens and returns the index of the last token it
// consumed. Consecutive statements fold into left-associated sequences.
func Parse(cfg config.Config, tokens []lexer.Token, start int) (int, ast.Statement, error) {
	p := &parser{cfg: cfg, tokens: tokens}
	stmt, next, err := p.program(start)
	if err != nil {
		return 0, nil, err
	}
	return next - 1, stmt, nil
}

// ParseProgram parses a whole token stream. Unlike Parse it rejects
// tokens left over after the program, such as a top-level `od`.
func ParseProgram(cfg config.Config, tokens []lexer.Token) (ast.Statement, error) {
	end, stmt, err := Parse(cfg, tokens, 0)
	if err != nil {
		return nil, err
	}
	if end+1 < len(tokens) {
		tok := tokens[end+1]
		return nil, &ParseError{
			Rule:     RuleProgram,
			Expected: "end of program",
			Found:    &tok,
			Message:  "'od' without a matching 'while'",
		}
	}
	log.Debugf("parsed %d tokens into %d statements", len(tokens), len(ast.Flatten(stmt)))
	return stmt, nil
}

type parser struct {
	cfg    config.Config
	tokens []lexer.Token
}

func (p *parser) at(i int) (*lexer.Token, bool) {
	if i < 0 || i >= len(p.tokens) {
		return nil, false
	}
	return &p.tokens[i], true
}

// program returns the parsed statements and the index of the first token it
// did not consume.
func (p *parser) program(i int) (ast.Statement, int, error) {
	var done, current ast.Statement
	currentStart := i
	for {
		tok, ok := p.at(i)
		if !ok || tok.Is(lexer.KeywordOd) {
			if current == nil {
				msg := ""
				if done != nil {
					msg = "a ';' must be followed by another statement"
				}
				return nil, 0, &ParseError{Rule: RuleProgram, Expected: "a statement", Found: tok, Message: msg}
			}
			return join(done, current), i, nil
		}

		if tok.Kind == lexer.KindEndOfStatement {
			if current == nil {
				return nil, 0, &ParseError{
					Rule:     RuleProgram,
					Expected: "a statement",
					Found:    tok,
					Message:  "';' needs a statement on its left",
				}
			}
			done = join(done, current)
			current = nil
			i++
			continue
		}

		if current != nil {
			return nil, 0, &ParseError{
				Rule:     RuleProgram,
				Expected: "';'",
				Found:    tok,
				Context:  p.context(currentStart, i),
				Message:  "statements must be separated by ';'",
			}
		}

		var (
			stmt ast.Statement
			next int
			err  error
		)
		switch {
		case tok.Kind == lexer.KindVariable:
			stmt, next, err = p.assignment(i)
		case tok.Is(lexer.KeywordWhile):
			stmt, next, err = p.while(i)
		default:
			return nil, 0, &ParseError{Rule: RuleProgram, Expected: "a variable or 'while'", Found: tok}
		}
		if err != nil {
			return nil, 0, err
		}
		current = stmt
		currentStart = i
		i = next
	}
}

func join(left, right ast.Statement) ast.Statement {
	if left == nil {
		return right
	}
	return ast.NewSequence(left, right)
}

// assignment parses `VAR := VALUE [OP VALUE]` starting at the target.
func (p *parser) assignment(start int) (ast.Statement, int, error) {
	target := p.tokens[start].Name
	i := start + 1

	if tok, ok := p.at(i); !ok || tok.Kind != lexer.KindDeclare {
		return nil, 0, p.fail(RuleAssignment, start, i, "':='", "")
	}
	i++

	left, ok := p.value(i)
	if !ok {
		return nil, 0, p.fail(RuleAssignment, start, i, "a variable or constant", "")
	}
	i++

	opTok, ok := p.at(i)
	if !ok || opTok.Kind != lexer.KindOperator {
		if _, isVar := left.(*ast.Variable); isVar && !p.cfg.AllowConstantsEverywhere {
			return nil, 0, p.fail(RuleAssignment, start, i-1, "a constant", "copying a variable requires allow_constants_everywhere")
		}
		return ast.NewAssign(target, left), i, nil
	}
	if opTok.Operator == ast.OperatorMultiply && !p.cfg.ExtraOperators {
		return nil, 0, p.fail(RuleAssignment, start, i, "'+' or '-'", "'*' requires extra_operators")
	}
	if _, isConst := left.(*ast.Constant); isConst && !p.cfg.AllowConstantsEverywhere {
		return nil, 0, p.fail(RuleAssignment, start, i-1, "a variable", "a constant left operand requires allow_constants_everywhere")
	}
	i++

	right, ok := p.value(i)
	if !ok {
		return nil, 0, p.fail(RuleAssignment, start, i, "a variable or constant", "")
	}
	return ast.NewOperate(target, left, opTok.Operator, right), i + 1, nil
}

func (p *parser) value(i int) (ast.Value, bool) {
	tok, ok := p.at(i)
	if !ok {
		return nil, false
	}
	switch tok.Kind {
	case lexer.KindVariable:
		return ast.NewVariable(tok.Name), true
	case lexer.KindConstant:
		return ast.NewConstant(tok.Value), true
	default:
		return nil, false
	}
}

// while parses `while VAR != 0 do PROGRAM od` starting at the keyword.
func (p *parser) while(start int) (ast.Statement, int, error) {
	i := start + 1

	tok, ok := p.at(i)
	if !ok || tok.Kind != lexer.KindVariable {
		return nil, 0, p.fail(RuleWhile, start, i, "a variable", "")
	}
	control := tok.Name
	i++

	if tok, ok = p.at(i); !ok || tok.Kind != lexer.KindNotEquals {
		return nil, 0, p.fail(RuleWhile, start, i, "'!='", "")
	}
	i++

	if tok, ok = p.at(i); !ok || tok.Kind != lexer.KindConstant || tok.Value != 0 {
		return nil, 0, p.fail(RuleWhile, start, i, "'0'", "loops only compare against zero")
	}
	i++

	if tok, ok = p.at(i); !ok || !tok.Is(lexer.KeywordDo) {
		return nil, 0, p.fail(RuleWhile, start, i, "'do'", "")
	}
	i++

	body, next, err := p.program(i)
	if err != nil {
		return nil, 0, err
	}
	if tok, ok = p.at(next); !ok || !tok.Is(lexer.KeywordOd) {
		return nil, 0, &ParseError{
			Rule:     RuleWhile,
			Expected: "'od'",
			Found:    tok,
			Context:  p.context(start, start+5) + " ..",
		}
	}
	return ast.NewWhile(control, body), next + 1, nil
}

// fail reports a problem at tokens[at] while parsing the rule that began at
// tokens[start].
func (p *parser) fail(rule Rule, start, at int, expected, message string) *ParseError {
	found, _ := p.at(at)
	return &ParseError{
		Rule:     rule,
		Expected: expected,
		Found:    found,
		Context:  p.context(start, at),
		Message:  message,
	}
}

func (p *parser) context(start, end int) string {
	if end > len(p.tokens) {
		end = len(p.tokens)
	}
	parts := make([]string, 0, end-start)
	for _, tok := range p.tokens[start:end] {
		parts = append(parts, tok.String())
	}
	return strings.Join(parts, " ")
}
