package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/config"
)

func symbolizeOK(t *testing.T, cfg *config.Config, src string) []Token {
	t.Helper()
	tokens, err := Symbolize(cfg, src)
	if err != nil {
		t.Fatalf("Symbolize(%q) error: %v", src, err)
	}
	return tokens
}

func expectLexError(t *testing.T, cfg *config.Config, src string, kind ErrorKind, line, col int) *LexError {
	t.Helper()
	_, err := Symbolize(cfg, src)
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Symbolize(%q) error = %v, want *LexError", src, err)
	}
	if lexErr.Kind != kind || lexErr.Line != line || lexErr.Column != col {
		t.Fatalf("Symbolize(%q) = %s at %d:%d, want %s at %d:%d", src, lexErr.Kind, lexErr.Line, lexErr.Column, kind, line, col)
	}
	return lexErr
}

func sameTokens(t *testing.T, got, want []Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Same(want[i]) {
			t.Fatalf("token %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestSymbolizeAssignmentsAndLoop(t *testing.T) {
	src := "x1 := 5; while x1 != 0 do x1 := x1 - 1 od"
	got := symbolizeOK(t, &config.Config{}, src)
	sameTokens(t, got, []Token{
		Variable("x1"), Declare(), Constant(5), EndOfStatement(),
		Keyword(KeywordWhile), Variable("x1"), NotEquals(), Constant(0), Keyword(KeywordDo),
		Variable("x1"), Declare(), Variable("x1"), Operator(ast.OperatorSubtract), Constant(1),
		Keyword(KeywordOd),
	})
}

func TestSymbolizeRoundTripsSymbols(t *testing.T) {
	src := "x1 := x2 + x3 ; x4 := x5 - 7 ; x6 := x7 * x8 ; while x9 != 0 do x9 := 0 od"
	tokens := symbolizeOK(t, &config.Config{}, src)
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	if got := strings.Join(parts, " "); got != src {
		t.Fatalf("round trip = %q, want %q", got, src)
	}
}

func TestSymbolizeTracksPositions(t *testing.T) {
	tokens := symbolizeOK(t, &config.Config{}, "x1 := 1;\n  x22 := 3")
	last := tokens[len(tokens)-1]
	if last.Line != 2 || last.Column != 10 {
		t.Fatalf("last token at %d:%d, want 2:10", last.Line, last.Column)
	}
	if tokens[4].Line != 2 || tokens[4].Column != 3 {
		t.Fatalf("x22 at %d:%d, want 2:3", tokens[4].Line, tokens[4].Column)
	}
}

func TestSymbolizeComments(t *testing.T) {
	src := "[ header\n with [ inner ] x1 := 1 [ trailing ]"
	tokens := symbolizeOK(t, &config.Config{}, src)
	sameTokens(t, tokens, []Token{Variable("x1"), Declare(), Constant(1)})
	if tokens[0].Line != 2 {
		t.Fatalf("comment newlines not counted: x1 on line %d", tokens[0].Line)
	}

	tokens = symbolizeOK(t, &config.Config{}, "x1 := 1 [ never closed ; x2 := 2")
	if len(tokens) != 3 {
		t.Fatalf("unterminated comment should swallow input, got %v", tokens)
	}
}

func TestSymbolizeUnknownSymbol(t *testing.T) {
	expectLexError(t, &config.Config{}, "x1 := 1;\nx2 = 3", UnknownSymbol, 2, 4)
	expectLexError(t, &config.Config{}, "x1 :", UnknownSymbol, 1, 4)
	expectLexError(t, &config.Config{}, "x1 := 1 / 2", UnknownSymbol, 1, 9)
	expectLexError(t, &config.Config{}, "x1 := 99999999999999999999", UnknownSymbol, 1, 7)
	expectLexError(t, &config.Config{}, "x1 := é", UnknownSymbol, 1, 7)
}

func TestSymbolizeNamedVariablesRequireFlag(t *testing.T) {
	src := "counter := 3"
	lexErr := expectLexError(t, &config.Config{}, src, UnknownSymbol, 1, 1)
	if lexErr.Text != "counter" {
		t.Fatalf("Text = %q, want counter", lexErr.Text)
	}
	expectLexError(t, &config.Config{}, "x := 1", UnknownSymbol, 1, 1)
	expectLexError(t, &config.Config{}, "x1a := 1", UnknownSymbol, 1, 1)

	tokens := symbolizeOK(t, &config.Config{AllowNamedVars: true}, src)
	sameTokens(t, tokens, []Token{Variable("counter"), Declare(), Constant(3)})
}

func TestSymbolizeKeywordNeedsWholeWord(t *testing.T) {
	cfg := &config.Config{AllowNamedVars: true}
	tokens := symbolizeOK(t, cfg, "doer := odd + whiled; do_ := 1")
	sameTokens(t, tokens, []Token{
		Variable("doer"), Declare(), Variable("odd"), Operator(ast.OperatorAdd), Variable("whiled"),
		EndOfStatement(), Variable("do_"), Declare(), Constant(1),
	})

	expectLexError(t, &config.Config{}, "doer := 1", UnknownSymbol, 1, 1)
}

func TestSymbolizePragmaEnablesFlag(t *testing.T) {
	cfg := &config.Config{}
	tokens := symbolizeOK(t, cfg, "#allow_named_vars\nn := 4")
	if !cfg.AllowNamedVars {
		t.Fatalf("pragma did not enable allow_named_vars")
	}
	sameTokens(t, tokens, []Token{Variable("n"), Declare(), Constant(4)})

	cfg = &config.Config{}
	symbolizeOK(t, cfg, "#allow_underflow x1 := 1")
	if !cfg.AllowUnderflow || cfg.AllowNamedVars {
		t.Fatalf("allow_underflow pragma set wrong flags: %+v", cfg)
	}
}

func TestSymbolizePragmaAppliesOnlyAfterward(t *testing.T) {
	cfg := &config.Config{}
	expectLexError(t, cfg, "n := 1; #allow_named_vars m := 2", UnknownSymbol, 1, 1)
	if cfg.AllowNamedVars {
		t.Fatalf("pragma after the failure point must not be applied")
	}
}

func TestSymbolizePragmaErrors(t *testing.T) {
	lexErr := expectLexError(t, &config.Config{}, "x1 := 1;\n #allow_goto", UnknownPragma, 2, 2)
	if lexErr.Text != "allow_goto" {
		t.Fatalf("Text = %q, want allow_goto", lexErr.Text)
	}
	expectLexError(t, &config.Config{}, "# allow_underflow", UnknownSymbol, 1, 1)
}

func TestIsIndexedVariable(t *testing.T) {
	cases := map[string]bool{
		"x0":   true,
		"x123": true,
		"x":    false,
		"y1":   false,
		"x1a":  false,
		"X1":   false,
	}
	for name, want := range cases {
		if got := IsIndexedVariable(name); got != want {
			t.Fatalf("IsIndexedVariable(%q) = %v, want %v", name, got, want)
		}
	}
}
