package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/config"
	"github.com/Fish-o/whily/pkg/interpreter"
	"github.com/Fish-o/whily/pkg/lexer"
	"github.com/Fish-o/whily/pkg/parser"
	"github.com/Fish-o/whily/pkg/runtime"
)

const (
	historyFile = "history"
	promptMain  = "whily> "
	promptCont  = "  ...> "
)

// replSession accumulates the statements entered so far. Every evaluation
// re-runs the whole program from an empty store.
type replSession struct {
	base    config.Config
	limit   int
	program string
}

func (s *replSession) combine(input string) string {
	if strings.TrimSpace(s.program) == "" {
		return input
	}
	return s.program + ";\n" + input
}

// complete reports whether input can be evaluated as is. Input that only
// fails because it ends early asks for a continuation line.
func (s *replSession) complete(input string) bool {
	cfg := s.base
	tokens, err := lexer.Symbolize(&cfg, s.combine(input))
	if err != nil {
		return true
	}
	_, err = parser.ParseProgram(cfg, tokens)
	return !parser.IsIncomplete(err)
}

// eval runs the program extended by input and keeps input only on success.
func (s *replSession) eval(input string) (*runtime.Store, error) {
	src := s.combine(input)
	cfg := s.base
	store, err := interpreter.Execute(&cfg, src, interpreter.WithMaxIterations(s.limit))
	if err != nil {
		return nil, err
	}
	s.program = src
	return store, nil
}

func (s *replSession) reset() {
	s.program = ""
}

// show renders the accumulated program in canonical form.
func (s *replSession) show() string {
	if strings.TrimSpace(s.program) == "" {
		return ""
	}
	cfg := s.base
	tokens, err := lexer.Symbolize(&cfg, s.program)
	if err != nil {
		return s.program + "\n"
	}
	stmt, err := parser.ParseProgram(cfg, tokens)
	if err != nil {
		return s.program + "\n"
	}
	return ast.Format(stmt)
}

// command handles a ':' line and reports whether the REPL should exit.
func (s *replSession) command(w io.Writer, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q", ":exit":
		return true
	case ":reset":
		s.reset()
		fmt.Fprintln(w, "Program cleared.")
	case ":show":
		fmt.Fprint(w, s.show())
	case ":flags":
		fmt.Fprintf(w, "flags: %s, loop limit %d\n", s.base, s.limit)
	default:
		fmt.Fprintln(w, "commands: :show :reset :flags :quit")
	}
	return false
}

func runRepl(opts *options, args []string) int {
	if _, ok := subcommandArgs(opts, "repl", args, 0); !ok {
		return 1
	}
	var base config.Config
	manifestLoops := 0
	if manifest, err := loadManifestFrom("."); err == nil {
		base = manifest.Config()
		manifestLoops = manifest.MaxLoops
	}
	session := &replSession{
		base:  opts.config(base),
		limit: opts.loopLimit(manifestLoops),
	}

	fmt.Fprintf(stdout, "%s (flags: %s). Type :quit to exit.\n", cliToolVersion, session.base)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := resolveWhilyHome(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, ok := readByParseProbe(ln, session)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if session.command(stdout, code) {
				return 0
			}
			continue
		}

		start := time.Now()
		store, err := session.eval(code)
		if err != nil {
			reportError(err)
			continue
		}
		printStore(stdout, store, time.Since(start))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

func readByParseProbe(ln *liner.State, session *replSession) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || strings.TrimSpace(src) == "" {
			return src, true
		}
		if session.complete(src) {
			return src, true
		}
	}
}
