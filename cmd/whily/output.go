package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/Fish-o/whily/pkg/interpreter"
	"github.com/Fish-o/whily/pkg/lexer"
	"github.com/Fish-o/whily/pkg/parser"
	"github.com/Fish-o/whily/pkg/runtime"
)

var (
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	nameColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// printStore writes the finished state, names padded to equal width.
func printStore(w io.Writer, store *runtime.Store, elapsed time.Duration) {
	successColor.Fprintf(w, "Success! (time: %s)\n", elapsed)
	fmt.Fprintln(w, "\nFinished state:")
	keys := store.Keys()
	if len(keys) == 0 {
		fmt.Fprintln(w, "No variables used.")
		return
	}
	width := 0
	for _, key := range keys {
		if n := len([]rune(key)); n > width {
			width = n
		}
	}
	for _, key := range keys {
		value, _ := store.Get(key)
		nameColor.Fprintf(w, "%-*s", width, key)
		fmt.Fprintf(w, " = %d\n", value)
	}
}

// reportError prints a pipeline failure with a heading naming its stage.
func reportError(err error) {
	var (
		lexErr   *lexer.LexError
		parseErr *parser.ParseError
		rtErr    *interpreter.RuntimeError
	)
	heading := "An error occurred."
	switch {
	case errors.As(err, &lexErr):
		heading = "A syntax error occurred."
	case errors.As(err, &parseErr):
		heading = "A parser error occurred."
	case errors.As(err, &rtErr):
		heading = "A runtime error occurred."
	}
	errorColor.Fprintln(stderr, heading)
	errorColor.Fprintln(stderr, err.Error())
}

func failf(format string, args ...any) {
	errorColor.Fprintf(stderr, format+"\n", args...)
}
