package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s: run WHILE programs

Usage:
  whily [flags] run [file.while | target]
  whily [flags] <file.while | target>
  whily [flags] check <file.while | target>
  whily [flags] tokens <file.while | target>
  whily [flags] repl
  whily fetch
  whily version

Flags:
  -N, --allow_named_vars            allow identifiers other than x<N>
  -U, --allow_underflow             clamp subtraction at 0 instead of failing
  -C, --allow_constants_everywhere  allow constants as any operand and plain copies
  -X, --extra_operators             enable '*'
  -m, --max-loops <n>               iterations allowed per loop (default %d)
  -v, --verbose                     trace evaluation
  -p, --no-color                    disable colored output
  -h, --help                        show this help

Without a file, run uses the first target of the nearest %s.
`, cliToolVersion, defaultMaxLoops, manifestName)
}
