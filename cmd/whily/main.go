package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const cliToolVersion = "whily 0.1.0-dev"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	rest, err := opts.parse(args)
	if err != nil {
		failf("%v", err)
		printUsage(stderr)
		return 1
	}
	opts.apply()
	if opts.help {
		printUsage(stdout)
		return 0
	}
	if len(rest) == 0 {
		printUsage(stderr)
		return 1
	}

	switch rest[0] {
	case "help":
		printUsage(stdout)
		return 0
	case "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(&opts, rest[1:])
	case "check":
		return runCheck(&opts, rest[1:])
	case "tokens":
		return runTokens(&opts, rest[1:])
	case "repl":
		return runRepl(&opts, rest[1:])
	case "fetch":
		return runFetch(&opts, rest[1:])
	default:
		return runEntry(&opts, rest)
	}
}

// subcommandArgs parses flags given after a subcommand and rejects anything
// beyond max positional arguments.
func subcommandArgs(opts *options, name string, args []string, max int) ([]string, bool) {
	rest, err := opts.parse(args)
	if err != nil {
		failf("%v", err)
		return nil, false
	}
	opts.apply()
	if len(rest) > max {
		failf("whily %s: unexpected arguments: %s", name, strings.Join(rest[max:], " "))
		return nil, false
	}
	return rest, true
}
