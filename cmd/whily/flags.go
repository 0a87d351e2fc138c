package main

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/log"
	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/Fish-o/whily/pkg/config"
	"github.com/Fish-o/whily/pkg/interpreter"
)

const (
	optString       = "NUCXm:vph"
	defaultMaxLoops = interpreter.MaxIterations
)

var longOptions = map[string]string{
	"--" + config.FlagAllowNamedVars:           "-N",
	"--" + config.FlagAllowUnderflow:           "-U",
	"--" + config.FlagAllowConstantsEverywhere: "-C",
	"--" + config.FlagExtraOperators:           "-X",
	"--max-loops":                              "-m",
	"--verbose":                                "-v",
	"--no-color":                               "-p",
	"--help":                                   "-h",
}

var shortFlagNames = map[rune]string{
	'N': config.FlagAllowNamedVars,
	'U': config.FlagAllowUnderflow,
	'C': config.FlagAllowConstantsEverywhere,
	'X': config.FlagExtraOperators,
}

type options struct {
	flags    []string
	maxLoops int
	verbose  bool
	noColor  bool
	help     bool
}

// parse consumes leading options from args and returns what follows them.
// Long options are rewritten to their short form before getopt sees them.
func (o *options) parse(args []string) ([]string, error) {
	argv := []string{"whily"}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || arg == "-" || !strings.HasPrefix(arg, "-") {
			argv = append(argv, args[i:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			argv = append(argv, arg)
			if arg == "-m" && i+1 < len(args) {
				i++
				argv = append(argv, args[i])
			}
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		short, ok := longOptions[name]
		if !ok {
			short, ok = longOptions["--"+strings.ReplaceAll(name[2:], "-", "_")]
		}
		if !ok {
			return nil, fmt.Errorf("unknown option %s", name)
		}
		argv = append(argv, short)
		switch {
		case hasValue:
			argv = append(argv, value)
		case short == "-m" && i+1 < len(args):
			i++
			argv = append(argv, args[i])
		}
	}

	opts, optind, err := getopt.Getopts(argv, optString)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'N', 'U', 'C', 'X':
			o.flags = append(o.flags, shortFlagNames[opt.Option])
		case 'm':
			n, err := strconv.Atoi(opt.Value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid --max-loops value %q", opt.Value)
			}
			o.maxLoops = n
		case 'v':
			o.verbose = true
		case 'p':
			o.noColor = true
		case 'h':
			o.help = true
		}
	}
	return argv[optind:], nil
}

func (o *options) apply() {
	if o.noColor {
		color.NoColor = true
	}
	if o.verbose {
		log.SetLogLevel(log.Verbose)
	}
}

// config layers the command-line flags over base.
func (o *options) config(base config.Config) config.Config {
	cfg := base
	// parse only records known names
	_ = cfg.EnableAll(o.flags)
	return cfg
}

// loopLimit picks --max-loops, then the manifest, then the default.
func (o *options) loopLimit(manifestLimit int) int {
	switch {
	case o.maxLoops > 0:
		return o.maxLoops
	case manifestLimit > 0:
		return manifestLimit
	default:
		return defaultMaxLoops
	}
}
