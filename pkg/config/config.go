// Package config holds the dialect switches shared by the lexer, parser and
// interpreter. A Config starts from the caller (CLI flags or a manifest) and
// may be widened while lexing when the source contains `#flag` pragmas.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Flag names as written in pragmas, manifests and long command-line options.
const (
	FlagAllowNamedVars           = "allow_named_vars"
	FlagAllowUnderflow           = "allow_underflow"
	FlagAllowConstantsEverywhere = "allow_constants_everywhere"
	FlagExtraOperators           = "extra_operators"
)

// ErrUnknownFlag is returned when a flag name is not one of Names().
var ErrUnknownFlag = errors.New("unknown flag")

// Config selects dialect variants. The zero value is the strict calculus.
type Config struct {
	// AllowNamedVars accepts identifiers other than x<digits> as variables.
	AllowNamedVars bool
	// AllowUnderflow clamps negative subtraction results to zero.
	AllowUnderflow bool
	// AllowConstantsEverywhere permits constants as operands of + - *.
	AllowConstantsEverywhere bool
	// ExtraOperators enables `*`.
	ExtraOperators bool
}

// Names lists every recognised flag in declaration order.
func Names() []string {
	return []string{
		FlagAllowNamedVars,
		FlagAllowUnderflow,
		FlagAllowConstantsEverywhere,
		FlagExtraOperators,
	}
}

func (c *Config) field(name string) (*bool, error) {
	switch strings.TrimSpace(name) {
	case FlagAllowNamedVars:
		return &c.AllowNamedVars, nil
	case FlagAllowUnderflow:
		return &c.AllowUnderflow, nil
	case FlagAllowConstantsEverywhere:
		return &c.AllowConstantsEverywhere, nil
	case FlagExtraOperators:
		return &c.ExtraOperators, nil
	default:
		return nil, fmt.Errorf("config: %w %q", ErrUnknownFlag, name)
	}
}

// Enable switches the named flag on. Flags are never switched off again
// during a run.
func (c *Config) Enable(name string) error {
	ptr, err := c.field(name)
	if err != nil {
		return err
	}
	*ptr = true
	return nil
}

// EnableAll applies Enable to every name, stopping at the first unknown one.
func (c *Config) EnableAll(names []string) error {
	for _, name := range names {
		if err := c.Enable(name); err != nil {
			return err
		}
	}
	return nil
}

// Enabled reports whether the named flag is set.
func (c Config) Enabled(name string) (bool, error) {
	ptr, err := c.field(name)
	if err != nil {
		return false, err
	}
	return *ptr, nil
}

// EnabledNames returns the set flags in declaration order.
func (c Config) EnabledNames() []string {
	var out []string
	for _, name := range Names() {
		if on, _ := c.Enabled(name); on {
			out = append(out, name)
		}
	}
	return out
}

func (c Config) String() string {
	names := c.EnabledNames()
	if len(names) == 0 {
		return "strict"
	}
	return strings.Join(names, ",")
}
