package config

import (
	"errors"
	"strings"
	"testing"
)

func TestEnableSetsOnlyNamedFlag(t *testing.T) {
	cases := []struct {
		name string
		want Config
	}{
		{FlagAllowNamedVars, Config{AllowNamedVars: true}},
		{FlagAllowUnderflow, Config{AllowUnderflow: true}},
		{FlagAllowConstantsEverywhere, Config{AllowConstantsEverywhere: true}},
		{FlagExtraOperators, Config{ExtraOperators: true}},
	}
	for _, tc := range cases {
		var cfg Config
		if err := cfg.Enable(tc.name); err != nil {
			t.Fatalf("Enable(%q) error: %v", tc.name, err)
		}
		if cfg != tc.want {
			t.Fatalf("Enable(%q) = %+v, want %+v", tc.name, cfg, tc.want)
		}
	}
}

func TestEnableUnknownFlag(t *testing.T) {
	var cfg Config
	err := cfg.Enable("allow_everything")
	if !errors.Is(err, ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("config mutated on error: %+v", cfg)
	}
}

func TestEnableAllStopsAtUnknown(t *testing.T) {
	var cfg Config
	err := cfg.EnableAll([]string{FlagExtraOperators, "nope", FlagAllowUnderflow})
	if !errors.Is(err, ErrUnknownFlag) {
		t.Fatalf("expected ErrUnknownFlag, got %v", err)
	}
	if !cfg.ExtraOperators || cfg.AllowUnderflow {
		t.Fatalf("unexpected config after partial enable: %+v", cfg)
	}
}

func TestStringListsEnabledFlags(t *testing.T) {
	if got := (Config{}).String(); got != "strict" {
		t.Fatalf("String() = %q, want strict", got)
	}
	cfg := Config{AllowUnderflow: true, ExtraOperators: true}
	if got, want := cfg.String(), "allow_underflow,extra_operators"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if got := strings.Join(Names(), " "); !strings.HasPrefix(got, FlagAllowNamedVars) {
		t.Fatalf("Names() order unexpected: %s", got)
	}
}
