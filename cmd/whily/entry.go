package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/log"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/checker"
	"github.com/Fish-o/whily/pkg/config"
	"github.com/Fish-o/whily/pkg/driver"
	"github.com/Fish-o/whily/pkg/interpreter"
	"github.com/Fish-o/whily/pkg/lexer"
	"github.com/Fish-o/whily/pkg/parser"
)

const (
	manifestName  = driver.ManifestFileName
	programSuffix = ".while"
)

// program is a resolved source file plus the manifest that governs it.
type program struct {
	path     string
	source   string
	manifest *driver.Manifest
}

func (p *program) baseConfig() config.Config {
	if p.manifest == nil {
		return config.Config{}
	}
	return p.manifest.Config()
}

func (p *program) manifestLoops() int {
	if p.manifest == nil {
		return 0
	}
	return p.manifest.MaxLoops
}

func runEntry(opts *options, args []string) int {
	args, ok := subcommandArgs(opts, "run", args, 1)
	if !ok {
		return 1
	}
	prog, err := resolveProgram(args)
	if err != nil {
		failf("%v", err)
		return 1
	}
	return executeProgram(opts, prog)
}

func executeProgram(opts *options, prog *program) int {
	cfg := opts.config(prog.baseConfig())
	limit := opts.loopLimit(prog.manifestLoops())
	log.LogVf("running %s with flags %s, loop limit %d", prog.path, cfg, limit)

	start := time.Now()
	store, err := interpreter.Execute(&cfg, prog.source, interpreter.WithMaxIterations(limit))
	elapsed := time.Since(start)
	if err != nil {
		reportError(err)
		return 1
	}
	printStore(stdout, store, elapsed)
	return 0
}

func runCheck(opts *options, args []string) int {
	args, ok := subcommandArgs(opts, "check", args, 1)
	if !ok {
		return 1
	}
	prog, err := resolveProgram(args)
	if err != nil {
		failf("%v", err)
		return 1
	}
	cfg := opts.config(prog.baseConfig())
	tokens, err := lexer.Symbolize(&cfg, prog.source)
	if err != nil {
		reportError(err)
		return 1
	}
	stmt, err := parser.ParseProgram(cfg, tokens)
	if err != nil {
		reportError(err)
		return 1
	}
	diags, err := checker.New().CheckProgram(stmt)
	if err != nil {
		failf("%v", err)
		return 1
	}
	for _, diag := range diags {
		warnColor.Fprintf(stderr, "%s: %s\n", prog.path, diag)
	}
	fmt.Fprintf(stdout, "%s: ok (%d statements, flags: %s)\n", prog.path, len(ast.Flatten(stmt)), cfg)
	fmt.Fprint(stdout, ast.Format(stmt))
	return 0
}

func runTokens(opts *options, args []string) int {
	args, ok := subcommandArgs(opts, "tokens", args, 1)
	if !ok {
		return 1
	}
	prog, err := resolveProgram(args)
	if err != nil {
		failf("%v", err)
		return 1
	}
	cfg := opts.config(prog.baseConfig())
	tokens, err := lexer.Symbolize(&cfg, prog.source)
	if err != nil {
		reportError(err)
		return 1
	}
	for _, tok := range tokens {
		fmt.Fprintf(stdout, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Kind, tok)
	}
	return 0
}

// resolveProgram finds the program named by args: nothing means the
// manifest's default target, otherwise a target, a git source or a path.
func resolveProgram(args []string) (*program, error) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		switch {
		case errors.Is(err, driver.ErrManifestNotFound):
			manifest = nil
		case len(args) == 1 && looksLikePathCandidate(args[0]):
			log.Warnf("unable to load manifest (%v); falling back to direct file execution", err)
			manifest = nil
		default:
			return nil, fmt.Errorf("failed to load manifest: %w", err)
		}
	}

	if len(args) == 0 {
		if manifest == nil {
			return nil, fmt.Errorf("whily run requires a manifest target or source file (%s not found)", manifestName)
		}
		target, err := manifest.DefaultTarget()
		if err != nil {
			return nil, err
		}
		return readProgram(manifest.TargetPath(target), manifest)
	}

	candidate := strings.TrimSpace(args[0])
	if manifest != nil && !looksLikePathCandidate(candidate) {
		if target, ok := manifest.FindTarget(candidate); ok {
			return readProgram(manifest.TargetPath(target), manifest)
		}
		if src, ok := manifest.FindSource(candidate); ok {
			fetched, err := fetchSource(src)
			if err != nil {
				return nil, err
			}
			return readProgram(fetched.File, manifest)
		}
	}

	// A file picks up the manifest of its own project, if any.
	active := manifest
	if abs, err := filepath.Abs(candidate); err == nil {
		manifestPath, findErr := driver.FindManifest(filepath.Dir(abs))
		switch {
		case findErr == nil:
			if active == nil || filepath.Clean(active.Path) != filepath.Clean(manifestPath) {
				m, loadErr := driver.LoadManifest(manifestPath)
				if loadErr != nil {
					return nil, fmt.Errorf("failed to read manifest for %s: %w", candidate, loadErr)
				}
				active = m
			}
		case errors.Is(findErr, driver.ErrManifestNotFound):
			active = nil
		default:
			return nil, fmt.Errorf("failed to locate manifest for %s: %w", candidate, findErr)
		}
	}
	return readProgram(candidate, active)
}

func readProgram(path string, manifest *driver.Manifest) (*program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return &program{path: path, source: string(data), manifest: manifest}, nil
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.ContainsAny(arg, `/\`) || strings.Contains(arg, string(os.PathSeparator)) {
		return true
	}
	if filepath.Ext(arg) == programSuffix {
		return true
	}
	return strings.HasPrefix(arg, ".")
}

func resolveWhilyHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("WHILY_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve WHILY_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".whily"), nil
}
