// Package interpreter evaluates WHILE statement trees against a variable
// store.
package interpreter

import (
	"fmt"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/config"
	"github.com/Fish-o/whily/pkg/lexer"
	"github.com/Fish-o/whily/pkg/parser"
	"github.com/Fish-o/whily/pkg/runtime"
)

// MaxIterations bounds how many times a single loop execution may run its
// body.
const MaxIterations = 131072

// Interpreter walks statement trees under a fixed configuration.
type Interpreter struct {
	cfg           config.Config
	maxIterations int
}

// Option customises an Interpreter.
type Option func(*Interpreter)

// WithMaxIterations overrides the per-loop iteration ceiling. Values below
// one are ignored.
func WithMaxIterations(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxIterations = n
		}
	}
}

// New returns an interpreter for programs written under cfg.
func New(cfg config.Config, opts ...Option) *Interpreter {
	i := &Interpreter{cfg: cfg, maxIterations: MaxIterations}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Config reports the configuration the interpreter evaluates under.
func (i *Interpreter) Config() config.Config {
	return i.cfg
}

// Run executes stmt against a fresh store. The store is only returned when
// the whole program completes.
func (i *Interpreter) Run(stmt ast.Statement) (*runtime.Store, error) {
	store := runtime.NewStore()
	if err := i.evaluateStatement(stmt, store); err != nil {
		return nil, err
	}
	return store, nil
}

// Run executes stmt with the default iteration ceiling.
func Run(cfg config.Config, stmt ast.Statement) (*runtime.Store, error) {
	return New(cfg).Run(stmt)
}

// Execute symbolizes, parses and runs src. Pragmas in src are applied to
// cfg, so the caller can inspect the effective configuration afterwards.
func Execute(cfg *config.Config, src string, opts ...Option) (*runtime.Store, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	tokens, err := lexer.Symbolize(cfg, src)
	if err != nil {
		return nil, err
	}
	stmt, err := parser.ParseProgram(*cfg, tokens)
	if err != nil {
		return nil, err
	}
	return New(*cfg, opts...).Run(stmt)
}

func (i *Interpreter) evaluateStatement(node ast.Statement, store *runtime.Store) error {
	switch n := node.(type) {
	case *ast.Sequence:
		if err := i.evaluateStatement(n.Left, store); err != nil {
			return err
		}
		return i.evaluateStatement(n.Right, store)
	case *ast.Assign:
		return i.evaluateAssign(n, store)
	case *ast.Operate:
		return i.evaluateOperate(n, store)
	case *ast.While:
		return i.evaluateWhileLoop(n, store)
	case nil:
		return fmt.Errorf("interpreter: nil statement")
	default:
		return fmt.Errorf("interpreter: unsupported statement type: %s", n.NodeType())
	}
}
