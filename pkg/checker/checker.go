// Package checker runs static checks over a parsed program without
// executing it.
package checker

import (
	"fmt"

	"github.com/Fish-o/whily/pkg/ast"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	// SeverityError marks code that fails whenever it is reached.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic represents a problem found in a program.
type Diagnostic struct {
	Severity Severity
	Message  string
	Node     ast.Statement
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Checker traverses statement trees and records diagnostics.
type Checker struct {
	written     map[string]struct{}
	diagnostics []Diagnostic
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{}
}

// CheckProgram reports reads of variables that may be unassigned and loops
// whose body never writes the control variable.
func (c *Checker) CheckProgram(stmt ast.Statement) ([]Diagnostic, error) {
	if stmt == nil {
		return nil, fmt.Errorf("checker: program is nil")
	}
	c.written = make(map[string]struct{})
	c.diagnostics = nil
	collectWrites(stmt, c.written)
	c.checkStatement(NewEnvironment(nil), stmt)
	return c.diagnostics, nil
}

func (c *Checker) checkStatement(env *Environment, stmt ast.Statement) {
	switch n := stmt.(type) {
	case *ast.Sequence:
		c.checkStatement(env, n.Left)
		c.checkStatement(env, n.Right)
	case *ast.Assign:
		c.checkValue(env, n, n.Value)
		env.Define(n.Target)
	case *ast.Operate:
		c.checkValue(env, n, n.Left)
		c.checkValue(env, n, n.Right)
		env.Define(n.Target)
	case *ast.While:
		c.checkRead(env, n, n.Control)
		body := make(map[string]struct{})
		collectWrites(n.Body, body)
		if _, ok := body[n.Control]; !ok {
			c.report(SeverityWarning, n, "loop on %s never assigns %s and cannot stop once entered", n.Control, n.Control)
		}
		c.checkStatement(env.Extend(), n.Body)
	}
}

func (c *Checker) checkValue(env *Environment, stmt ast.Statement, v ast.Value) {
	if variable, ok := v.(*ast.Variable); ok {
		c.checkRead(env, stmt, variable.Name)
	}
}

func (c *Checker) checkRead(env *Environment, stmt ast.Statement, name string) {
	if env.Assigned(name) {
		return
	}
	if _, ok := c.written[name]; !ok {
		c.report(SeverityError, stmt, "variable %s is read but never assigned", name)
		return
	}
	c.report(SeverityWarning, stmt, "variable %s may be read before it is assigned", name)
}

func (c *Checker) report(severity Severity, stmt ast.Statement, format string, args ...any) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Node:     stmt,
	})
}

func collectWrites(stmt ast.Statement, into map[string]struct{}) {
	switch n := stmt.(type) {
	case *ast.Sequence:
		collectWrites(n.Left, into)
		collectWrites(n.Right, into)
	case *ast.Assign:
		into[n.Target] = struct{}{}
	case *ast.Operate:
		into[n.Target] = struct{}{}
	case *ast.While:
		collectWrites(n.Body, into)
	}
}
