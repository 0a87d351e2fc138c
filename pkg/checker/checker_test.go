package checker

import (
	"strings"
	"testing"

	"github.com/Fish-o/whily/pkg/ast"
)

func check(t *testing.T, stmt ast.Statement) []Diagnostic {
	t.Helper()
	diags, err := New().CheckProgram(stmt)
	if err != nil {
		t.Fatalf("CheckProgram returned error: %v", err)
	}
	return diags
}

func TestCheckerAcceptsAssignedReads(t *testing.T) {
	prog := ast.Seq(
		ast.Set("x1", ast.Const(3)),
		ast.Set("x2", ast.Const(0)),
		ast.Loop("x1",
			ast.Add("x2", ast.Var("x2"), ast.Var("x1")),
			ast.Sub("x1", ast.Var("x1"), ast.Const(1)),
		),
		ast.Add("x3", ast.Var("x2"), ast.Const(1)),
	)
	if diags := check(t, prog); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckerReportsNeverAssigned(t *testing.T) {
	diags := check(t, ast.Add("x1", ast.Var("x2"), ast.Const(1)))
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Severity != SeverityError || !strings.Contains(diags[0].Message, "x2 is read but never assigned") {
		t.Fatalf("unexpected diagnostic %v", diags[0])
	}
	if diags[0].String() != "error: "+diags[0].Message {
		t.Fatalf("String() = %q", diags[0].String())
	}
}

func TestCheckerLoopBodyAssignmentsDoNotEscape(t *testing.T) {
	prog := ast.Seq(
		ast.Set("x1", ast.Const(1)),
		ast.Loop("x1",
			ast.Set("x2", ast.Const(5)),
			ast.Set("x1", ast.Const(0)),
		),
		ast.Set("x3", ast.Var("x2")),
	)
	diags := check(t, prog)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Severity != SeverityWarning || !strings.Contains(diags[0].Message, "x2 may be read before") {
		t.Fatalf("unexpected diagnostic %v", diags[0])
	}
	if diags[0].Node != ast.Statement(prog.(*ast.Sequence).Right) {
		t.Fatalf("diagnostic attached to %T", diags[0].Node)
	}
}

func TestCheckerReportsStuckLoop(t *testing.T) {
	prog := ast.Seq(
		ast.Set("x1", ast.Const(1)),
		ast.Loop("x1", ast.Set("x2", ast.Const(0))),
	)
	diags := check(t, prog)
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "loop on x1 never assigns x1") {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}

func TestCheckerNestedLoopWritesCount(t *testing.T) {
	prog := ast.Seq(
		ast.Set("x1", ast.Const(2)),
		ast.Set("x2", ast.Const(2)),
		ast.Loop("x1",
			ast.Loop("x2", ast.Sub("x1", ast.Var("x1"), ast.Const(1)), ast.Sub("x2", ast.Var("x2"), ast.Const(1))),
		),
	)
	if diags := check(t, prog); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func TestCheckerRejectsNilProgram(t *testing.T) {
	if _, err := New().CheckProgram(nil); err == nil {
		t.Fatalf("expected error for nil program")
	}
}
