package ast

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// Flatten returns the statements of a Sequence chain in execution order.
func Flatten(stmt Statement) []Statement {
	var out []Statement
	var walk func(Statement)
	walk = func(s Statement) {
		if seq, ok := s.(*Sequence); ok {
			walk(seq.Left)
			walk(seq.Right)
			return
		}
		if s != nil {
			out = append(out, s)
		}
	}
	walk(stmt)
	return out
}

// FormatValue renders a value as it appears in source.
func FormatValue(v Value) string {
	switch n := v.(type) {
	case *Variable:
		return n.Name
	case *Constant:
		return strconv.FormatUint(n.Value, 10)
	default:
		return "<nil>"
	}
}

// Format renders a statement tree as canonical source text, one statement per
// line with loop bodies indented. The output parses back to an equal tree
// under the configuration the tree was parsed with.
func Format(stmt Statement) string {
	var b strings.Builder
	formatBlock(&b, stmt, 0)
	return b.String()
}

func formatBlock(b *strings.Builder, stmt Statement, depth int) {
	stmts := Flatten(stmt)
	for i, s := range stmts {
		formatStatement(b, s, depth)
		if i < len(stmts)-1 {
			b.WriteByte(';')
		}
		b.WriteByte('\n')
	}
}

func formatStatement(b *strings.Builder, stmt Statement, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	switch n := stmt.(type) {
	case *Assign:
		b.WriteString(n.Target)
		b.WriteString(" := ")
		b.WriteString(FormatValue(n.Value))
	case *Operate:
		b.WriteString(n.Target)
		b.WriteString(" := ")
		b.WriteString(FormatValue(n.Left))
		b.WriteByte(' ')
		b.WriteString(n.Operator.String())
		b.WriteByte(' ')
		b.WriteString(FormatValue(n.Right))
	case *While:
		b.WriteString("while ")
		b.WriteString(n.Control)
		b.WriteString(" != 0 do\n")
		formatBlock(b, n.Body, depth+1)
		b.WriteString(indent)
		b.WriteString("od")
	default:
		b.WriteString("<nil>")
	}
}
