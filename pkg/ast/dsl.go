package ast

// Short constructors used by tests and tooling that build programs directly.

func Var(name string) *Variable { return NewVariable(name) }

func Const(value uint64) *Constant { return NewConstant(value) }

func Set(target string, value Value) *Assign { return NewAssign(target, value) }

func Op(target string, left Value, op Operator, right Value) *Operate {
	return NewOperate(target, left, op, right)
}

func Add(target string, left, right Value) *Operate {
	return NewOperate(target, left, OperatorAdd, right)
}

func Sub(target string, left, right Value) *Operate {
	return NewOperate(target, left, OperatorSubtract, right)
}

func Mul(target string, left, right Value) *Operate {
	return NewOperate(target, left, OperatorMultiply, right)
}

// Seq folds statements into a left-associated Sequence chain, the shape the
// parser produces. It returns nil for an empty list.
func Seq(stmts ...Statement) Statement {
	var out Statement
	for _, stmt := range stmts {
		if stmt == nil {
			continue
		}
		if out == nil {
			out = stmt
			continue
		}
		out = NewSequence(out, stmt)
	}
	return out
}

func Loop(control string, body ...Statement) *While {
	return NewWhile(control, Seq(body...))
}
