package interpreter

import (
	"fmt"

	"fortio.org/log"
	"lukechampine.com/uint128"

	"github.com/Fish-o/whily/pkg/ast"
	"github.com/Fish-o/whily/pkg/runtime"
)

func (i *Interpreter) evaluateAssign(assign *ast.Assign, store *runtime.Store) error {
	value, err := i.resolveValue(assign.Value, store)
	if err != nil {
		return err
	}
	log.LogVf("eval %s := %d", assign.Target, value)
	store.Set(assign.Target, value)
	return nil
}

func (i *Interpreter) evaluateOperate(op *ast.Operate, store *runtime.Store) error {
	left, err := i.resolveValue(op.Left, store)
	if err != nil {
		return err
	}
	right, err := i.resolveValue(op.Right, store)
	if err != nil {
		return err
	}
	result, err := i.apply(op.Target, left, op.Operator, right)
	if err != nil {
		return err
	}
	log.LogVf("eval %s := %d %s %d = %d", op.Target, left, op.Operator, right, result)
	store.Set(op.Target, result)
	return nil
}

// apply computes left op right, attributing failures to target.
func (i *Interpreter) apply(target string, left uint64, op ast.Operator, right uint64) (uint64, error) {
	switch op {
	case ast.OperatorAdd:
		sum := uint128.From64(left).Add64(right)
		if sum.Hi != 0 {
			return 0, overflow(target)
		}
		return sum.Lo, nil
	case ast.OperatorMultiply:
		product := uint128.From64(left).Mul64(right)
		if product.Hi != 0 {
			return 0, overflow(target)
		}
		return product.Lo, nil
	case ast.OperatorSubtract:
		if left >= right {
			return left - right, nil
		}
		if !i.cfg.AllowUnderflow {
			return 0, underflow(target)
		}
		log.Debugf("%s := %d - %d underflows, clamping to 0", target, left, right)
		return 0, nil
	default:
		return 0, fmt.Errorf("interpreter: unsupported operator %s assigning %s", op, target)
	}
}

func (i *Interpreter) evaluateWhileLoop(loop *ast.While, store *runtime.Store) error {
	if _, ok := store.Get(loop.Control); !ok {
		return unassigned(loop.Control)
	}
	iterations := 0
	for {
		control, _ := store.Get(loop.Control)
		if control == 0 {
			log.LogVf("loop on %s finished after %d iterations", loop.Control, iterations)
			return nil
		}
		iterations++
		if iterations > i.maxIterations {
			return &RuntimeError{Kind: MaxLoopsReached, Name: loop.Control, Limit: i.maxIterations}
		}
		if err := i.evaluateStatement(loop.Body, store); err != nil {
			return err
		}
	}
}

func (i *Interpreter) resolveValue(value ast.Value, store *runtime.Store) (uint64, error) {
	switch v := value.(type) {
	case *ast.Constant:
		return v.Value, nil
	case *ast.Variable:
		current, ok := store.Get(v.Name)
		if !ok {
			return 0, unassigned(v.Name)
		}
		return current, nil
	default:
		return 0, fmt.Errorf("interpreter: unsupported value type %T", value)
	}
}
