package interpreter

import "fmt"

// ErrorKind classifies runtime failures.
type ErrorKind uint8

const (
	UnassignedVariable ErrorKind = iota
	VariableOverflow
	VariableUnderflow
	MaxLoopsReached
)

func (k ErrorKind) String() string {
	switch k {
	case UnassignedVariable:
		return "UnassignedVariable"
	case VariableOverflow:
		return "VariableOverflow"
	case VariableUnderflow:
		return "VariableUnderflow"
	case MaxLoopsReached:
		return "MaxLoopsReached"
	default:
		return "RuntimeError"
	}
}

// RuntimeError ends a run. Name is the variable involved: the operand for
// UnassignedVariable, the assignment target for overflow and underflow, and
// the control variable for MaxLoopsReached.
type RuntimeError struct {
	Kind  ErrorKind
	Name  string
	Limit int
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case UnassignedVariable:
		return fmt.Sprintf("runtime error: variable %s is used before it is assigned", e.Name)
	case VariableOverflow:
		return fmt.Sprintf("runtime error: variable %s overflowed", e.Name)
	case VariableUnderflow:
		return fmt.Sprintf("runtime error: variable %s underflowed (allow_underflow clamps it to 0)", e.Name)
	case MaxLoopsReached:
		return fmt.Sprintf("runtime error: loop on %s exceeded %d iterations", e.Name, e.Limit)
	default:
		return fmt.Sprintf("runtime error: %s on %s", e.Kind, e.Name)
	}
}

func unassigned(name string) *RuntimeError {
	return &RuntimeError{Kind: UnassignedVariable, Name: name}
}

func overflow(name string) *RuntimeError {
	return &RuntimeError{Kind: VariableOverflow, Name: name}
}

func underflow(name string) *RuntimeError {
	return &RuntimeError{Kind: VariableUnderflow, Name: name}
}
