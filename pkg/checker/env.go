package checker

// Environment records the variables known to be assigned at a point of the
// program. A loop body gets a child environment: its assignments are not
// visible after the loop because the body may run zero times.
type Environment struct {
	parent   *Environment
	assigned map[string]struct{}
}

// NewEnvironment creates a new environment with an optional parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:   parent,
		assigned: make(map[string]struct{}),
	}
}

// Define marks name as assigned in the current scope.
func (e *Environment) Define(name string) {
	e.assigned[name] = struct{}{}
}

// Assigned searches the scope chain for name.
func (e *Environment) Assigned(name string) bool {
	if _, ok := e.assigned[name]; ok {
		return true
	}
	if e.parent != nil {
		return e.parent.Assigned(name)
	}
	return false
}

// Extend returns a child environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
