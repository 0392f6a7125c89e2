package runtime

import "lox-lang/internal/token"

// Environment represents a variable scope with a parent chain.
//
// A closure keeps its defining Environment reachable through FuncVal, so
// an environment lives as long as any scope or function still refers to it.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent returns the enclosing environment, or nil for globals.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Len returns the number of bindings in this scope only.
func (e *Environment) Len() int {
	return len(e.values)
}

// Define binds name in this scope, replacing an existing binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Owner returns the nearest environment in the chain that binds name.
func (e *Environment) Owner(name string) *Environment {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			return env
		}
	}
	return nil
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name token.Token) (Value, error) {
	if env := e.Owner(name.Lexeme); env != nil {
		return env.values[name.Lexeme], nil
	}
	return nil, undefined(name)
}

// Assign updates the nearest existing binding. It never creates one.
func (e *Environment) Assign(name token.Token, value Value) error {
	env := e.Owner(name.Lexeme)
	if env == nil {
		return undefined(name)
	}
	env.values[name.Lexeme] = value
	return nil
}

// Ancestor returns the environment exactly distance links up the chain.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt reads name directly from the environment distance links up,
// without searching the chain.
func (e *Environment) GetAt(distance int, name token.Token) (Value, error) {
	if env := e.Ancestor(distance); env != nil {
		if val, exists := env.values[name.Lexeme]; exists {
			return val, nil
		}
	}
	return nil, undefined(name)
}

// AssignAt writes name directly in the environment distance links up.
func (e *Environment) AssignAt(distance int, name token.Token, value Value) error {
	env := e.Ancestor(distance)
	if env == nil {
		return undefined(name)
	}
	if _, exists := env.values[name.Lexeme]; !exists {
		return undefined(name)
	}
	env.values[name.Lexeme] = value
	return nil
}

func undefined(name token.Token) *RuntimeError {
	return runtimeErr(name, "Undefined variable '%s'.", name.Lexeme)
}
