// Package env provides the symbol-lookup facility the analyses resolve
// free names against: lexically chained environments binding names to
// data objects, of which functions are the kind the analyses care about.
package env

import "github.com/funvibe/funmat/internal/types"

// Object is any value an environment can bind a name to.
type Object interface {
	ObjectName() string
}

// TypeMapFunc maps the types of a call's input arguments to the possible
// types of its outputs. Library functions register one of these instead
// of exposing a body the analyses could traverse.
type TypeMapFunc func(argTypes types.TypeSetString) types.TypeSetString

// LibFunction is a library (builtin) function with a registered type
// mapping.
type LibFunction struct {
	Name        string
	TypeMapping TypeMapFunc
}

func (f *LibFunction) ObjectName() string { return f.Name }

// FuncName implements types.Callable.
func (f *LibFunction) FuncName() string { return f.Name }

// Environment is a chained symbol table. Lookups walk the parent chain;
// bindings always go into the innermost table.
type Environment struct {
	parent   *Environment
	bindings map[string]Object
}

// NewEnvironment creates an empty top-level environment.
func NewEnvironment() *Environment {
	return &Environment{bindings: make(map[string]Object)}
}

// Extend creates a child environment chained to e.
func (e *Environment) Extend() *Environment {
	return &Environment{parent: e, bindings: make(map[string]Object)}
}

// Bind binds name to obj in the innermost table.
func (e *Environment) Bind(name string, obj Object) {
	e.bindings[name] = obj
}

// Lookup resolves name through the environment chain. The boolean result
// is false when the name is unbound everywhere.
func (e *Environment) Lookup(name string) (Object, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if obj, ok := cur.bindings[name]; ok {
			return obj, true
		}
	}
	return nil, false
}
