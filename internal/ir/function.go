package ir

import "github.com/funvibe/funmat/internal/env"

// ProgFunction is a user-defined program function: named formal
// parameters and a body the analyses can traverse. Parent is non-nil for
// nested functions.
type ProgFunction struct {
	Name      string
	InParams  []*SymbolExpr
	OutParams []*SymbolExpr

	// CurrentBody is the body analyses run against. The surrounding
	// compiler may swap it when the function is transformed.
	CurrentBody *StmtSequence

	Parent *ProgFunction

	// LocalEnv resolves free symbols of the body: enclosing functions,
	// library functions, globals.
	LocalEnv *env.Environment
}

// ObjectName implements env.Object.
func (f *ProgFunction) ObjectName() string { return f.Name }

// FuncName implements types.Callable.
func (f *ProgFunction) FuncName() string { return f.Name }
