package analysis

import (
	"github.com/funvibe/funmat/internal/env"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/typemap"
	"github.com/funvibe/funmat/internal/types"
)

// testFunction wraps a body into a function with the given in and out
// parameter names and a fresh environment with the builtin catalogue.
func testFunction(name string, inParams, outParams []string, body *ir.StmtSequence) *ir.ProgFunction {
	e := env.NewEnvironment()
	typemap.InstallBuiltins(e)

	fn := &ir.ProgFunction{
		Name:        name,
		CurrentBody: body,
		LocalEnv:    e,
	}
	for _, p := range inParams {
		fn.InParams = append(fn.InParams, ir.Symbol(p))
	}
	for _, p := range outParams {
		fn.OutParams = append(fn.OutParams, ir.Symbol(p))
	}

	// The function sees itself through its own environment, the way
	// the loader binds program functions.
	e.Bind(name, fn)
	return fn
}

func inferFunction(fn *ir.ProgFunction, inArgTypes types.TypeSetString) *TypeInferInfo {
	m := NewManager()
	return m.Request(TypeInfer, fn, fn.CurrentBody, inArgTypes).(*TypeInferInfo)
}

func intConst(v int64) *ir.IntConstExpr { return &ir.IntConstExpr{Value: v} }
func fpConst(v float64) *ir.FPConstExpr { return &ir.FPConstExpr{Value: v} }
func sym(name string) *ir.SymbolExpr    { return ir.Symbol(name) }

func assign(l ir.Expression, r ir.Expression) *ir.AssignStmt {
	return ir.Assign(l, r)
}

func binop(op ir.BinaryOp, l, r ir.Expression) *ir.BinaryOpExpr {
	return &ir.BinaryOpExpr{Op: op, Left: l, Right: r}
}

// whileLoop lowers "while cond, body" into the canonical loop form.
func whileLoop(cond ir.Expression, body ...ir.Statement) *ir.LoopStmt {
	return &ir.LoopStmt{
		Init: ir.Seq(),
		Test: ir.Seq(&ir.ExprStmt{Expr: cond}),
		Body: ir.Seq(body...),
		Incr: ir.Seq(),
	}
}

func ifElse(cond ir.Expression, ifBlock, elseBlock []ir.Statement) *ir.IfElseStmt {
	return &ir.IfElseStmt{
		Cond:      cond,
		IfBlock:   ir.Seq(ifBlock...),
		ElseBlock: ir.Seq(elseBlock...),
	}
}

func f64ScalarSet(integer bool) types.TypeSet {
	return types.MakeSet(types.ScalarType(types.MatrixF64, integer))
}

// singleType extracts the sole element of a variable's type set.
func singleType(m VarTypeMap, name string) (types.TypeInfo, bool) {
	set, ok := m[ir.Symbol(name)]
	if !ok || len(set) != 1 {
		return types.TypeInfo{}, false
	}
	return set[0], true
}
