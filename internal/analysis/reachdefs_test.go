package analysis

import (
	"testing"

	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

func reachDefsOf(fn *ir.ProgFunction) *ReachDefInfo {
	m := NewManager()
	return m.Request(ReachDefs, fn, fn.CurrentBody, nil).(*ReachDefInfo)
}

func TestReachDefsParamsBoundToEntry(t *testing.T) {
	st := assign(sym("y"), sym("x"))
	fn := testFunction("f", []string{"x"}, []string{"y"}, ir.Seq(st))

	info := reachDefsOf(fn)

	defs := info.ReachDefMap[st]
	if defs == nil {
		t.Fatal("no reaching definitions recorded for the statement")
	}
	if !defs[ir.Symbol("x")].OnlyEntryDef() {
		t.Errorf("param x should reach only from entry, got %v", defs[ir.Symbol("x")])
	}
}

func TestReachDefsAssignmentKills(t *testing.T) {
	st1 := assign(sym("x"), intConst(1))
	st2 := assign(sym("x"), intConst(2))
	st3 := assign(sym("y"), sym("x"))
	fn := testFunction("f", nil, nil, ir.Seq(st1, st2, st3))

	info := reachDefsOf(fn)

	defs := info.ReachDefMap[st3][ir.Symbol("x")]
	if len(defs) != 1 || !defs.Contains(st2) {
		t.Errorf("only the second assignment should reach, got %v", defs)
	}
}

func TestReachDefsIfElseJoin(t *testing.T) {
	st1 := assign(sym("x"), intConst(1))
	st2 := assign(sym("x"), intConst(2))
	after := assign(sym("y"), sym("x"))
	fn := testFunction("f", []string{"c"}, nil, ir.Seq(
		ifElse(sym("c"), []ir.Statement{st1}, []ir.Statement{st2}),
		after,
	))

	info := reachDefsOf(fn)

	defs := info.ReachDefMap[after][ir.Symbol("x")]
	if len(defs) != 2 || !defs.Contains(st1) || !defs.Contains(st2) {
		t.Errorf("both branch definitions should reach the join, got %v", defs)
	}
}

func TestReachDefsLoopFixedPoint(t *testing.T) {
	init := assign(sym("x"), intConst(0))
	inLoop := assign(sym("x"), binop(ir.OpPlus, sym("x"), intConst(1)))
	use := assign(sym("y"), sym("x"))
	fn := testFunction("f", []string{"c"}, nil, ir.Seq(
		init,
		whileLoop(sym("c"), inLoop),
		use,
	))

	info := reachDefsOf(fn)

	// Inside the loop body both the init and the loop assignment reach.
	defs := info.ReachDefMap[inLoop][ir.Symbol("x")]
	if !defs.Contains(init) || !defs.Contains(inLoop) {
		t.Errorf("loop entry should merge init and back edge, got %v", defs)
	}

	// After the loop the same two definitions reach the use.
	defs = info.ReachDefMap[use][ir.Symbol("x")]
	if !defs.Contains(init) || !defs.Contains(inLoop) {
		t.Errorf("loop exit should merge init and body, got %v", defs)
	}
}

func TestReachDefsExitMap(t *testing.T) {
	st := assign(sym("y"), intConst(1))
	fn := testFunction("f", nil, []string{"y"}, ir.Seq(st))

	info := reachDefsOf(fn)

	defs := info.ExitDefMap[ir.Symbol("y")]
	if len(defs) != 1 || !defs.Contains(st) {
		t.Errorf("exit defs of y = %v, want the assignment", defs)
	}
}

func TestReachDefsFreeSymbolResolvesToEnvironment(t *testing.T) {
	// g is never assigned: every use can only come from the
	// environment, which is how calls to free function names resolve.
	st := assign(sym("y"), &ir.ParamExpr{Sym: sym("g"), Args: []ir.Expression{intConst(1)}})
	fn := testFunction("f", nil, nil, ir.Seq(st))

	info := reachDefsOf(fn)

	if !info.ReachDefMap[st][ir.Symbol("g")].OnlyEntryDef() {
		t.Error("unassigned symbol must carry only the entry sentinel")
	}
}

func TestReachDefsBottom(t *testing.T) {
	fn := testFunction("f", nil, nil, ir.Seq())
	info := computeReachDefs(NewManager(), fn, fn.CurrentBody, types.TypeSetString{}, true).(*ReachDefInfo)
	if len(info.ReachDefMap) != 0 || len(info.ExitDefMap) != 0 {
		t.Error("bottom reaching definitions must be empty")
	}
}
