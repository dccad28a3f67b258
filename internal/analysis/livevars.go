package analysis

import (
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// LiveVarMap holds, for every node, the variables live immediately
// before it executes.
type LiveVarMap map[ir.Node]ir.SymbolSet

// LiveVarInfo is the live-variable analysis result.
type LiveVarInfo struct {
	AnalysisInfo

	LiveVarMap LiveVarMap

	// EntryLiveSet is the set of variables live at function entry.
	EntryLiveSet ir.SymbolSet
}

// computeLiveVars runs the backward live-variable analysis over a
// function body. Output parameters are live at every exit point.
func computeLiveVars(
	m *Manager,
	fn *ir.ProgFunction,
	body *ir.StmtSequence,
	inArgTypes types.TypeSetString,
	returnBottom bool,
) Info {
	info := &LiveVarInfo{
		AnalysisInfo: newAnalysisInfo(),
		LiveVarMap:   make(LiveVarMap),
		EntryLiveSet: make(ir.SymbolSet),
	}

	if returnBottom {
		return info
	}

	exitSet := make(ir.SymbolSet)
	for _, out := range fn.OutParams {
		exitSet.Add(out)
	}

	eng := &Engine[ir.SymbolSet]{
		Direction: Backward,
		Merge:     symbolSetUnion,
		Equal:     ir.SymbolSet.Equal,
		Copy:      ir.SymbolSet.Copy,
		Bottom:    func() ir.SymbolSet { return make(ir.SymbolSet) },
		RetSeed:   exitSet,
		Assign:    liveAssign,
		Expr: func(cur ir.SymbolSet, s *ir.ExprStmt) ir.SymbolSet {
			for sym := range ir.SymbolUses(s.Expr) {
				cur.Add(sym)
			}
			return cur
		},
		Cond: func(cur ir.SymbolSet, s *ir.IfElseStmt) ir.SymbolSet {
			for sym := range ir.SymbolUses(s.Cond) {
				cur.Add(sym)
			}
			return cur
		},
	}

	info.EntryLiveSet = eng.Run(exitSet.Copy(), body)
	info.LiveVarMap = eng.Out

	return info
}

// liveAssign applies the assignment transfer: kill the defined root
// symbols, then add every other symbol the statement reads, index
// arguments of the left-hand sides included.
func liveAssign(cur ir.SymbolSet, s *ir.AssignStmt) ir.SymbolSet {
	for _, lhs := range s.Lhs {
		if root := lhs.RootSymbol(); root != nil {
			delete(cur, root)
		}
	}
	for _, lhs := range s.Lhs {
		root := lhs.RootSymbol()
		for sym := range ir.SymbolUses(lhs) {
			if sym == root {
				continue
			}
			cur.Add(sym)
		}
	}
	for sym := range ir.SymbolUses(s.Rhs) {
		cur.Add(sym)
	}
	return cur
}

func symbolSetUnion(a, b ir.SymbolSet) ir.SymbolSet {
	out := a.Copy()
	for sym := range b {
		out.Add(sym)
	}
	return out
}
