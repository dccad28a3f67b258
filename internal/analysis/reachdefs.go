package analysis

import (
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// VarDefSet is a set of definition sites for one variable. The
// ir.EntryDef sentinel marks a definition reaching from the enclosing
// environment, before function entry.
type VarDefSet map[ir.Statement]struct{}

// Contains reports membership of def in the set.
func (s VarDefSet) Contains(def ir.Statement) bool {
	_, ok := s[def]
	return ok
}

// OnlyEntryDef reports whether the set's sole definition is the
// before-entry sentinel, meaning the name can only resolve through the
// environment.
func (s VarDefSet) OnlyEntryDef() bool {
	return len(s) == 1 && s.Contains(ir.EntryDef)
}

func (s VarDefSet) equal(o VarDefSet) bool {
	if len(s) != len(o) {
		return false
	}
	for def := range s {
		if !o.Contains(def) {
			return false
		}
	}
	return true
}

// VarDefMap maps each variable to the definition sites reaching a
// program point.
type VarDefMap map[*ir.SymbolExpr]VarDefSet

// ReachDefMap holds, for every node, the definitions reaching its entry.
type ReachDefMap map[ir.Node]VarDefMap

// ReachDefInfo is the reaching-definition analysis result.
type ReachDefInfo struct {
	AnalysisInfo

	ReachDefMap ReachDefMap

	// ExitDefMap is the union of the definitions reaching every exit
	// point of the function.
	ExitDefMap VarDefMap
}

// computeReachDefs runs the forward reaching-definition analysis over a
// function body.
func computeReachDefs(
	m *Manager,
	fn *ir.ProgFunction,
	body *ir.StmtSequence,
	inArgTypes types.TypeSetString,
	returnBottom bool,
) Info {
	info := &ReachDefInfo{
		AnalysisInfo: newAnalysisInfo(),
		ReachDefMap:  make(ReachDefMap),
		ExitDefMap:   make(VarDefMap),
	}

	if returnBottom {
		return info
	}

	// Every symbol that is never assigned inside the body can only be
	// defined by the enclosing environment, so the initial map binds
	// all referenced symbols, parameters included, to the sentinel.
	initial := make(VarDefMap)
	for sym := range bodySymbols(body) {
		initial[sym] = VarDefSet{ir.EntryDef: struct{}{}}
	}
	for _, param := range fn.InParams {
		initial[param] = VarDefSet{ir.EntryDef: struct{}{}}
	}

	eng := &Engine[VarDefMap]{
		Direction: Forward,
		Merge:     varDefMapUnion,
		Equal:     varDefMapEqual,
		Copy:      copyVarDefMap,
		Bottom:    func() VarDefMap { return make(VarDefMap) },
		Assign: func(cur VarDefMap, s *ir.AssignStmt) VarDefMap {
			for _, lhs := range s.Lhs {
				if root := lhs.RootSymbol(); root != nil {
					cur[root] = VarDefSet{s: struct{}{}}
				}
			}
			return cur
		},
	}

	exit := eng.Run(initial, body)

	info.ReachDefMap = eng.Pre

	exitPoints := append(eng.retPoints, exit)
	info.ExitDefMap = exitPoints[0]
	for _, p := range exitPoints[1:] {
		info.ExitDefMap = varDefMapUnion(info.ExitDefMap, p)
	}

	return info
}

// bodySymbols collects every symbol referenced anywhere in the sequence.
func bodySymbols(seq *ir.StmtSequence) ir.SymbolSet {
	syms := make(ir.SymbolSet)
	collectStmtSymbols(seq, syms)
	return syms
}

func collectStmtSymbols(seq *ir.StmtSequence, syms ir.SymbolSet) {
	for _, st := range seq.Stmts {
		switch s := st.(type) {
		case *ir.AssignStmt:
			for _, lhs := range s.Lhs {
				for sym := range ir.SymbolUses(lhs) {
					syms.Add(sym)
				}
			}
			for sym := range ir.SymbolUses(s.Rhs) {
				syms.Add(sym)
			}
		case *ir.ExprStmt:
			for sym := range ir.SymbolUses(s.Expr) {
				syms.Add(sym)
			}
		case *ir.IfElseStmt:
			for sym := range ir.SymbolUses(s.Cond) {
				syms.Add(sym)
			}
			collectStmtSymbols(s.IfBlock, syms)
			collectStmtSymbols(s.ElseBlock, syms)
		case *ir.LoopStmt:
			collectStmtSymbols(s.Init, syms)
			collectStmtSymbols(s.Test, syms)
			collectStmtSymbols(s.Body, syms)
			collectStmtSymbols(s.Incr, syms)
		}
	}
}

// varDefMapUnion joins two definition maps pointwise; a symbol present
// on one side only keeps its definitions, since any of them may reach.
func varDefMapUnion(a, b VarDefMap) VarDefMap {
	out := make(VarDefMap, len(a))
	for sym, defs := range a {
		merged := make(VarDefSet, len(defs))
		for def := range defs {
			merged[def] = struct{}{}
		}
		for def := range b[sym] {
			merged[def] = struct{}{}
		}
		out[sym] = merged
	}
	for sym, defs := range b {
		if _, ok := out[sym]; ok {
			continue
		}
		merged := make(VarDefSet, len(defs))
		for def := range defs {
			merged[def] = struct{}{}
		}
		out[sym] = merged
	}
	return out
}

func varDefMapEqual(a, b VarDefMap) bool {
	if len(a) != len(b) {
		return false
	}
	for sym, defs := range a {
		other, ok := b[sym]
		if !ok || !defs.equal(other) {
			return false
		}
	}
	return true
}

func copyVarDefMap(m VarDefMap) VarDefMap {
	out := make(VarDefMap, len(m))
	for sym, defs := range m {
		copied := make(VarDefSet, len(defs))
		for def := range defs {
			copied[def] = struct{}{}
		}
		out[sym] = copied
	}
	return out
}
