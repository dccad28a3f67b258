package analysis

import (
	"log"

	"github.com/funvibe/funmat/internal/config"
	"github.com/funvibe/funmat/internal/env"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// VarTypeMap maps each variable to its possible types at a program
// point.
type VarTypeMap map[*ir.SymbolExpr]types.TypeSet

// TypeInfoMap holds a variable type map per program point.
type TypeInfoMap map[ir.Node]VarTypeMap

// ExprTypeMap accumulates the possible result types of every inferred
// expression, across all the contexts it was inferred in.
type ExprTypeMap map[ir.Expression]types.TypeSetString

// TypeInferInfo is the type-inference analysis result.
type TypeInferInfo struct {
	AnalysisInfo

	// PreTypeMap and PostTypeMap hold the variable types entering and
	// leaving each program point.
	PreTypeMap  TypeInfoMap
	PostTypeMap TypeInfoMap

	// ExitTypeMap is the union of the variable types at every exit
	// point.
	ExitTypeMap VarTypeMap

	// OutArgTypes are the possible types of the output parameters.
	OutArgTypes types.TypeSetString

	ExprTypeMap ExprTypeMap
}

// computeTypeInfo performs type inference on a function body given the
// types of its input arguments. The bottom result, served on recursive
// requests, has empty output type sets and empty maps.
func computeTypeInfo(
	m *Manager,
	fn *ir.ProgFunction,
	body *ir.StmtSequence,
	inArgTypes types.TypeSetString,
	returnBottom bool,
) Info {
	info := &TypeInferInfo{
		AnalysisInfo: newAnalysisInfo(),
		PreTypeMap:   make(TypeInfoMap),
		PostTypeMap:  make(TypeInfoMap),
		ExitTypeMap:  make(VarTypeMap),
		ExprTypeMap:  make(ExprTypeMap),
	}

	if len(inArgTypes) > len(fn.InParams) {
		panic("typeinfer: more input argument types than formal parameters")
	}

	if returnBottom {
		info.OutArgTypes = make(types.TypeSetString, len(fn.OutParams))
		return info
	}

	if config.Verbose {
		log.Printf("typeinfer: analyzing %s%s", fn.Name, inArgTypes.ArgString())
	}

	initial := make(VarTypeMap)
	for i, argTypes := range inArgTypes {
		initial[fn.InParams[i]] = argTypes
	}

	reachDefs := m.Request(ReachDefs, fn, body, inArgTypes).(*ReachDefInfo)

	// Live variables are computed alongside so later specializer
	// queries against the same key hit the cache.
	m.Request(LiveVars, fn, body, inArgTypes)

	inf := &inferencer{
		m:         m,
		env:       fn.LocalEnv,
		reachDefs: reachDefs.ReachDefMap,
		exprTypes: info.ExprTypeMap,
	}

	eng := &Engine[VarTypeMap]{
		Direction: Forward,
		Merge:     varTypeMapUnion,
		Equal:     varTypeMapEqual,
		Copy:      copyVarTypeMap,
		Bottom:    func() VarTypeMap { return make(VarTypeMap) },
		Assign: func(cur VarTypeMap, s *ir.AssignStmt) VarTypeMap {
			inf.inferAssign(s, inf.defsAt(s), cur)
			return cur
		},
		Expr: func(cur VarTypeMap, s *ir.ExprStmt) VarTypeMap {
			inf.inferExpr(s.Expr, inf.defsAt(s), cur)
			return cur
		},
	}

	exit := eng.Run(initial, body)

	// A break or continue escaping the function body means the IR was
	// built wrong; there is no conservative recovery.
	if len(eng.breakPoints) > 0 || len(eng.contPoints) > 0 {
		panic("typeinfer: break or continue outside loop at function level")
	}

	retPoints := append(eng.retPoints, exit)
	info.ExitTypeMap = typeMapVectorUnion(retPoints)

	info.OutArgTypes = make(types.TypeSetString, len(fn.OutParams))
	for i, out := range fn.OutParams {
		typeSet, ok := info.ExitTypeMap[out]
		if !ok {
			if config.Verbose {
				log.Printf("typeinfer: output param %q of %s may be unassigned",
					out.Name, fn.Name)
			}
			continue
		}
		info.OutArgTypes[i] = typeSet
	}

	info.PreTypeMap = eng.Pre
	info.PostTypeMap = eng.Out

	return info
}

// inferencer carries the per-run context of a type inference: the
// manager for inter-procedural requests, the function's environment,
// the reaching definitions, and the accumulated expression types.
type inferencer struct {
	m         *Manager
	env       *env.Environment
	reachDefs ReachDefMap
	exprTypes ExprTypeMap
}

// defsAt returns the definitions reaching the statement.
func (inf *inferencer) defsAt(st ir.Statement) VarDefMap {
	defs, ok := inf.reachDefs[st]
	if !ok {
		panic("typeinfer: no reaching definitions recorded for statement")
	}
	return defs
}

// varTypeMapUnion joins two variable type maps pointwise, keeping only
// symbols typed on both paths: a variable missing from one branch has
// no guaranteed binding after the join.
func varTypeMapUnion(a, b VarTypeMap) VarTypeMap {
	out := make(VarTypeMap)
	for sym, setA := range a {
		setB, ok := b[sym]
		if !ok {
			continue
		}
		out[sym] = types.Union(setA, setB)
	}
	return out
}

// typeMapVectorUnion folds varTypeMapUnion over a list of type maps.
func typeMapVectorUnion(maps []VarTypeMap) VarTypeMap {
	if len(maps) == 0 {
		return make(VarTypeMap)
	}
	out := maps[0]
	for _, m := range maps[1:] {
		out = varTypeMapUnion(out, m)
	}
	return out
}

func varTypeMapEqual(a, b VarTypeMap) bool {
	if len(a) != len(b) {
		return false
	}
	for sym, setA := range a {
		setB, ok := b[sym]
		if !ok || !setA.Equal(setB) {
			return false
		}
	}
	return true
}

func copyVarTypeMap(m VarTypeMap) VarTypeMap {
	out := make(VarTypeMap, len(m))
	for sym, set := range m {
		out[sym] = set
	}
	return out
}
