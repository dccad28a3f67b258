package analysis

import (
	"fmt"

	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// inferAssign types an assignment statement: infer the right-hand side,
// then push each value's types through the corresponding lvalue chain.
func (inf *inferencer) inferAssign(
	s *ir.AssignStmt,
	defs VarDefMap,
	varTypes VarTypeMap,
) {
	rhsTypes := inf.inferExpr(s.Rhs, defs, varTypes)

	// More targets than values means the call's arity is unknown here;
	// drop the information rather than mis-align it.
	if len(s.Lhs) > len(rhsTypes) {
		rhsTypes = make(types.TypeSetString, len(s.Lhs))
	}

	for i, lhs := range s.Lhs {
		rhsValTypes := types.Reduce(rhsTypes[i])

		if cellIdx, ok := lhs.(*ir.CellIndexExpr); ok {
			inf.assignCellIndex(cellIdx, rhsValTypes, defs, varTypes)
			continue
		}

		newTypes := inf.assignRecursive(lhs, rhsValTypes, defs, varTypes)
		varTypes[lhs.RootSymbol()] = newTypes
	}
}

// assignRecursive pushes the right-hand-side types through an lvalue
// chain, producing the new type set of the chain's root symbol.
func (inf *inferencer) assignRecursive(
	lhs ir.Expression,
	rhsValTypes types.TypeSet,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSet {
	switch x := lhs.(type) {
	case *ir.SymbolExpr:
		return rhsValTypes

	case *ir.DotExpr:
		return inf.assignDot(x, rhsValTypes, defs, varTypes)

	case *ir.ParamExpr:
		return inf.assignParam(x, rhsValTypes, defs, varTypes)

	default:
		panic(fmt.Sprintf("typeinfer: unexpected lvalue %T", lhs))
	}
}

// assignDot handles x.field = v: each rhs type becomes a scalar struct
// array holding the field, pushed through the inner chain and merged
// with the root symbol's pre-existing types.
func (inf *inferencer) assignDot(
	e *ir.DotExpr,
	rhsValTypes types.TypeSet,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSet {
	root := e.RootSymbol()
	previous, hasPrevious := varTypes[root]

	var outSet types.TypeSet
	for _, rhs := range rhsValTypes {
		modified := types.TypeInfo{
			ObjType:   types.StructArray,
			Is2D:      true,
			IsScalar:  true,
			SizeKnown: true,
			MatSize:   []int{1, 1},
			Fields:    map[string]types.TypeInfo{e.Field: rhs},
		}

		constructedSet := inf.assignRecursive(e.Expr, types.MakeSet(modified), defs, varTypes)
		if len(constructedSet) != 1 {
			panic("typeinfer: struct lvalue chain produced more than one type")
		}
		constructed := constructedSet[0]

		if !hasPrevious {
			outSet = outSet.Add(constructed)
			continue
		}
		for _, prev := range previous {
			if merged, same := types.Widen(constructed, prev); same {
				outSet = outSet.Add(merged)
			} else {
				// The variable used to hold something that is not a
				// struct; the store overwrites it.
				outSet = outSet.Add(constructed)
			}
		}
	}

	return outSet
}

// assignParam handles x(args) = v. A bound root relaxes its matrix
// types: no longer scalar, size no longer known, integer only when the
// rhs is. An unbound root synthesizes a type per rhs element with the
// size taken from literal index arguments.
func (inf *inferencer) assignParam(
	e *ir.ParamExpr,
	rhsValTypes types.TypeSet,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSet {
	numIndexDims, _, _ := inf.analyzeIndexTypes(e.Args, defs, varTypes)

	root := e.RootSymbol()
	var outSet types.TypeSet

	current, bound := varTypes[root]
	if !bound {
		for _, rhs := range rhsValTypes {
			modified := rhs
			modified.Is2D = true
			modified.SizeKnown = true

			size := make([]int, 0, len(e.Args)+1)
			if len(e.Args) == 1 {
				// Linear store into a fresh name builds a row vector.
				size = append(size, 1)
			}
			for _, arg := range e.Args {
				if c, ok := arg.(*ir.IntConstExpr); ok {
					size = append(size, int(c.Value))
				} else {
					modified.SizeKnown = false
				}
			}
			if modified.SizeKnown {
				modified.MatSize = size
			} else {
				modified.MatSize = nil
			}
			modified.IsScalar = modified.SizeKnown &&
				len(modified.MatSize) == 2 &&
				modified.MatSize[0] == 1 && modified.MatSize[1] == 1

			constructedSet := inf.assignRecursive(e.Sym, types.MakeSet(modified), defs, varTypes)
			if len(constructedSet) != 1 {
				panic("typeinfer: indexed lvalue chain produced more than one type")
			}
			outSet = outSet.Add(constructedSet[0])
		}
		return outSet
	}

	for _, t := range current {
		updated := t

		if updated.ObjType.IsMatrixOrCell() {
			updated.Is2D = updated.Is2D && numIndexDims <= 2
			updated.IsScalar = false

			// An empty rhs set means "unknown value": the stored
			// elements can no longer be assumed integer.
			rhsInteger := len(rhsValTypes) > 0
			for _, r := range rhsValTypes {
				if !r.IsInteger {
					rhsInteger = false
				}
			}
			updated.IsInteger = updated.IsInteger && rhsInteger

			updated.SizeKnown = false
			updated.MatSize = nil

			if updated.ObjType == types.CellArray {
				if len(rhsValTypes) == 0 {
					updated.CellTypes = nil
				} else {
					var cellTypes types.TypeSet
					for _, r := range rhsValTypes {
						if r.ObjType == types.CellArray {
							cellTypes = types.Union(cellTypes, r.CellTypes)
						}
					}
					cellTypes = types.Union(cellTypes, t.CellTypes)
					updated.CellTypes = types.Reduce(cellTypes)
				}
			} else {
				rhsNotComplex := len(rhsValTypes) > 0
				for _, r := range rhsValTypes {
					if r.ObjType == types.MatrixC128 {
						rhsNotComplex = false
					}
				}
				if !rhsNotComplex {
					complexType := updated
					complexType.ObjType = types.MatrixC128
					outSet = outSet.Add(complexType)
				}
			}
		}

		outSet = outSet.Add(updated)
	}

	return outSet
}

// assignCellIndex handles x{args} = v: the stored cell types widen with
// the rhs types instead of being erased, so information gathered before
// the store survives it.
func (inf *inferencer) assignCellIndex(
	e *ir.CellIndexExpr,
	rhsValTypes types.TypeSet,
	defs VarDefMap,
	varTypes VarTypeMap,
) {
	numIndexDims, _, _ := inf.analyzeIndexTypes(e.Args, defs, varTypes)

	current, bound := varTypes[e.Sym]
	if !bound {
		// First store into an unbound name makes it a cell array of
		// unknown size holding the rhs types.
		varTypes[e.Sym] = types.MakeSet(types.TypeInfo{
			ObjType:   types.CellArray,
			Is2D:      numIndexDims <= 2,
			CellTypes: types.Reduce(rhsValTypes),
		})
		return
	}

	var outSet types.TypeSet
	for _, t := range current {
		updated := t
		if updated.ObjType == types.CellArray {
			updated.Is2D = updated.Is2D && numIndexDims <= 2
			updated.IsScalar = false
			updated.SizeKnown = false
			updated.MatSize = nil

			if len(rhsValTypes) == 0 {
				updated.CellTypes = nil
			} else {
				updated.CellTypes = types.Reduce(types.Union(t.CellTypes, rhsValTypes))
			}
		}
		outSet = outSet.Add(updated)
	}

	varTypes[e.Sym] = outSet
}
