package analysis

import (
	"github.com/funvibe/funmat/internal/env"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// inferParam types sym(args), which is matrix indexing, a call, or
// both, depending on what sym can hold at this point.
func (inf *inferencer) inferParam(
	e *ir.ParamExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	numIndexDims, isScalarIndexing, isMatrixIndexing :=
		inf.analyzeIndexTypes(e.Args, defs, varTypes)

	calleeSet := make(map[types.Callable]bool)
	var calleeOrder []types.Callable
	var outputSet []types.TypeSetString

	addCallee := func(fn types.Callable) {
		if !calleeSet[fn] {
			calleeSet[fn] = true
			calleeOrder = append(calleeOrder, fn)
		}
	}

	if boundTypes, ok := varTypes[e.Sym]; ok && len(boundTypes) > 0 {
		var outSet types.TypeSet

		for _, t := range boundTypes {
			switch {
			case t.ObjType.IsMatrix():
				outSet = outSet.Add(types.TypeInfo{
					ObjType:   t.ObjType,
					Is2D:      numIndexDims <= 2 && !isMatrixIndexing,
					IsScalar:  isScalarIndexing,
					IsInteger: t.IsInteger,
					SizeKnown: isScalarIndexing,
					MatSize:   scalarSizeOrNil(isScalarIndexing),
				})

			case t.ObjType == types.CellArray:
				outSet = outSet.Add(types.TypeInfo{
					ObjType:   t.ObjType,
					Is2D:      numIndexDims <= 2 && !isMatrixIndexing,
					IsScalar:  isScalarIndexing,
					SizeKnown: isScalarIndexing,
					MatSize:   scalarSizeOrNil(isScalarIndexing),
					CellTypes: t.CellTypes,
				})

			case t.ObjType == types.FnHandle:
				// A handle to an unknown function gives no information
				// at all.
				if t.Function == nil {
					return nil
				}
				addCallee(t.Function)
			}
		}

		outputSet = append(outputSet, types.TypeSetString{outSet})
	}

	// A name defined only by the environment may resolve to a function;
	// the expression is then a direct call.
	if defs[e.Sym].OnlyEntryDef() {
		if obj, ok := inf.env.Lookup(e.Sym.Name); ok {
			switch f := obj.(type) {
			case *ir.ProgFunction:
				addCallee(f)
			case *env.LibFunction:
				addCallee(f)
			}
		}
	}

	if len(calleeOrder) > 0 {
		callArgs, ok := inf.inferCallArgs(e.Args, defs, varTypes)
		if !ok {
			return nil
		}

		for _, callee := range calleeOrder {
			switch f := callee.(type) {
			case *ir.ProgFunction:
				summary := inf.m.Request(TypeInfer, f, f.CurrentBody, callArgs).(*TypeInferInfo)
				outputSet = append(outputSet, summary.OutArgTypes)
			case *env.LibFunction:
				outputSet = append(outputSet, f.TypeMapping(callArgs))
			}
		}
	}

	if len(outputSet) == 0 {
		return nil
	}

	// Merge the candidate outputs pointwise; differing arities mean the
	// call's return shape is unknown.
	outputTypes := outputSet[0]
	for _, cur := range outputSet[1:] {
		if len(cur) != len(outputTypes) {
			return nil
		}
		merged := make(types.TypeSetString, len(outputTypes))
		for i := range outputTypes {
			merged[i] = types.Union(outputTypes[i], cur[i])
		}
		outputTypes = merged
	}

	return outputTypes
}

// inferCallArgs types the argument expressions of a call and
// concatenates their type strings. The boolean result is false when any
// argument's types are unknown, or when an argument is a cell-indexing
// expression, whose arity cannot be predicted.
func (inf *inferencer) inferCallArgs(
	args []ir.Expression,
	defs VarDefMap,
	varTypes VarTypeMap,
) (types.TypeSetString, bool) {
	var callArgs types.TypeSetString

	for _, arg := range args {
		if _, ok := arg.(*ir.CellIndexExpr); ok {
			return nil, false
		}

		argTypes := inf.inferExpr(arg, defs, varTypes)
		if len(argTypes) == 0 {
			return nil, false
		}
		for i := 0; i < len(argTypes); i++ {
			if len(argTypes[i]) == 0 {
				return nil, false
			}
		}

		callArgs = append(callArgs, argTypes...)
	}

	return callArgs, true
}

// inferCellIndex types sym{args}: scalar indexing into a cell array
// yields its stored types.
func (inf *inferencer) inferCellIndex(
	e *ir.CellIndexExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	boundTypes, ok := varTypes[e.Sym]
	if !ok {
		return nil
	}

	_, isScalarIndexing, _ := inf.analyzeIndexTypes(e.Args, defs, varTypes)
	if !isScalarIndexing {
		return nil
	}

	// After reduction there is at most one cell-array element to take
	// the stored types from.
	reduced := types.Reduce(boundTypes)

	var outTypes types.TypeSet
	if cellType, found := reduced.Single(types.CellArray); found {
		outTypes = cellType.CellTypes
	}

	return types.TypeSetString{outTypes}
}

// analyzeIndexTypes classifies the index arguments of an indexing
// expression: the dimension count, whether every index is certainly a
// scalar, and whether a single argument may itself be a matrix
// (logical or linear matrix indexing).
func (inf *inferencer) analyzeIndexTypes(
	args []ir.Expression,
	defs VarDefMap,
	varTypes VarTypeMap,
) (numIndexDims int, isScalarIndexing, isMatrixIndexing bool) {
	numIndexDims = len(args)
	isScalarIndexing = true
	isMatrixIndexing = false

	for _, arg := range args {
		argTypes := inf.inferExpr(arg, defs, varTypes)

		if len(argTypes) == 0 || len(argTypes[0]) == 0 {
			if len(args) == 1 {
				isMatrixIndexing = true
			}
			isScalarIndexing = false
			continue
		}

		for _, t := range argTypes[0] {
			if t.ObjType.IsMatrix() && !t.IsScalar {
				if len(args) == 1 {
					isMatrixIndexing = true
				}
				isScalarIndexing = false
			}
		}
	}

	return numIndexDims, isScalarIndexing, isMatrixIndexing
}

func scalarSizeOrNil(isScalar bool) []int {
	if isScalar {
		return []int{1, 1}
	}
	return nil
}
