package analysis

import (
	"github.com/funvibe/funmat/internal/env"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/typemap"
	"github.com/funvibe/funmat/internal/types"
)

// inferExpr computes the possible result types of an expression and
// accumulates them into the expression type map. An empty result means
// "unknown, be conservative".
func (inf *inferencer) inferExpr(
	e ir.Expression,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	var out types.TypeSetString

	switch x := e.(type) {
	case *ir.SymbolExpr:
		out = inf.inferSymbol(x, defs, varTypes)

	case *ir.IntConstExpr:
		out = types.MakeString(types.ScalarType(types.MatrixF64, true))

	case *ir.FPConstExpr:
		out = types.MakeString(types.ScalarType(types.MatrixF64, false))

	case *ir.StrConstExpr:
		out = types.MakeString(types.TypeInfo{
			ObjType:   types.CharArray,
			Is2D:      true,
			IsScalar:  len(x.Value) == 1,
			IsInteger: true,
			SizeKnown: true,
			MatSize:   []int{1, len(x.Value)},
		})

	case *ir.EndExpr:
		// end acts as an integer constant.
		out = types.MakeString(types.ScalarType(types.MatrixF64, true))

	case *ir.RangeExpr:
		out = inf.inferRange(x, defs, varTypes)

	case *ir.MatrixExpr:
		out = inf.inferMatrix(x, defs, varTypes)

	case *ir.CellArrayExpr:
		out = inf.inferCellArray(x, defs, varTypes)

	case *ir.FnHandleExpr:
		out = inf.inferFnHandle(x, defs)

	case *ir.DotExpr:
		out = inf.inferDot(x, defs, varTypes)

	case *ir.ParamExpr:
		out = inf.inferParam(x, defs, varTypes)

	case *ir.CellIndexExpr:
		out = inf.inferCellIndex(x, defs, varTypes)

	case *ir.BinaryOpExpr:
		out = inf.inferBinaryOp(x, defs, varTypes)

	case *ir.UnaryOpExpr:
		out = inf.inferUnaryOp(x, defs, varTypes)

	default:
		// Lambda and anything else: no type information.
	}

	inf.accumulateExprTypes(e, out)
	return out
}

// accumulateExprTypes unions the latest result into the expression's
// accumulated types, padding to the longer arity.
func (inf *inferencer) accumulateExprTypes(e ir.Expression, out types.TypeSetString) {
	cur, ok := inf.exprTypes[e]
	if !ok {
		inf.exprTypes[e] = out
		return
	}
	if len(out) > len(cur) {
		padded := make(types.TypeSetString, len(out))
		copy(padded, cur)
		cur = padded
	}
	for i := range out {
		cur[i] = types.Union(cur[i], out[i])
	}
	inf.exprTypes[e] = cur
}

// inferSymbol types a symbol reference: a bound variable returns its
// set; a name whose only reaching definition is the before-entry
// sentinel resolves through the environment, typing a function's
// no-argument call summary.
func (inf *inferencer) inferSymbol(
	sym *ir.SymbolExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	if set, ok := varTypes[sym]; ok {
		return types.TypeSetString{set}
	}

	if !defs[sym].OnlyEntryDef() {
		return nil
	}

	obj, ok := inf.env.Lookup(sym.Name)
	if !ok {
		return nil
	}

	switch f := obj.(type) {
	case *ir.ProgFunction:
		summary := inf.m.Request(TypeInfer, f, f.CurrentBody, nil).(*TypeInferInfo)
		return summary.OutArgTypes
	case *env.LibFunction:
		return f.TypeMapping(nil)
	default:
		return nil
	}
}

// inferRange types start:step:end. The range is integer when every
// possible start and step type is; the size is only known when the
// bounds are integer literals.
func (inf *inferencer) inferRange(
	e *ir.RangeExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	var startSet, stepSet types.TypeSet
	if e.Start != nil {
		if str := inf.inferExpr(e.Start, defs, varTypes); len(str) > 0 {
			startSet = str[0]
		}
	}
	if e.Step != nil {
		if str := inf.inferExpr(e.Step, defs, varTypes); len(str) > 0 {
			stepSet = str[0]
		}
	}
	if e.End != nil {
		inf.inferExpr(e.End, defs, varTypes)
	}

	isInteger := len(startSet) > 0 && len(stepSet) > 0
	if e.Step == nil {
		// An implicit step of 1 is integer; only the start matters.
		isInteger = len(startSet) > 0
	}
	for _, t := range startSet {
		if !t.IsInteger {
			isInteger = false
		}
	}
	for _, t := range stepSet {
		if !t.IsInteger {
			isInteger = false
		}
	}

	result := types.TypeInfo{
		ObjType:   types.MatrixF64,
		Is2D:      true,
		IsInteger: isInteger,
	}

	if count, ok := literalRangeLength(e); ok {
		result.SizeKnown = true
		result.MatSize = []int{1, count}
		result.IsScalar = count == 1
	}

	return types.MakeString(result)
}

// literalRangeLength computes the element count of a range whose start
// and end (and step, when present) are integer literals.
func literalRangeLength(e *ir.RangeExpr) (int, bool) {
	start, ok := intLiteral(e.Start)
	if !ok {
		return 0, false
	}
	end, ok := intLiteral(e.End)
	if !ok {
		return 0, false
	}
	step := int64(1)
	if e.Step != nil {
		step, ok = intLiteral(e.Step)
		if !ok || step == 0 {
			return 0, false
		}
	}
	n := (end-start)/step + 1
	if n < 0 {
		n = 0
	}
	return int(n), true
}

func intLiteral(e ir.Expression) (int64, bool) {
	c, ok := e.(*ir.IntConstExpr)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

// inferMatrix types a matrix literal by scanning its elements row by
// row: the first element seeds the candidate object types, first-column
// rows and first-row columns accumulate the output size, and complex or
// unknown elements add a complex sibling.
func (inf *inferencer) inferMatrix(
	e *ir.MatrixExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	if len(e.Rows) == 0 || len(e.Rows[0]) == 0 {
		return types.MakeString(types.TypeInfo{
			ObjType:   types.MatrixF64,
			Is2D:      true,
			IsInteger: true,
			SizeKnown: true,
			MatSize:   []int{0, 0},
		})
	}

	sizeKnown := true
	allInteger := true
	complexArg := false
	unknownArg := false
	outMatSize := []int{0, 0}
	var firstTypes []types.ObjType

	for rowIdx, row := range e.Rows {
		for colIdx, elem := range row {
			first := rowIdx == 0 && colIdx == 0

			elemTypes := inf.inferExpr(elem, defs, varTypes)
			if len(elemTypes) == 0 || len(elemTypes[0]) == 0 {
				// An unknown first element leaves nothing to seed the
				// output types from.
				if first {
					return nil
				}
				unknownArg = true
				sizeKnown = false
				allInteger = false
				continue
			}

			argTypes := elemTypes[0]
			var prevSize []int
			for typeIdx, t := range argTypes {
				if first {
					firstTypes = appendObjType(firstTypes, t.ObjType)
					if typeIdx == 0 {
						outMatSize = make([]int, len(t.MatSize))
						copy(outMatSize, t.MatSize)
						if len(outMatSize) < 2 {
							outMatSize = []int{0, 0}
						} else {
							outMatSize[0] = 0
							outMatSize[1] = 0
						}
					}
				} else {
					if len(outMatSize) != len(t.MatSize) {
						sizeKnown = false
					} else {
						for i := 2; i < len(outMatSize); i++ {
							if outMatSize[i] != t.MatSize[i] {
								sizeKnown = false
							}
						}
					}
				}

				if typeIdx == 0 && t.SizeKnown {
					if len(t.MatSize) < 2 {
						panic("typeinfer: matrix element with known size has fewer than two dimensions")
					}
					if colIdx == 0 {
						outMatSize[0] += t.MatSize[0]
					}
					if rowIdx == 0 {
						outMatSize[1] += t.MatSize[1]
					}
				}

				if !t.SizeKnown {
					sizeKnown = false
				} else {
					if typeIdx > 0 && !sameDims(t.MatSize, prevSize) {
						sizeKnown = false
					}
					prevSize = t.MatSize
				}

				if !t.IsInteger {
					allInteger = false
				}
				if t.ObjType == types.MatrixC128 {
					complexArg = true
				}
			}
		}
	}

	is2D := sizeKnown && len(outMatSize) == 2
	isScalar := sizeKnown && len(outMatSize) == 2 && outMatSize[0] == 1 && outMatSize[1] == 1

	if (unknownArg || complexArg) && len(firstTypes) > 0 {
		firstTypes = appendObjType(firstTypes, types.MatrixC128)
	}

	var outTypes types.TypeSet
	for _, obj := range firstTypes {
		info := types.TypeInfo{
			ObjType:   obj,
			Is2D:      is2D,
			IsScalar:  isScalar,
			IsInteger: allInteger,
			SizeKnown: sizeKnown,
		}
		if sizeKnown {
			info.MatSize = outMatSize
		}
		outTypes = outTypes.Add(info)
	}

	return types.TypeSetString{outTypes}
}

func appendObjType(list []types.ObjType, obj types.ObjType) []types.ObjType {
	for _, t := range list {
		if t == obj {
			return list
		}
	}
	return append(list, obj)
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// inferCellArray types a cell-array literal: the shape is the literal's
// row/column counts, the stored types are the union of the element
// types, cleared when any element is unknown.
func (inf *inferencer) inferCellArray(
	e *ir.CellArrayExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	if len(e.Rows) == 0 || len(e.Rows[0]) == 0 {
		return types.MakeString(types.TypeInfo{
			ObjType:   types.CellArray,
			Is2D:      true,
			SizeKnown: true,
			MatSize:   []int{0, 0},
		})
	}

	unknownArg := false
	outMatSize := []int{len(e.Rows), len(e.Rows[0])}
	var cellTypes types.TypeSet

	for _, row := range e.Rows {
		for _, elem := range row {
			elemTypes := inf.inferExpr(elem, defs, varTypes)
			if len(elemTypes) == 0 || len(elemTypes[0]) == 0 {
				unknownArg = true
				continue
			}
			for _, t := range elemTypes[0] {
				cellTypes = cellTypes.Add(t)
			}
		}
	}

	if unknownArg {
		cellTypes = nil
	}

	return types.MakeString(types.TypeInfo{
		ObjType:   types.CellArray,
		Is2D:      true,
		IsScalar:  outMatSize[0] == 1 && outMatSize[1] == 1,
		SizeKnown: true,
		MatSize:   outMatSize,
		CellTypes: types.Reduce(cellTypes),
	})
}

// inferFnHandle types @sym: the symbol must resolve through the
// environment to a library function or a non-nested program function.
func (inf *inferencer) inferFnHandle(
	e *ir.FnHandleExpr,
	defs VarDefMap,
) types.TypeSetString {
	if !defs[e.Symbol].OnlyEntryDef() {
		return nil
	}

	obj, ok := inf.env.Lookup(e.Symbol.Name)
	if !ok {
		return nil
	}

	var fn types.Callable
	switch f := obj.(type) {
	case *ir.ProgFunction:
		if f.Parent != nil {
			return nil
		}
		fn = f
	case *env.LibFunction:
		fn = f
	default:
		return nil
	}

	return types.MakeString(types.TypeInfo{
		ObjType:  types.FnHandle,
		Function: fn,
	})
}

// inferDot types expr.field: the inner expression must have exactly one
// possible type, a struct array carrying the field.
func (inf *inferencer) inferDot(
	e *ir.DotExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	innerTypes := inf.inferExpr(e.Expr, defs, varTypes)
	if len(innerTypes) != 1 || len(innerTypes[0]) != 1 {
		return nil
	}

	inner := innerTypes[0][0]
	if inner.ObjType != types.StructArray {
		return nil
	}

	fieldType, ok := inner.Fields[e.Field]
	if !ok {
		return nil
	}

	return types.MakeString(fieldType)
}

// inferBinaryOp dispatches a binary operator to its type mapping.
func (inf *inferencer) inferBinaryOp(
	e *ir.BinaryOpExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	leftTypes := inf.inferExpr(e.Left, defs, varTypes)
	rightTypes := inf.inferExpr(e.Right, defs, varTypes)

	var leftSet, rightSet types.TypeSet
	if len(leftTypes) > 0 {
		leftSet = leftTypes[0]
	}
	if len(rightTypes) > 0 {
		rightSet = rightTypes[0]
	}
	argTypes := types.TypeSetString{leftSet, rightSet}

	switch e.Op {
	case ir.OpPlus, ir.OpMinus, ir.OpArrayMult, ir.OpArrayPower:
		return typemap.ArrayArith(true)(argTypes)

	case ir.OpArrayDiv, ir.OpArrayLeftDiv:
		return typemap.ArrayArith(false)(argTypes)

	case ir.OpMult:
		return typemap.Mult(argTypes)

	case ir.OpDiv:
		return typemap.Div(argTypes)

	case ir.OpLeftDiv:
		return typemap.LeftDiv(argTypes)

	case ir.OpPower:
		return typemap.Power(argTypes)

	case ir.OpEqual, ir.OpNotEqual,
		ir.OpLessThan, ir.OpLessThanEq,
		ir.OpGreaterThan, ir.OpGreaterThanEq,
		ir.OpArrayOr, ir.OpArrayAnd:
		return typemap.ArrayLogic(argTypes)

	case ir.OpOr, ir.OpAnd:
		// Short-circuit logic always yields a scalar logical.
		return types.MakeString(types.ScalarType(types.LogicalArray, true))

	default:
		return nil
	}
}

// inferUnaryOp dispatches a unary operator to its type mapping.
func (inf *inferencer) inferUnaryOp(
	e *ir.UnaryOpExpr,
	defs VarDefMap,
	varTypes VarTypeMap,
) types.TypeSetString {
	operandTypes := inf.inferExpr(e.Operand, defs, varTypes)

	var operandSet types.TypeSet
	if len(operandTypes) > 0 {
		operandSet = operandTypes[0]
	}
	argTypes := types.TypeSetString{operandSet}

	switch e.Op {
	case ir.OpUnaryPlus:
		return typemap.Ident(argTypes)
	case ir.OpUnaryMinus:
		return typemap.Minus(argTypes)
	case ir.OpNot:
		return typemap.Not(argTypes)
	case ir.OpTransp, ir.OpArrayTransp:
		return typemap.Transp(argTypes)
	default:
		return nil
	}
}
