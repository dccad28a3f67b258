// Package typemap implements the type-mapping tables the inference
// engine dispatches operators and library calls to: given the possible
// types of the arguments, each mapping computes the possible types of
// the results.
package typemap

import "github.com/funvibe/funmat/internal/types"

// Ident returns the first argument's types unchanged.
func Ident(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 {
		return nil
	}
	return types.TypeSetString{args[0]}
}

// Minus maps arithmetic negation: shape is preserved, numeric object
// types are kept while logical and character operands promote to F64,
// and negating an integer value stays integer.
func Minus(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 || len(args[0]) == 0 {
		return nil
	}
	var out types.TypeSet
	for _, t := range args[0] {
		r := t
		if r.ObjType == types.LogicalArray || r.ObjType == types.CharArray {
			r.ObjType = types.MatrixF64
		}
		out = out.Add(r)
	}
	return types.TypeSetString{types.Reduce(out)}
}

// Not maps logical negation: a logical array with the argument's shape.
func Not(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 || len(args[0]) == 0 {
		// Unknown operand: the result is still logical, shape unknown.
		return types.MakeString(types.TypeInfo{
			ObjType:   types.LogicalArray,
			IsInteger: true,
		})
	}
	var out types.TypeSet
	for _, t := range args[0] {
		out = out.Add(types.TypeInfo{
			ObjType:   types.LogicalArray,
			Is2D:      t.Is2D,
			IsScalar:  t.IsScalar,
			IsInteger: true,
			SizeKnown: t.SizeKnown,
			MatSize:   t.MatSize,
		})
	}
	return types.TypeSetString{types.Reduce(out)}
}

// Transp maps transposition: for a known 2D size the dimensions swap.
func Transp(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 || len(args[0]) == 0 {
		return nil
	}
	var out types.TypeSet
	for _, t := range args[0] {
		r := t
		if r.SizeKnown && len(r.MatSize) == 2 {
			r.MatSize = []int{t.MatSize[1], t.MatSize[0]}
		} else if !r.SizeKnown {
			r.MatSize = nil
		}
		out = out.Add(r)
	}
	return types.TypeSetString{types.Reduce(out)}
}

// ArrayArith maps element-wise arithmetic over two operands.
// intPreserve tells whether integer operands produce an integer result
// (addition does, element division does not).
func ArrayArith(intPreserve bool) func(types.TypeSetString) types.TypeSetString {
	return func(args types.TypeSetString) types.TypeSetString {
		left, right, ok := binaryArgs(args)
		if !ok {
			return nil
		}
		var out types.TypeSet
		for _, l := range left {
			for _, r := range right {
				res := types.TypeInfo{
					ObjType:   numericResult(l.ObjType, r.ObjType),
					IsInteger: intPreserve && l.IsInteger && r.IsInteger,
				}
				res.Is2D, res.IsScalar, res.SizeKnown, res.MatSize = broadcastShape(l, r)
				out = out.Add(res)
			}
		}
		return types.TypeSetString{types.Reduce(out)}
	}
}

// Mult maps matrix multiplication: scalar operands behave like
// element-wise arithmetic, two known 2D sizes produce [l0, r1].
func Mult(args types.TypeSetString) types.TypeSetString {
	left, right, ok := binaryArgs(args)
	if !ok {
		return nil
	}
	var out types.TypeSet
	for _, l := range left {
		for _, r := range right {
			res := types.TypeInfo{
				ObjType:   numericResult(l.ObjType, r.ObjType),
				IsInteger: l.IsInteger && r.IsInteger,
			}
			switch {
			case l.IsScalar || r.IsScalar:
				res.Is2D, res.IsScalar, res.SizeKnown, res.MatSize = broadcastShape(l, r)
			case l.SizeKnown && r.SizeKnown && len(l.MatSize) == 2 && len(r.MatSize) == 2:
				res.Is2D = true
				res.SizeKnown = true
				res.MatSize = []int{l.MatSize[0], r.MatSize[1]}
				res.IsScalar = res.MatSize[0] == 1 && res.MatSize[1] == 1
			default:
				res.Is2D = l.Is2D && r.Is2D
			}
			out = out.Add(res)
		}
	}
	return types.TypeSetString{types.Reduce(out)}
}

// Div maps right matrix division. The result is never guaranteed
// integer.
func Div(args types.TypeSetString) types.TypeSetString {
	return division(args)
}

// LeftDiv maps left matrix division.
func LeftDiv(args types.TypeSetString) types.TypeSetString {
	return division(args)
}

func division(args types.TypeSetString) types.TypeSetString {
	left, right, ok := binaryArgs(args)
	if !ok {
		return nil
	}
	var out types.TypeSet
	for _, l := range left {
		for _, r := range right {
			res := types.TypeInfo{ObjType: numericResult(l.ObjType, r.ObjType)}
			if l.IsScalar && r.IsScalar {
				res.Is2D = true
				res.IsScalar = true
				res.SizeKnown = true
				res.MatSize = []int{1, 1}
			} else {
				res.Is2D = l.Is2D && r.Is2D
			}
			out = out.Add(res)
		}
	}
	return types.TypeSetString{types.Reduce(out)}
}

// Power maps exponentiation. Integer bases with negative exponents
// produce fractions, so the result is never guaranteed integer.
func Power(args types.TypeSetString) types.TypeSetString {
	left, right, ok := binaryArgs(args)
	if !ok {
		return nil
	}
	var out types.TypeSet
	for _, l := range left {
		for _, r := range right {
			res := types.TypeInfo{ObjType: numericResult(l.ObjType, r.ObjType)}
			res.Is2D, res.IsScalar, res.SizeKnown, res.MatSize = broadcastShape(l, r)
			out = out.Add(res)
		}
	}
	return types.TypeSetString{types.Reduce(out)}
}

// ArrayLogic maps comparisons and element-wise logic: a logical array
// with the broadcast shape of the operands. Unknown operands still
// produce a logical result of unknown shape.
func ArrayLogic(args types.TypeSetString) types.TypeSetString {
	left, right, ok := binaryArgs(args)
	if !ok {
		return types.MakeString(types.TypeInfo{
			ObjType:   types.LogicalArray,
			IsInteger: true,
		})
	}
	var out types.TypeSet
	for _, l := range left {
		for _, r := range right {
			res := types.TypeInfo{ObjType: types.LogicalArray, IsInteger: true}
			res.Is2D, res.IsScalar, res.SizeKnown, res.MatSize = broadcastShape(l, r)
			out = out.Add(res)
		}
	}
	return types.TypeSetString{types.Reduce(out)}
}

func binaryArgs(args types.TypeSetString) (types.TypeSet, types.TypeSet, bool) {
	if len(args) < 2 || len(args[0]) == 0 || len(args[1]) == 0 {
		return nil, nil, false
	}
	return args[0], args[1], true
}

// numericResult widens two operand object types to the numeric result
// type: complex wins, mixed numeric types fall back to F64, character
// and logical operands promote to F64.
func numericResult(l, r types.ObjType) types.ObjType {
	if l == types.MatrixC128 || r == types.MatrixC128 {
		return types.MatrixC128
	}
	if l == r && (l == types.MatrixI32 || l == types.MatrixF64) {
		return l
	}
	return types.MatrixF64
}

// broadcastShape computes the element-wise result shape of two
// operands: a scalar operand adopts the other side's shape, equal known
// sizes are preserved, anything else is unknown.
func broadcastShape(l, r types.TypeInfo) (is2D, isScalar, sizeKnown bool, matSize []int) {
	switch {
	case l.IsScalar && r.IsScalar:
		return true, true, true, []int{1, 1}
	case l.IsScalar:
		return r.Is2D, false, r.SizeKnown, r.MatSize
	case r.IsScalar:
		return l.Is2D, false, l.SizeKnown, l.MatSize
	case l.SizeKnown && r.SizeKnown && sameDims(l.MatSize, r.MatSize):
		return l.Is2D && r.Is2D, false, true, l.MatSize
	default:
		return l.Is2D && r.Is2D, false, false, nil
	}
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
