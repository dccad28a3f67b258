package typemap

import (
	"github.com/funvibe/funmat/internal/env"
	"github.com/funvibe/funmat/internal/types"
)

// InstallBuiltins binds the library functions with registered type
// mappings into e. The catalogue covers the builtins the specializer
// meets most often; everything else resolves to "unknown" and the
// analyses stay conservative.
func InstallBuiltins(e *env.Environment) {
	for _, f := range Builtins() {
		e.Bind(f.Name, f)
	}
}

// Builtins returns the library function catalogue.
func Builtins() []*env.LibFunction {
	return []*env.LibFunction{
		{Name: "zeros", TypeMapping: allocMapping},
		{Name: "ones", TypeMapping: allocMapping},
		{Name: "eye", TypeMapping: allocMapping},
		{Name: "rand", TypeMapping: randMapping},
		{Name: "size", TypeMapping: sizeMapping},
		{Name: "numel", TypeMapping: countMapping},
		{Name: "length", TypeMapping: countMapping},
		{Name: "abs", TypeMapping: absMapping},
		{Name: "sum", TypeMapping: sumMapping},
		{Name: "not", TypeMapping: Not},
		{Name: "disp", TypeMapping: noOutputMapping},
	}
}

// allocMapping types zeros/ones/eye: an F64 matrix of integer values.
// Without arguments the result is the 1x1 scalar; argument values are
// not tracked, so sized allocations have unknown size.
func allocMapping(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 {
		return types.MakeString(types.ScalarType(types.MatrixF64, true))
	}
	return types.MakeString(types.TypeInfo{
		ObjType:   types.MatrixF64,
		Is2D:      len(args) <= 2,
		IsInteger: true,
	})
}

func randMapping(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 {
		return types.MakeString(types.ScalarType(types.MatrixF64, false))
	}
	return types.MakeString(types.TypeInfo{
		ObjType: types.MatrixF64,
		Is2D:    len(args) <= 2,
	})
}

// sizeMapping types size(x): a 1xN integer row vector.
func sizeMapping(args types.TypeSetString) types.TypeSetString {
	return types.MakeString(types.TypeInfo{
		ObjType:   types.MatrixF64,
		Is2D:      true,
		IsInteger: true,
	})
}

func countMapping(args types.TypeSetString) types.TypeSetString {
	return types.MakeString(types.ScalarType(types.MatrixF64, true))
}

// absMapping preserves the argument's shape; complex magnitudes come
// out real.
func absMapping(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 || len(args[0]) == 0 {
		return nil
	}
	var out types.TypeSet
	for _, t := range args[0] {
		r := t
		if r.ObjType == types.MatrixC128 {
			r.ObjType = types.MatrixF64
		}
		if r.ObjType == types.LogicalArray || r.ObjType == types.CharArray {
			r.ObjType = types.MatrixF64
		}
		out = out.Add(r)
	}
	return types.TypeSetString{types.Reduce(out)}
}

// sumMapping types sum(x): scalar input stays scalar, anything else
// reduces a dimension and loses its size.
func sumMapping(args types.TypeSetString) types.TypeSetString {
	if len(args) == 0 || len(args[0]) == 0 {
		return nil
	}
	var out types.TypeSet
	for _, t := range args[0] {
		if t.IsScalar {
			out = out.Add(types.ScalarType(numericResult(t.ObjType, t.ObjType), t.IsInteger))
			continue
		}
		out = out.Add(types.TypeInfo{
			ObjType:   numericResult(t.ObjType, t.ObjType),
			Is2D:      t.Is2D,
			IsInteger: t.IsInteger,
		})
	}
	return types.TypeSetString{types.Reduce(out)}
}

func noOutputMapping(args types.TypeSetString) types.TypeSetString {
	return nil
}
