package typemap

import (
	"testing"

	"github.com/funvibe/funmat/internal/types"
)

func args2(l, r types.TypeInfo) types.TypeSetString {
	return types.TypeSetString{types.MakeSet(l), types.MakeSet(r)}
}

func TestArrayArithScalars(t *testing.T) {
	out := ArrayArith(true)(args2(
		types.ScalarType(types.MatrixF64, true),
		types.ScalarType(types.MatrixF64, true),
	))
	if len(out) != 1 || len(out[0]) != 1 {
		t.Fatalf("result = %v, want one set with one element", out)
	}
	got := out[0][0]
	if got.ObjType != types.MatrixF64 || !got.IsScalar || !got.IsInteger {
		t.Errorf("int + int should stay an integer scalar, got %v", got)
	}
}

func TestArrayArithIntegerNotPreserved(t *testing.T) {
	out := ArrayArith(false)(args2(
		types.ScalarType(types.MatrixF64, true),
		types.ScalarType(types.MatrixF64, true),
	))
	if out[0][0].IsInteger {
		t.Error("non-int-preserving op must clear the integer flag")
	}
}

func TestArrayArithComplexWins(t *testing.T) {
	out := ArrayArith(true)(args2(
		types.ScalarType(types.MatrixF64, true),
		types.ScalarType(types.MatrixC128, false),
	))
	if out[0][0].ObjType != types.MatrixC128 {
		t.Errorf("complex operand must force a complex result, got %v", out[0][0])
	}
}

func TestArrayArithUnknownOperand(t *testing.T) {
	if out := ArrayArith(true)(types.TypeSetString{nil, nil}); out != nil {
		t.Errorf("unknown operands must give no information, got %v", out)
	}
}

func TestArrayArithBroadcast(t *testing.T) {
	mat := types.TypeInfo{
		ObjType: types.MatrixF64, Is2D: true,
		SizeKnown: true, MatSize: []int{2, 3}, IsInteger: true,
	}
	out := ArrayArith(true)(args2(types.ScalarType(types.MatrixF64, true), mat))
	got := out[0][0]
	if !got.SizeKnown || got.MatSize[0] != 2 || got.MatSize[1] != 3 {
		t.Errorf("scalar op matrix must keep the matrix shape, got %v", got)
	}
	if got.IsScalar {
		t.Error("result of scalar op matrix is not scalar")
	}
}

func TestMultMatrixShapes(t *testing.T) {
	l := types.TypeInfo{ObjType: types.MatrixF64, Is2D: true, SizeKnown: true, MatSize: []int{2, 3}}
	r := types.TypeInfo{ObjType: types.MatrixF64, Is2D: true, SizeKnown: true, MatSize: []int{3, 4}}
	out := Mult(args2(l, r))
	got := out[0][0]
	if !got.SizeKnown || got.MatSize[0] != 2 || got.MatSize[1] != 4 {
		t.Errorf("matrix product shape = %v, want [2 4]", got.MatSize)
	}
}

func TestDivNeverInteger(t *testing.T) {
	out := Div(args2(
		types.ScalarType(types.MatrixF64, true),
		types.ScalarType(types.MatrixF64, true),
	))
	got := out[0][0]
	if got.IsInteger {
		t.Error("division result must not be marked integer")
	}
	if !got.IsScalar {
		t.Error("scalar / scalar stays scalar")
	}
}

func TestArrayLogic(t *testing.T) {
	out := ArrayLogic(args2(
		types.ScalarType(types.MatrixF64, true),
		types.ScalarType(types.MatrixF64, false),
	))
	got := out[0][0]
	if got.ObjType != types.LogicalArray || !got.IsScalar || !got.IsInteger {
		t.Errorf("comparison of scalars must be a scalar logical, got %v", got)
	}

	// Unknown operands still compare to a logical value.
	out = ArrayLogic(types.TypeSetString{nil, nil})
	if len(out) != 1 || len(out[0]) != 1 || out[0][0].ObjType != types.LogicalArray {
		t.Errorf("unknown comparison must still be logical, got %v", out)
	}
}

func TestNotShape(t *testing.T) {
	mat := types.TypeInfo{ObjType: types.MatrixF64, Is2D: true, SizeKnown: true, MatSize: []int{2, 2}}
	out := Not(types.TypeSetString{types.MakeSet(mat)})
	got := out[0][0]
	if got.ObjType != types.LogicalArray || !got.SizeKnown || got.MatSize[0] != 2 {
		t.Errorf("not must keep the operand shape, got %v", got)
	}
}

func TestTranspSwapsDims(t *testing.T) {
	mat := types.TypeInfo{ObjType: types.MatrixF64, Is2D: true, SizeKnown: true, MatSize: []int{2, 5}}
	out := Transp(types.TypeSetString{types.MakeSet(mat)})
	got := out[0][0]
	if got.MatSize[0] != 5 || got.MatSize[1] != 2 {
		t.Errorf("transpose size = %v, want [5 2]", got.MatSize)
	}
}

func TestBuiltinMappings(t *testing.T) {
	lib := make(map[string]bool)
	for _, f := range Builtins() {
		lib[f.Name] = true
	}
	for _, name := range []string{"zeros", "size", "numel", "abs", "sum"} {
		if !lib[name] {
			t.Errorf("builtin %s missing from catalogue", name)
		}
	}

	out := allocMapping(nil)
	if got := out[0][0]; !got.IsScalar || got.ObjType != types.MatrixF64 {
		t.Errorf("zeros() must be a scalar f64, got %v", got)
	}

	out = allocMapping(types.TypeSetString{types.MakeSet(types.ScalarType(types.MatrixF64, true))})
	if got := out[0][0]; got.SizeKnown || !got.Is2D {
		t.Errorf("zeros(n) must be a 2D matrix of unknown size, got %v", got)
	}

	out = countMapping(nil)
	if got := out[0][0]; !got.IsScalar || !got.IsInteger {
		t.Errorf("numel must be an integer scalar, got %v", got)
	}

	comp := types.TypeInfo{ObjType: types.MatrixC128, Is2D: true}
	out = absMapping(types.TypeSetString{types.MakeSet(comp)})
	if got := out[0][0]; got.ObjType != types.MatrixF64 {
		t.Errorf("abs of complex must be real, got %v", got)
	}
}
