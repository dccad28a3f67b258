// Package types implements the type lattice used by the specializing
// analyses: TypeInfo values describing run-time objects, reduced sets of
// those values, and the widening operations that keep the lattice finite.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// ObjType identifies the run-time object class a TypeInfo describes.
type ObjType int

const (
	MatrixI32 ObjType = iota
	MatrixF64
	MatrixC128
	LogicalArray
	CharArray
	CellArray
	StructArray
	FnHandle
	Function
)

var objTypeNames = map[ObjType]string{
	MatrixI32:    "i32",
	MatrixF64:    "f64",
	MatrixC128:   "c128",
	LogicalArray: "log",
	CharArray:    "char",
	CellArray:    "cell",
	StructArray:  "struct",
	FnHandle:     "fnh",
	Function:     "func",
}

func (t ObjType) String() string {
	if s, ok := objTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("objtype(%d)", int(t))
}

// IsMatrix reports whether t is a numeric, logical or character matrix.
func (t ObjType) IsMatrix() bool {
	return t >= MatrixI32 && t <= CharArray
}

// IsMatrixOrCell reports whether t is a matrix or a cell array. Indexed
// assignment treats both families the same way.
func (t ObjType) IsMatrixOrCell() bool {
	return t >= MatrixI32 && t <= CellArray
}

// Callable identifies the function a FnHandle type points to. Program and
// library functions both implement it; equality is pointer identity of the
// underlying function object.
type Callable interface {
	FuncName() string
}

// TypeInfo describes one possible run-time type of a value.
type TypeInfo struct {
	ObjType ObjType

	// Is2D means the value is guaranteed to have exactly two dimensions.
	Is2D bool

	// IsScalar means the value is guaranteed to be a 1x1 matrix.
	// IsScalar implies Is2D, SizeKnown and MatSize == [1,1].
	IsScalar bool

	// IsInteger means every element is guaranteed to hold an integer value.
	IsInteger bool

	// SizeKnown means MatSize holds the full dimension vector.
	SizeKnown bool

	// MatSize is the dimension vector, valid only when SizeKnown.
	MatSize []int

	// Function is the referenced function, only for FnHandle.
	Function Callable

	// CellTypes is the set of possible stored types, only for CellArray.
	CellTypes TypeSet

	// Fields maps field names to their possible type, only for StructArray.
	Fields map[string]TypeInfo
}

// ScalarType builds the TypeInfo of a 1x1 matrix of the given object type.
func ScalarType(obj ObjType, integer bool) TypeInfo {
	return TypeInfo{
		ObjType:   obj,
		Is2D:      true,
		IsScalar:  true,
		IsInteger: integer,
		SizeKnown: true,
		MatSize:   []int{1, 1},
	}
}

// Equal reports structural equality of two TypeInfo values.
func (t TypeInfo) Equal(o TypeInfo) bool {
	if t.ObjType != o.ObjType ||
		t.Is2D != o.Is2D ||
		t.IsScalar != o.IsScalar ||
		t.IsInteger != o.IsInteger ||
		t.SizeKnown != o.SizeKnown {
		return false
	}
	if !dimsEqual(t.MatSize, o.MatSize) {
		return false
	}
	if t.Function != o.Function {
		return false
	}
	if !t.CellTypes.Equal(o.CellTypes) {
		return false
	}
	if len(t.Fields) != len(o.Fields) {
		return false
	}
	for name, ft := range t.Fields {
		of, ok := o.Fields[name]
		if !ok || !ft.Equal(of) {
			return false
		}
	}
	return true
}

func dimsEqual(a, b []int) bool {
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

// Widen computes the pointwise widening of two TypeInfo values with the
// same object type. The boolean result is false when the object types
// differ, in which case the values are incomparable and both must be kept.
func Widen(a, b TypeInfo) (TypeInfo, bool) {
	if a.ObjType != b.ObjType {
		return TypeInfo{}, false
	}

	out := TypeInfo{
		ObjType:   a.ObjType,
		Is2D:      a.Is2D && b.Is2D,
		IsScalar:  a.IsScalar && b.IsScalar,
		IsInteger: a.IsInteger && b.IsInteger,
	}

	if a.SizeKnown && b.SizeKnown && dimsEqual(a.MatSize, b.MatSize) {
		out.SizeKnown = true
		out.MatSize = a.MatSize
	}

	if a.Function != nil && a.Function == b.Function {
		out.Function = a.Function
	}

	if len(a.CellTypes) > 0 || len(b.CellTypes) > 0 {
		out.CellTypes = Union(a.CellTypes, b.CellTypes)
	}

	if len(a.Fields) > 0 && len(b.Fields) > 0 {
		fields := make(map[string]TypeInfo)
		for name, af := range a.Fields {
			bf, ok := b.Fields[name]
			if !ok {
				continue
			}
			// A field present in both structs with differing object types
			// carries no single widened value; drop it.
			if wf, same := Widen(af, bf); same {
				fields[name] = wf
			}
		}
		if len(fields) > 0 {
			out.Fields = fields
		}
	}

	return out, true
}

// String renders a TypeInfo for debug output.
func (t TypeInfo) String() string {
	var b strings.Builder
	b.WriteString(t.ObjType.String())
	if t.IsScalar {
		b.WriteString(" scalar")
	} else if t.Is2D {
		b.WriteString(" 2d")
	}
	if t.IsInteger {
		b.WriteString(" int")
	}
	if t.SizeKnown {
		dims := make([]string, len(t.MatSize))
		for i, d := range t.MatSize {
			dims[i] = fmt.Sprintf("%d", d)
		}
		b.WriteString(" [" + strings.Join(dims, "x") + "]")
	}
	if t.Function != nil {
		b.WriteString(" @" + t.Function.FuncName())
	}
	if len(t.CellTypes) > 0 {
		b.WriteString(" {" + t.CellTypes.String() + "}")
	}
	if len(t.Fields) > 0 {
		names := make([]string, 0, len(t.Fields))
		for name := range t.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = name + ":" + t.Fields[name].String()
		}
		b.WriteString(" <" + strings.Join(parts, ",") + ">")
	}
	return b.String()
}

// ShortString renders the compact form used in profiler signatures:
// the short object-type name followed by the S (scalar), I (integer)
// and 2 (two-dimensional) flags.
func (t TypeInfo) ShortString() string {
	var b strings.Builder
	b.WriteString(t.ObjType.String())
	if t.IsScalar {
		b.WriteByte('S')
	}
	if t.IsInteger {
		b.WriteByte('I')
	}
	if t.Is2D {
		b.WriteByte('2')
	}
	return b.String()
}
