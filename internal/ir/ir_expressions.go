package ir

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpMinus
	OpMult
	OpDiv
	OpLeftDiv
	OpPower
	OpArrayMult
	OpArrayDiv
	OpArrayLeftDiv
	OpArrayPower
	OpEqual
	OpNotEqual
	OpLessThan
	OpLessThanEq
	OpGreaterThan
	OpGreaterThanEq
	OpOr
	OpAnd
	OpArrayOr
	OpArrayAnd
)

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	OpUnaryPlus UnaryOp = iota
	OpUnaryMinus
	OpNot
	OpTransp
	OpArrayTransp
)

// SymbolExpr is a reference to a named variable or function. Symbols are
// interned; obtain them through Symbol, never by constructing the struct.
type SymbolExpr struct {
	Name string
}

func (e *SymbolExpr) irNode()                 {}
func (e *SymbolExpr) expressionNode()         {}
func (e *SymbolExpr) RootSymbol() *SymbolExpr { return e }

// IntConstExpr is an integer literal.
type IntConstExpr struct {
	Value int64
}

func (e *IntConstExpr) irNode()                 {}
func (e *IntConstExpr) expressionNode()         {}
func (e *IntConstExpr) RootSymbol() *SymbolExpr { return nil }

// FPConstExpr is a floating-point literal.
type FPConstExpr struct {
	Value float64
}

func (e *FPConstExpr) irNode()                 {}
func (e *FPConstExpr) expressionNode()         {}
func (e *FPConstExpr) RootSymbol() *SymbolExpr { return nil }

// StrConstExpr is a string literal.
type StrConstExpr struct {
	Value string
}

func (e *StrConstExpr) irNode()                 {}
func (e *StrConstExpr) expressionNode()         {}
func (e *StrConstExpr) RootSymbol() *SymbolExpr { return nil }

// RangeExpr is a start:step:end range. Start, Step and End may each be
// nil: a bare colon in an indexing context has all three absent.
type RangeExpr struct {
	Start Expression
	Step  Expression
	End   Expression
}

func (e *RangeExpr) irNode()                 {}
func (e *RangeExpr) expressionNode()         {}
func (e *RangeExpr) RootSymbol() *SymbolExpr { return nil }

// MatrixExpr is a matrix literal, stored row-major.
type MatrixExpr struct {
	Rows [][]Expression
}

func (e *MatrixExpr) irNode()                 {}
func (e *MatrixExpr) expressionNode()         {}
func (e *MatrixExpr) RootSymbol() *SymbolExpr { return nil }

// CellArrayExpr is a cell-array literal, stored row-major.
type CellArrayExpr struct {
	Rows [][]Expression
}

func (e *CellArrayExpr) irNode()                 {}
func (e *CellArrayExpr) expressionNode()         {}
func (e *CellArrayExpr) RootSymbol() *SymbolExpr { return nil }

// FnHandleExpr is a handle to a named function (@f).
type FnHandleExpr struct {
	Symbol *SymbolExpr
}

func (e *FnHandleExpr) irNode()                 {}
func (e *FnHandleExpr) expressionNode()         {}
func (e *FnHandleExpr) RootSymbol() *SymbolExpr { return nil }

// DotExpr is a struct field access (Expr.Field).
type DotExpr struct {
	Expr  Expression
	Field string
}

func (e *DotExpr) irNode()         {}
func (e *DotExpr) expressionNode() {}
func (e *DotExpr) RootSymbol() *SymbolExpr {
	return e.Expr.RootSymbol()
}

// ParamExpr is a parameterized symbol: matrix indexing or a function
// call, undistinguished until types are known.
type ParamExpr struct {
	Sym  *SymbolExpr
	Args []Expression
}

func (e *ParamExpr) irNode()                 {}
func (e *ParamExpr) expressionNode()         {}
func (e *ParamExpr) RootSymbol() *SymbolExpr { return e.Sym }

// CellIndexExpr is a cell-array content access (sym{args}).
type CellIndexExpr struct {
	Sym  *SymbolExpr
	Args []Expression
}

func (e *CellIndexExpr) irNode()                 {}
func (e *CellIndexExpr) expressionNode()         {}
func (e *CellIndexExpr) RootSymbol() *SymbolExpr { return e.Sym }

// LambdaExpr is an anonymous function literal.
type LambdaExpr struct {
	InParams []*SymbolExpr
	Body     Expression
}

func (e *LambdaExpr) irNode()                 {}
func (e *LambdaExpr) expressionNode()         {}
func (e *LambdaExpr) RootSymbol() *SymbolExpr { return nil }

// EndExpr is the end keyword inside an indexing expression.
type EndExpr struct{}

func (e *EndExpr) irNode()                 {}
func (e *EndExpr) expressionNode()         {}
func (e *EndExpr) RootSymbol() *SymbolExpr { return nil }

// BinaryOpExpr applies a binary operator.
type BinaryOpExpr struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (e *BinaryOpExpr) irNode()                 {}
func (e *BinaryOpExpr) expressionNode()         {}
func (e *BinaryOpExpr) RootSymbol() *SymbolExpr { return nil }

// UnaryOpExpr applies a unary operator.
type UnaryOpExpr struct {
	Op      UnaryOp
	Operand Expression
}

func (e *UnaryOpExpr) irNode()                 {}
func (e *UnaryOpExpr) expressionNode()         {}
func (e *UnaryOpExpr) RootSymbol() *SymbolExpr { return nil }

// SubExprs returns the direct sub-expressions of e, in source order.
func SubExprs(e Expression) []Expression {
	switch x := e.(type) {
	case *RangeExpr:
		var out []Expression
		if x.Start != nil {
			out = append(out, x.Start)
		}
		if x.Step != nil {
			out = append(out, x.Step)
		}
		if x.End != nil {
			out = append(out, x.End)
		}
		return out
	case *MatrixExpr:
		var out []Expression
		for _, row := range x.Rows {
			out = append(out, row...)
		}
		return out
	case *CellArrayExpr:
		var out []Expression
		for _, row := range x.Rows {
			out = append(out, row...)
		}
		return out
	case *DotExpr:
		return []Expression{x.Expr}
	case *ParamExpr:
		return append([]Expression{x.Sym}, x.Args...)
	case *CellIndexExpr:
		return append([]Expression{x.Sym}, x.Args...)
	case *LambdaExpr:
		return []Expression{x.Body}
	case *BinaryOpExpr:
		return []Expression{x.Left, x.Right}
	case *UnaryOpExpr:
		return []Expression{x.Operand}
	case *FnHandleExpr:
		return []Expression{x.Symbol}
	default:
		return nil
	}
}

// SymbolUses collects every symbol referenced anywhere under e.
func SymbolUses(e Expression) SymbolSet {
	uses := make(SymbolSet)
	collectUses(e, uses)
	return uses
}

func collectUses(e Expression, uses SymbolSet) {
	if sym, ok := e.(*SymbolExpr); ok {
		uses.Add(sym)
		return
	}
	for _, sub := range SubExprs(e) {
		collectUses(sub, uses)
	}
}
