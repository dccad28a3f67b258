package analysis

import (
	"fmt"

	"github.com/funvibe/funmat/internal/ir"
)

// Direction selects the traversal order of a dataflow analysis.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// loopSeeds are the values control-transfer statements re-seed from
// during a backward traversal of a loop.
type loopSeeds[I any] struct {
	breakSeed I
	contSeed  I
}

// Engine is a direction-agnostic dataflow driver parameterized by the
// analysis's Info lattice. The per-statement transfer hooks default to
// identity; control-transfer statements feed the exit collectors
// (forward) or re-seed the current value (backward).
//
// The engine records the value entering and leaving every node it
// visits in Pre and Out; for a backward analysis "entering" follows
// walk order, so Out holds the value before the node executes.
type Engine[I any] struct {
	Direction Direction

	// Merge joins two values at a control-flow join.
	Merge func(I, I) I

	// Equal detects the loop fixed point.
	Equal func(I, I) bool

	// Copy returns an independent copy of a value; recorded and merged
	// values must not alias the current one.
	Copy func(I) I

	// Bottom is the lattice zero, the initial body value of backward
	// loop iteration.
	Bottom func() I

	// Assign and Expr are the statement transfer functions.
	Assign func(I, *ir.AssignStmt) I
	Expr   func(I, *ir.ExprStmt) I

	// Cond transfers over an if-else condition: applied before the
	// branches (forward) or after their merge (backward).
	Cond func(I, *ir.IfElseStmt) I

	// RetSeed re-seeds the value at return statements in a backward
	// analysis.
	RetSeed I

	Pre map[ir.Node]I
	Out map[ir.Node]I

	retPoints   []I
	breakPoints []I
	contPoints  []I

	loops []loopSeeds[I]
}

func (e *Engine[I]) record(m map[ir.Node]I, n ir.Node, v I) {
	m[n] = e.Copy(v)
}

// Run walks seq from the given entry value and returns the exit value.
// Pre, Out and the exit collectors are reset first.
func (e *Engine[I]) Run(entry I, seq *ir.StmtSequence) I {
	e.Pre = make(map[ir.Node]I)
	e.Out = make(map[ir.Node]I)
	e.retPoints = nil
	e.breakPoints = nil
	e.contPoints = nil
	e.loops = nil

	if e.Direction == Backward {
		return e.runBackward(entry, seq)
	}
	return e.runForward(entry, seq)
}

func (e *Engine[I]) runForward(in I, seq *ir.StmtSequence) I {
	cur := in
	e.record(e.Pre, seq, cur)

	for _, st := range seq.Stmts {
		e.record(e.Pre, st, cur)

		switch s := st.(type) {
		case *ir.BreakStmt:
			e.breakPoints = append(e.breakPoints, e.Copy(cur))

		case *ir.ContinueStmt:
			e.contPoints = append(e.contPoints, e.Copy(cur))

		case *ir.ReturnStmt:
			e.retPoints = append(e.retPoints, e.Copy(cur))

		case *ir.AssignStmt:
			if e.Assign != nil {
				cur = e.Assign(cur, s)
			}

		case *ir.ExprStmt:
			if e.Expr != nil {
				cur = e.Expr(cur, s)
			}

		case *ir.IfElseStmt:
			e.record(e.Pre, s.Cond, cur)
			if e.Cond != nil {
				cur = e.Cond(cur, s)
			}
			e.record(e.Out, s.Cond, cur)
			ifOut := e.runForward(e.Copy(cur), s.IfBlock)
			elseOut := e.runForward(e.Copy(cur), s.ElseBlock)
			cur = e.Merge(ifOut, elseOut)

		case *ir.LoopStmt:
			cur = e.loopForward(cur, s)

		default:
			panic(fmt.Sprintf("dataflow: unexpected statement %T", st))
		}

		e.record(e.Out, st, cur)
	}

	e.record(e.Out, seq, cur)
	return cur
}

// loopForward iterates a loop to its fixed point: the exit value of the
// incrementation block must stop changing under the merge of the init
// exit and the previous iteration.
func (e *Engine[I]) loopForward(in I, loop *ir.LoopStmt) I {
	initExit := e.runNoExits(in, loop.Init, "loop init")

	cur := e.Copy(initExit)
	for {
		testIn := e.Merge(e.Copy(initExit), e.Copy(cur))
		testOut := e.runNoExits(testIn, loop.Test, "loop test")

		savedBreaks, savedConts := e.breakPoints, e.contPoints
		e.breakPoints, e.contPoints = nil, nil
		bodyOut := e.runForward(e.Copy(testOut), loop.Body)
		breaks, conts := e.breakPoints, e.contPoints
		e.breakPoints, e.contPoints = savedBreaks, savedConts

		incrIn := bodyOut
		for _, c := range conts {
			incrIn = e.Merge(incrIn, c)
		}
		incrOut := e.runNoExits(incrIn, loop.Incr, "loop incr")

		exit := e.Copy(testOut)
		for _, b := range breaks {
			exit = e.Merge(exit, b)
		}

		if e.Equal(incrOut, cur) {
			return exit
		}
		cur = incrOut
	}
}

// runNoExits runs a sequence that must not contain reachable break,
// continue or return statements (loop init/test/incr blocks).
func (e *Engine[I]) runNoExits(in I, seq *ir.StmtSequence, what string) I {
	nRet, nBreak, nCont := len(e.retPoints), len(e.breakPoints), len(e.contPoints)
	var out I
	if e.Direction == Backward {
		out = e.runBackward(in, seq)
	} else {
		out = e.runForward(in, seq)
	}
	if len(e.retPoints) != nRet || len(e.breakPoints) != nBreak || len(e.contPoints) != nCont {
		panic(fmt.Sprintf("dataflow: control transfer out of %s block", what))
	}
	return out
}

func (e *Engine[I]) runBackward(out I, seq *ir.StmtSequence) I {
	cur := out
	e.record(e.Pre, seq, cur)

	for i := len(seq.Stmts) - 1; i >= 0; i-- {
		st := seq.Stmts[i]
		e.record(e.Pre, st, cur)

		switch s := st.(type) {
		case *ir.ReturnStmt:
			cur = e.Copy(e.RetSeed)

		case *ir.BreakStmt:
			cur = e.Copy(e.topLoop("break").breakSeed)

		case *ir.ContinueStmt:
			cur = e.Copy(e.topLoop("continue").contSeed)

		case *ir.AssignStmt:
			if e.Assign != nil {
				cur = e.Assign(cur, s)
			}

		case *ir.ExprStmt:
			if e.Expr != nil {
				cur = e.Expr(cur, s)
			}

		case *ir.IfElseStmt:
			ifIn := e.runBackward(e.Copy(cur), s.IfBlock)
			elseIn := e.runBackward(e.Copy(cur), s.ElseBlock)
			cur = e.Merge(ifIn, elseIn)
			e.record(e.Pre, s.Cond, cur)
			if e.Cond != nil {
				cur = e.Cond(cur, s)
			}
			e.record(e.Out, s.Cond, cur)

		case *ir.LoopStmt:
			cur = e.loopBackward(cur, s)

		default:
			panic(fmt.Sprintf("dataflow: unexpected statement %T", st))
		}

		e.record(e.Out, st, cur)
	}

	e.record(e.Out, seq, cur)
	return cur
}

// loopBackward mirrors loopForward against the flow: the body's entry
// value must stop changing under the merge of the loop-exit value and
// the previous iteration's body value.
func (e *Engine[I]) loopBackward(out I, loop *ir.LoopStmt) I {
	bodyIn := e.Bottom()
	var testIn I
	for {
		testIn = e.runNoExits(e.Merge(e.Copy(bodyIn), e.Copy(out)), loop.Test, "loop test")
		incrIn := e.runNoExits(e.Copy(testIn), loop.Incr, "loop incr")

		e.loops = append(e.loops, loopSeeds[I]{
			breakSeed: e.Copy(out),
			contSeed:  e.Copy(incrIn),
		})
		newBodyIn := e.runBackward(e.Copy(incrIn), loop.Body)
		e.loops = e.loops[:len(e.loops)-1]

		if e.Equal(newBodyIn, bodyIn) {
			break
		}
		bodyIn = newBodyIn
	}
	return e.runNoExits(e.Copy(testIn), loop.Init, "loop init")
}

func (e *Engine[I]) topLoop(what string) loopSeeds[I] {
	if len(e.loops) == 0 {
		panic(fmt.Sprintf("dataflow: %s outside loop", what))
	}
	return e.loops[len(e.loops)-1]
}
