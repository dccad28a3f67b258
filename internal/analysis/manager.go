// Package analysis implements the static-analysis core driving
// specialization: a direction-agnostic dataflow engine over the IR,
// reaching-definition and live-variable analyses, a polymorphic
// type-inference engine with cached per-input-type function summaries,
// and the manager that memoizes analysis results.
package analysis

import (
	"log"

	"github.com/google/uuid"

	"github.com/funvibe/funmat/internal/config"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// Info is an immutable analysis result owned by the manager.
type Info interface {
	// ResultID returns the unique id assigned when the result was
	// computed, used to correlate debug logs.
	ResultID() uuid.UUID
}

// AnalysisInfo is the base embedded by every analysis result.
type AnalysisInfo struct {
	id uuid.UUID
}

func newAnalysisInfo() AnalysisInfo {
	return AnalysisInfo{id: uuid.New()}
}

// ResultID implements Info.
func (i *AnalysisInfo) ResultID() uuid.UUID { return i.id }

// ComputeFunc runs an analysis over a function body. When returnBottom
// is set the analysis must build its bottom result without traversing
// the body; the manager uses this to break inter-procedural cycles.
type ComputeFunc func(
	m *Manager,
	fn *ir.ProgFunction,
	body *ir.StmtSequence,
	inArgTypes types.TypeSetString,
	returnBottom bool,
) Info

// Kind names an analysis the manager can run.
type Kind struct {
	Name    string
	Compute ComputeFunc
}

// The registered analyses.
var (
	ReachDefs = &Kind{Name: "reachdefs"}
	LiveVars  = &Kind{Name: "livevars"}
	TypeInfer = &Kind{Name: "typeinfer"}
)

func init() {
	ReachDefs.Compute = computeReachDefs
	LiveVars.Compute = computeLiveVars
	TypeInfer.Compute = computeTypeInfo
}

type cacheKey struct {
	kind *Kind
	fn   *ir.ProgFunction
	body *ir.StmtSequence
	args string
}

// Manager memoizes analysis results per (analysis, function, body,
// input-type string) and breaks recursive requests by serving the
// analysis's bottom. The manager is single-threaded cooperative:
// re-entrant requests during inter-procedural inference are expected,
// concurrent ones are not.
type Manager struct {
	cache      map[cacheKey]Info
	inProgress map[cacheKey]bool
}

// NewManager creates an empty analysis manager.
func NewManager() *Manager {
	return &Manager{
		cache:      make(map[cacheKey]Info),
		inProgress: make(map[cacheKey]bool),
	}
}

// Request returns the result of running kind over the function body
// with the given input argument types, computing and caching it on
// first use. A request for a key that is already being computed returns
// the analysis's bottom result, terminating recursion on mutually
// recursive call chains.
func (m *Manager) Request(
	kind *Kind,
	fn *ir.ProgFunction,
	body *ir.StmtSequence,
	inArgTypes types.TypeSetString,
) Info {
	key := cacheKey{kind: kind, fn: fn, body: body, args: inArgTypes.ArgString()}

	if info, ok := m.cache[key]; ok {
		return info
	}

	if m.inProgress[key] {
		if config.Verbose {
			log.Printf("analysis: recursive %s request on %s%s, serving bottom",
				kind.Name, fn.Name, key.args)
		}
		return kind.Compute(m, fn, body, inArgTypes, true)
	}

	m.inProgress[key] = true
	info := kind.Compute(m, fn, body, inArgTypes, false)
	delete(m.inProgress, key)

	m.cache[key] = info

	if config.Verbose {
		log.Printf("analysis: computed %s on %s%s (result %s)",
			kind.Name, fn.Name, key.args, info.ResultID())
	}

	return info
}
