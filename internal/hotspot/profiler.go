// Package hotspot implements the runtime hotspot profiler: counter
// instrumentation emitted into generated code, a background worker that
// decays the counters so recent activity stands out, and a CSV dump of
// every touched signature.
package hotspot

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/funmat/internal/config"
	"github.com/funvibe/funmat/internal/ir"
)

// Strategy selects the profiling mode.
type Strategy int

const (
	// Off disables all instrumentation: the emit hooks become no-ops.
	Off Strategy = iota

	// Basic counts function calls, loop iterations and interpreted
	// invocations.
	Basic
)

// ParseStrategy maps a config string to a Strategy, defaulting to Basic.
func ParseStrategy(s string) Strategy {
	if s == "off" {
		return Off
	}
	return Basic
}

// BlockBuilder is the basic-block abstraction the profiler emits its
// instrumentation into: a load of the counter cell, an increment, and a
// store back. The emitter owns when (and whether) the block runs.
type BlockBuilder interface {
	EmitLoadU32(addr *uint32)
	EmitAddU32(delta uint32)
	EmitStoreU32(addr *uint32)
}

// Profiler owns the counter stores and the background decay worker.
// Counter cells are heap-allocated so their addresses stay valid for as
// long as instrumented code may run; increments from that code are
// deliberately unsynchronized, lost updates are acceptable.
type Profiler struct {
	strategy Strategy

	funcs   *counterStore
	loops   *counterStore
	interps *counterStore

	// contexts is the interpreted-call context stack, mutated only by
	// the single-threaded emitter.
	contexts []string

	loopIDs   map[*ir.LoopStmt]int
	interpIDs map[string]int

	runID    uuid.UUID
	dumpPath string

	worker *worker
}

// New creates a profiler with the given settings and starts its decay
// worker. Call Shutdown to stop the worker and write the final dump.
func New(profile config.Profile) *Profiler {
	p := &Profiler{
		strategy:  ParseStrategy(profile.Strategy),
		funcs:     newCounterStore(),
		loops:     newCounterStore(),
		interps:   newCounterStore(),
		loopIDs:   make(map[*ir.LoopStmt]int),
		interpIDs: make(map[string]int),
		runID:     uuid.New(),
		dumpPath:  profile.DumpPath,
	}
	if p.dumpPath == "" {
		p.dumpPath = config.DefaultDumpPath
	}

	p.worker = startWorker(p, profile.DecayInterval())

	if config.Verbose {
		log.Printf("hotspot: profiler run %s started", p.runID)
	}
	return p
}

// RunID identifies this profiler run in its log messages. Dumps do not
// carry it.
func (p *Profiler) RunID() uuid.UUID { return p.runID }

// InstrumentFuncCall emits a counter increment for a caller/callee pair
// into the entry block of the generated callee call site.
func (p *Profiler) InstrumentFuncCall(caller, callee Signature, bb BlockBuilder) {
	if p.strategy == Off {
		return
	}
	addr := p.funcs.cell(rowKey(caller, callee))
	emitIncrement(bb, addr)
}

// InstrumentLoop emits a per-iteration counter increment for a loop
// into bb, which the emitter places in the loop body.
func (p *Profiler) InstrumentLoop(owner Signature, loop *ir.LoopStmt, bb BlockBuilder) {
	if p.strategy == Off {
		return
	}
	id, ok := p.loopIDs[loop]
	if !ok {
		id = len(p.loopIDs)
		p.loopIDs[loop] = id
	}
	addr := p.loops.cell(rowKey(owner, LoopSignature(id)))
	emitIncrement(bb, addr)
}

// PushContext enters an interpreted-call context: instrumentation
// emitted until the matching PopContext counts against owner.
func (p *Profiler) PushContext(owner Signature) {
	p.contexts = append(p.contexts, string(owner))
}

// PopContext leaves the innermost interpreted-call context.
func (p *Profiler) PopContext() {
	if len(p.contexts) == 0 {
		panic("hotspot: context stack underflow")
	}
	p.contexts = p.contexts[:len(p.contexts)-1]
}

// InstrumentInterpreter emits a counter increment for an interpreted
// invocation in the current context.
func (p *Profiler) InstrumentInterpreter(bb BlockBuilder) {
	if p.strategy == Off {
		return
	}
	if len(p.contexts) == 0 {
		panic("hotspot: interpreter instrumentation outside any context")
	}
	owner := p.contexts[len(p.contexts)-1]

	id, ok := p.interpIDs[owner]
	if !ok {
		id = len(p.interpIDs)
		p.interpIDs[owner] = id
	}
	addr := p.interps.cell(rowKey(Signature(owner), InterpSignature(id)))
	emitIncrement(bb, addr)
}

// Shutdown stops the decay worker, waits for it, and writes a final
// dump. It is safe to call once.
func (p *Profiler) Shutdown() {
	p.worker.stop()
	if err := p.Dump(); err != nil {
		log.Printf("hotspot: final dump failed: %v", err)
	}
	if config.Verbose {
		log.Printf("hotspot: profiler run %s stopped", p.runID)
	}
}

func emitIncrement(bb BlockBuilder, addr *uint32) {
	bb.EmitLoadU32(addr)
	bb.EmitAddU32(1)
	bb.EmitStoreU32(addr)
}

// counterStore maps signatures to heap-allocated counter cells. The
// map itself is guarded: the mutator inserts while the decay worker
// iterates. The cells are not: instrumented code increments them
// without synchronization.
type counterStore struct {
	mu       sync.Mutex
	counters map[string]*uint32
}

func newCounterStore() *counterStore {
	return &counterStore{counters: make(map[string]*uint32)}
}

// cell returns the stable counter address for key, allocating on first
// use.
func (s *counterStore) cell(key string) *uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr, ok := s.counters[key]; ok {
		return addr
	}
	addr := new(uint32)
	s.counters[key] = addr
	return addr
}

// decay multiplies every counter by the given factor.
func (s *counterStore) decay(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, addr := range s.counters {
		*addr = uint32(float64(*addr) * factor)
	}
}

// max returns the largest counter value in the store.
func (s *counterStore) max() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var m uint32
	for _, addr := range s.counters {
		if v := *addr; v > m {
			m = v
		}
	}
	return m
}

// snapshot returns a copy of the store's rows for dumping.
func (s *counterStore) snapshot() map[string]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint32, len(s.counters))
	for key, addr := range s.counters {
		out[key] = *addr
	}
	return out
}
