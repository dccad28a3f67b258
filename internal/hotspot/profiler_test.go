package hotspot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/funmat/internal/config"
	"github.com/funvibe/funmat/internal/ir"
	"github.com/funvibe/funmat/internal/types"
)

// testProfile keeps the decay worker effectively idle so tests control
// every decay cycle themselves.
func testProfile(t *testing.T) config.Profile {
	t.Helper()
	return config.Profile{
		Strategy:        "basic",
		DecayIntervalMs: int(time.Hour / time.Millisecond),
		DumpPath:        filepath.Join(t.TempDir(), "counters.out"),
	}
}

func newTestProfiler(t *testing.T) *Profiler {
	t.Helper()
	p := New(testProfile(t))
	t.Cleanup(p.Shutdown)
	return p
}

func callerSig() Signature {
	args := types.TypeSetString{types.MakeSet(types.ScalarType(types.MatrixF64, true))}
	return FuncSignature("outer", args)
}

func calleeSig() Signature {
	args := types.TypeSetString{types.MakeSet(types.ScalarType(types.MatrixF64, true))}
	return FuncSignature("inner", args)
}

func TestCounterCountsInvocations(t *testing.T) {
	p := newTestProfiler(t)

	const n = 57
	for i := 0; i < n; i++ {
		var bb ExecBlock
		p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)
	}

	got, ok := p.CounterValue(callerSig(), calleeSig())
	if !ok {
		t.Fatal("signature not present in the function store")
	}
	if got != n {
		t.Errorf("counter = %d, want %d", got, n)
	}
}

func TestDecayMultiplies(t *testing.T) {
	p := newTestProfiler(t)

	var bb ExecBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)

	addr := p.funcs.cell(rowKey(callerSig(), calleeSig()))
	*addr = 100

	p.decay()

	if got := *addr; got != 90 {
		t.Errorf("counter after decay = %d, want floor(100*0.9) = 90", got)
	}

	// Decay is monotonic non-increasing down to zero.
	*addr = 1
	p.decay()
	if got := *addr; got != 0 {
		t.Errorf("counter after decay = %d, want 0", got)
	}
}

func TestDecaySteepensPastThreshold(t *testing.T) {
	p := newTestProfiler(t)

	var bb ExecBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)

	addr := p.funcs.cell(rowKey(callerSig(), calleeSig()))
	over := uint32(decayThreshold + 1000)
	*addr = over

	p.decay()

	want := uint32(float64(over) * steepDecayFactor)
	if got := *addr; got != want {
		t.Errorf("counter after steep decay = %d, want %d", got, want)
	}
}

func TestStableCounterAddresses(t *testing.T) {
	p := newTestProfiler(t)

	var bb ExecBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)
	addr := p.funcs.cell(rowKey(callerSig(), calleeSig()))

	// Force plenty of inserts; the original cell must keep its address.
	for i := 0; i < 1000; i++ {
		other := FuncSignature("inner"+string(rune('a'+i%26))+string(rune('a'+i/26)), nil)
		p.InstrumentFuncCall(callerSig(), other, &bb)
	}

	if again := p.funcs.cell(rowKey(callerSig(), calleeSig())); again != addr {
		t.Error("counter address changed after insertions")
	}
}

func TestLoopAndInterpreterCounters(t *testing.T) {
	p := newTestProfiler(t)
	owner := callerSig()

	loop := &ir.LoopStmt{}
	var bb ExecBlock
	p.InstrumentLoop(owner, loop, &bb)
	p.InstrumentLoop(owner, loop, &bb)

	p.PushContext(owner)
	p.InstrumentInterpreter(&bb)
	p.PopContext()

	rows := p.FormatRows()
	var loopRow, interpRow string
	for _, row := range rows {
		if strings.Contains(row, "_loop0") {
			loopRow = row
		}
		if strings.Contains(row, "_interpreted0") {
			interpRow = row
		}
	}
	if !strings.HasSuffix(loopRow, ",2") {
		t.Errorf("loop row = %q, want count 2", loopRow)
	}
	if !strings.HasSuffix(interpRow, ",1") {
		t.Errorf("interp row = %q, want count 1", interpRow)
	}
}

func TestContextStackUnderflowPanics(t *testing.T) {
	p := newTestProfiler(t)
	defer func() {
		if recover() == nil {
			t.Error("pop on an empty context stack must panic")
		}
	}()
	p.PopContext()
}

func TestOffStrategyEmitsNothing(t *testing.T) {
	profile := testProfile(t)
	profile.Strategy = "off"
	p := New(profile)
	t.Cleanup(p.Shutdown)

	var bb RecordingBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)
	if len(bb.Ops) != 0 {
		t.Errorf("off strategy emitted %v", bb.Ops)
	}
}

func TestInstrumentationEmitsLoadAddStore(t *testing.T) {
	p := newTestProfiler(t)

	var bb RecordingBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)

	if diff := cmp.Diff([]string{"load", "add", "store"}, bb.Ops); diff != "" {
		t.Errorf("emitted ops mismatch (-want +got):\n%s", diff)
	}
	if len(bb.Addrs) != 2 || bb.Addrs[0] != bb.Addrs[1] {
		t.Error("load and store must target the same counter cell")
	}
}

func TestDumpFormat(t *testing.T) {
	profile := testProfile(t)
	p := New(profile)

	var bb ExecBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)
	p.InstrumentLoop(callerSig(), &ir.LoopStmt{}, &bb)

	p.Shutdown()

	data, err := os.ReadFile(profile.DumpPath)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	if lines[0] != DumpHeader {
		t.Errorf("header = %q, want %q", lines[0], DumpHeader)
	}
	if len(lines) != 3 {
		t.Fatalf("dump has %d lines, want header plus two rows:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[1], `"outer(f64SI2)"`) || !strings.Contains(lines[1], `"inner(f64SI2)"`) {
		t.Errorf("function row = %q", lines[1])
	}
	if !strings.Contains(lines[2], `"_loop0"`) {
		t.Errorf("loop row = %q", lines[2])
	}
}

func TestWorkerDecaysInBackground(t *testing.T) {
	profile := testProfile(t)
	profile.DecayIntervalMs = 10
	p := New(profile)
	t.Cleanup(p.Shutdown)

	var bb ExecBlock
	p.InstrumentFuncCall(callerSig(), calleeSig(), &bb)
	addr := p.funcs.cell(rowKey(callerSig(), calleeSig()))
	*addr = 1000

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if v, _ := p.CounterValue(callerSig(), calleeSig()); v < 1000 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("background worker never decayed the counter")
}
