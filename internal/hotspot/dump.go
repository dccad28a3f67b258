package hotspot

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// DumpHeader is the first line of every counter dump. The hotspots
// tooling depends on these column names.
const DumpHeader = "calling,callee,count"

// Dump writes every touched signature of the three stores to the
// configured CSV path. Reading the cells without synchronization is
// fine: a stale value costs nothing.
func (p *Profiler) Dump() error {
	f, err := os.Create(p.dumpPath)
	if err != nil {
		return errors.Wrapf(err, "opening counter dump %s", p.dumpPath)
	}

	var werr error
	if _, err := fmt.Fprintln(f, DumpHeader); err != nil {
		werr = err
	}
	for _, line := range p.FormatRows() {
		if werr != nil {
			break
		}
		_, werr = fmt.Fprintln(f, line)
	}

	werr = multierr.Append(werr, f.Close())
	return errors.Wrapf(werr, "writing counter dump %s", p.dumpPath)
}

// FormatRows renders the current counters as CSV lines, function store
// first, then loops, then interpreted contexts, each sorted by key.
func (p *Profiler) FormatRows() []string {
	var lines []string
	for _, store := range []*counterStore{p.funcs, p.loops, p.interps} {
		rows := store.snapshot()
		keys := make([]string, 0, len(rows))
		for key := range rows {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("%s,%d", key, rows[key]))
		}
	}
	return lines
}

// CounterValue returns the current value for a calling/callee pair in
// the function store; the boolean result is false for an untouched
// signature.
func (p *Profiler) CounterValue(calling, callee Signature) (uint32, bool) {
	p.funcs.mu.Lock()
	defer p.funcs.mu.Unlock()
	addr, ok := p.funcs.counters[rowKey(calling, callee)]
	if !ok {
		return 0, false
	}
	return *addr, true
}
