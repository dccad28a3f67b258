package hotspot

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/funvibe/funmat/internal/config"
)

// Decay factors: the gentle factor applies normally, the steep one when
// a store's maximum has grown past half the int32 range, pulling
// runaway counters back before they saturate.
const (
	decayFactor      = 0.9
	steepDecayFactor = 0.7
	decayThreshold   = math.MaxInt32 / 2
)

// worker is the background goroutine that periodically decays the
// counters and refreshes the dump.
type worker struct {
	p        *Profiler
	interval time.Duration
	done     chan struct{}
	stop1    sync.Once
	wg       sync.WaitGroup
}

func startWorker(p *Profiler, interval time.Duration) *worker {
	w := &worker{
		p:        p,
		interval: interval,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.maintain()
	return w
}

func (w *worker) maintain() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			start := time.Now()
			w.p.decay()

			if err := w.p.Dump(); err != nil {
				log.Printf("hotspot: dump failed: %v", err)
			}

			if config.Verbose {
				log.Printf("hotspot: maintenance took %s", time.Since(start))
			}
		}
	}
}

func (w *worker) stop() {
	w.stop1.Do(func() { close(w.done) })
	w.wg.Wait()
}

// decay applies one decay cycle to every store.
func (p *Profiler) decay() {
	for _, store := range []*counterStore{p.funcs, p.loops, p.interps} {
		factor := decayFactor
		if store.max() > decayThreshold {
			factor = steepDecayFactor
		}
		store.decay(factor)
	}
}
