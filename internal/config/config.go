// Package config holds the runtime knobs shared across the compiler
// core: verbosity, and the profiler settings loaded from funmat.yaml
// with FUNMAT_* environment overrides.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Verbose enables debug logging in the analyses and the profiler.
// It is set once at startup.
var Verbose = false

// DefaultDumpPath is where the profiler writes its counter CSV.
const DefaultDumpPath = "./counters.out"

// DefaultDecayInterval is how often the profiler decays its counters.
const DefaultDecayInterval = 1000 * time.Millisecond

// Profile configures the hotspot profiler.
type Profile struct {
	// Strategy selects the profiling mode: "off" or "basic".
	Strategy string `yaml:"strategy"`

	// DecayIntervalMs is the background decay period in milliseconds.
	DecayIntervalMs int `yaml:"decay_interval_ms"`

	// DumpPath is the counter CSV output path.
	DumpPath string `yaml:"dump_path"`

	// HistoryDB is the optional SQLite database recording dump history.
	HistoryDB string `yaml:"history_db"`
}

// DefaultProfile returns the built-in profiler settings.
func DefaultProfile() Profile {
	return Profile{
		Strategy:        "basic",
		DecayIntervalMs: int(DefaultDecayInterval / time.Millisecond),
		DumpPath:        DefaultDumpPath,
	}
}

// LoadProfile reads a profiler config file and applies environment
// overrides. A missing file is not an error: the defaults are used.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return p, errors.Wrapf(err, "reading profiler config %s", path)
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, errors.Wrapf(err, "parsing profiler config %s", path)
		}
	}

	applyEnv(&p)
	return p, nil
}

// applyEnv overlays FUNMAT_* environment variables on p.
func applyEnv(p *Profile) {
	p.Strategy = env.Str("FUNMAT_PROF_STRATEGY", p.Strategy)
	p.DecayIntervalMs = env.Int("FUNMAT_PROF_INTERVAL_MS", p.DecayIntervalMs)
	p.DumpPath = env.Str("FUNMAT_PROF_DUMP", p.DumpPath)
	p.HistoryDB = env.Str("FUNMAT_PROF_HISTORY_DB", p.HistoryDB)
}

// DecayInterval returns the decay period as a duration, falling back
// to the default for non-positive values.
func (p Profile) DecayInterval() time.Duration {
	if p.DecayIntervalMs <= 0 {
		return DefaultDecayInterval
	}
	return time.Duration(p.DecayIntervalMs) * time.Millisecond
}
