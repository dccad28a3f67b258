package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProfileMissingFileUsesDefaults(t *testing.T) {
	p, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	if p.Strategy != "basic" {
		t.Errorf("strategy = %q, want basic", p.Strategy)
	}
	if p.DecayInterval() != DefaultDecayInterval {
		t.Errorf("interval = %v, want %v", p.DecayInterval(), DefaultDecayInterval)
	}
	if p.DumpPath != DefaultDumpPath {
		t.Errorf("dump path = %q, want %q", p.DumpPath, DefaultDumpPath)
	}
}

func TestLoadProfileFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funmat.yaml")
	content := "strategy: off\ndecay_interval_ms: 250\ndump_path: /tmp/c.out\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Strategy != "off" {
		t.Errorf("strategy = %q, want off", p.Strategy)
	}
	if p.DecayInterval() != 250*time.Millisecond {
		t.Errorf("interval = %v, want 250ms", p.DecayInterval())
	}
	if p.DumpPath != "/tmp/c.out" {
		t.Errorf("dump path = %q", p.DumpPath)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funmat.yaml")
	if err := os.WriteFile(path, []byte("decay_interval_ms: 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FUNMAT_PROF_INTERVAL_MS", "50")
	t.Setenv("FUNMAT_PROF_STRATEGY", "off")

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.DecayInterval() != 50*time.Millisecond {
		t.Errorf("interval = %v, want the environment override", p.DecayInterval())
	}
	if p.Strategy != "off" {
		t.Errorf("strategy = %q, want the environment override", p.Strategy)
	}
}

func TestLoadProfileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funmat.yaml")
	if err := os.WriteFile(path, []byte("strategy: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Error("malformed yaml must error")
	}
}
