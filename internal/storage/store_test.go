package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gicrisf/org-lorenz-attractor/internal/config"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

func testRun() (*config.Config, map[string]float64, integrators.Stats, []float64, []dynamo.State) {
	cfg := config.DefaultConfig()
	cfg.TMax = 1
	cfg.Samples = 3
	params := map[string]float64{"sigma": 10, "rho": 28, "beta": 2.667}
	stats := integrators.Stats{Steps: 12, Rejected: 1, Evals: 80, LastStep: 0.125}
	times := []float64{0, 0.5, 1}
	states := []dynamo.State{
		{0, 1, 1.05},
		{2.5, 3.75, 1.9},
		{7.1, 8.9, 12.3},
	}
	return cfg, params, stats, times, states
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, params, stats, times, states := testRun()
	runID, err := st.Save(cfg, params, stats, times, states)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Model != "lorenz" {
		t.Errorf("expected model lorenz, got %s", meta.Model)
	}
	if meta.Params["beta"] != 2.667 {
		t.Errorf("expected beta 2.667, got %g", meta.Params["beta"])
	}
	if meta.Stats.Steps != 12 || meta.Stats.Rejected != 1 {
		t.Errorf("solver stats lost: %+v", meta.Stats)
	}
	if meta.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", meta.Samples)
	}

	gotTimes, gotStates, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(gotTimes) != 3 || len(gotStates) != 3 {
		t.Fatalf("expected 3 samples back, got %d times, %d states", len(gotTimes), len(gotStates))
	}
	for i := range times {
		if gotTimes[i] != times[i] {
			t.Errorf("time %d: expected %g, got %g", i, times[i], gotTimes[i])
		}
		for j := range states[i] {
			if gotStates[i][j] != states[i][j] {
				t.Errorf("state %d[%d]: expected %g, got %g", i, j, states[i][j], gotStates[i][j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, params, stats, times, states := testRun()
	if _, err := st.Save(cfg, params, stats, times, states); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(cfg, params, stats, times, states); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on a missing dir should not fail: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, params, stats, times, states := testRun()
	runID, err := st.Save(cfg, params, stats, times, states)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, runID, "metadata.json")); err != nil {
		t.Errorf("metadata.json not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, runID, "samples.csv")); err != nil {
		t.Errorf("samples.csv not created: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, runID, "samples.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data[:8]); got != "t,u,v,w\n" {
		t.Errorf("expected t,u,v,w header, got %q", got)
	}
}

func TestStoreMismatchedLengths(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	cfg, params, stats, _, states := testRun()
	if _, err := st.Save(cfg, params, stats, []float64{0}, states); err == nil {
		t.Error("expected an error for mismatched times and states")
	}
}
