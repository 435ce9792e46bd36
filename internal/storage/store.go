package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gicrisf/org-lorenz-attractor/internal/config"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

// Store keeps one directory per run under a base directory: metadata.json
// describing the run and samples.csv holding the resampled trajectory.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata is the sidecar record of a stored run: what was integrated,
// with which coefficients and tolerances, and what the solver did.
type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Params    map[string]float64 `json:"params"`
	Timestamp time.Time          `json:"timestamp"`
	T0        float64            `json:"t0"`
	TMax      float64            `json:"tmax"`
	Samples   int                `json:"samples"`
	RTol      float64            `json:"rtol"`
	ATol      float64            `json:"atol"`
	Stats     integrators.Stats  `json:"stats"`
}

// Save writes a run directory and returns its id. params should be the
// model's effective coefficients, not just the overrides.
func (s *Store) Save(cfg *config.Config, params map[string]float64, stats integrators.Stats, times []float64, states []dynamo.State) (string, error) {
	if len(times) != len(states) {
		return "", fmt.Errorf("%w: %d times for %d states", dynamo.ErrInvalidParams, len(times), len(states))
	}

	runID := fmt.Sprintf("%s_%d", cfg.Model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cfg.Model,
		Params:    params,
		Timestamp: time.Now(),
		T0:        cfg.T0,
		TMax:      cfg.TMax,
		Samples:   len(states),
		RTol:      cfg.RTol,
		ATol:      cfg.ATol,
		Stats:     stats,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	return runID, WriteSamples(csvFile, times, states)
}

// WriteSamples encodes a resampled trajectory as CSV: a header row naming
// the time and state columns, then one row per sample at full float64
// precision. Save uses it for samples.csv and the export command reuses
// it so both outputs stay byte compatible.
func WriteSamples(w io.Writer, times []float64, states []dynamo.State) error {
	if len(times) != len(states) {
		return fmt.Errorf("%w: %d times for %d states", dynamo.ErrInvalidParams, len(times), len(states))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader(states)); err != nil {
		return err
	}
	for i := range states {
		row := make([]string, 0, len(states[i])+1)
		row = append(row, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, v := range states[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sampleHeader(states []dynamo.State) []string {
	if len(states) > 0 && len(states[0]) == 3 {
		return []string{"t", "u", "v", "w"}
	}
	header := []string{"t"}
	if len(states) > 0 {
		for i := range states[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	return header
}

// List scans the base directory and returns the metadata of every readable
// run, in directory name order. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads back the resampled trajectory of a stored run.
func (s *Store) LoadSamples(runID string) ([]float64, []dynamo.State, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []dynamo.State{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("storage: short row %d in %s", i+2, runID)
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: row %d in %s: %w", i+2, runID, err)
		}
		state := make(dynamo.State, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: row %d in %s: %w", i+2, runID, err)
			}
			state = append(state, v)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return times, states, nil
}
