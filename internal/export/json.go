package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
	"github.com/gicrisf/org-lorenz-attractor/internal/storage"
)

// Trajectory is the transport form of a stored run: the metadata sidecar
// flattened together with the resampled series.
type Trajectory struct {
	ID     string             `json:"id"`
	Model  string             `json:"model"`
	Params map[string]float64 `json:"params,omitempty"`
	T0     float64            `json:"t0"`
	TMax   float64            `json:"tmax"`
	RTol   float64            `json:"rtol"`
	ATol   float64            `json:"atol"`
	Stats  integrators.Stats  `json:"stats"`
	Times  []float64          `json:"times"`
	States [][]float64        `json:"states"`
}

// NewTrajectory pairs a run's metadata with its samples.
func NewTrajectory(meta *storage.RunMetadata, times []float64, states []dynamo.State) (*Trajectory, error) {
	if len(times) != len(states) {
		return nil, fmt.Errorf("%w: %d times for %d states", dynamo.ErrInvalidParams, len(times), len(states))
	}
	tr := &Trajectory{
		ID:     meta.ID,
		Model:  meta.Model,
		Params: meta.Params,
		T0:     meta.T0,
		TMax:   meta.TMax,
		RTol:   meta.RTol,
		ATol:   meta.ATol,
		Stats:  meta.Stats,
		Times:  times,
		States: make([][]float64, len(states)),
	}
	for i, s := range states {
		tr.States[i] = s
	}
	return tr, nil
}

// WriteJSON writes the indented JSON form.
func (tr *Trajectory) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tr)
}

// WriteCSV writes the samples in the store's CSV format, dropping the
// metadata.
func (tr *Trajectory) WriteCSV(w io.Writer) error {
	states := make([]dynamo.State, len(tr.States))
	for i, s := range tr.States {
		states[i] = s
	}
	return storage.WriteSamples(w, tr.Times, states)
}
