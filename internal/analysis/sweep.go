package analysis

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

// SweepConfig describes a one-parameter sweep.
type SweepConfig struct {
	Param     string  // name understood by the model's SetParam
	From, To  float64 // inclusive parameter range
	Points    int     // number of parameter values
	Component int     // state component whose peaks are recorded
	Transient float64 // settle time dropped before recording
	Duration  float64 // recorded time after the transient
	Samples   int     // uniform samples across the recorded window
	Workers   int     // goroutines; <= 0 means GOMAXPROCS-ish default
}

// SweepPoint is the outcome at one parameter value: the local maxima of the
// chosen component after the transient, the raw material of a bifurcation
// diagram. Err is set when that run failed and leaves Peaks nil.
type SweepPoint struct {
	Value float64
	Peaks []float64
	Err   error
}

// Sweep integrates one trajectory per parameter value and collects the
// post-transient peaks of the chosen component. Every run gets a fresh
// system from newSys, so runs fan out over a bounded pool of goroutines
// without sharing state.
func Sweep(newSys func() dynamo.System, y0 dynamo.State, cfg SweepConfig, opts integrators.Options) ([]SweepPoint, error) {
	if cfg.Points <= 0 || cfg.From > cfg.To || cfg.Duration <= 0 || cfg.Transient < 0 {
		return nil, fmt.Errorf("%w: sweep range [%g, %g] x%d over %g time units", dynamo.ErrInvalidParams, cfg.From, cfg.To, cfg.Points, cfg.Duration)
	}
	if cfg.Component < 0 || cfg.Component >= len(y0) {
		return nil, fmt.Errorf("%w: component %d of %d", dynamo.ErrInvalidParams, cfg.Component, len(y0))
	}
	if cfg.Samples < 3 {
		cfg.Samples = 2000
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Points {
		workers = cfg.Points
	}

	values := make([]float64, cfg.Points)
	if cfg.Points == 1 {
		values[0] = cfg.From
	} else {
		floats.Span(values, cfg.From, cfg.To)
	}

	results := make([]SweepPoint, cfg.Points)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = sweepOne(newSys(), y0, values[idx], cfg, opts)
			}
		}()
	}
	for i := range values {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func sweepOne(sys dynamo.System, y0 dynamo.State, value float64, cfg SweepConfig, opts integrators.Options) SweepPoint {
	pt := SweepPoint{Value: value}

	tunable, ok := sys.(dynamo.Configurable)
	if !ok {
		pt.Err = fmt.Errorf("%w: system is not configurable", dynamo.ErrInvalidParams)
		return pt
	}
	if err := tunable.SetParam(cfg.Param, value); err != nil {
		pt.Err = err
		return pt
	}

	sol, err := integrators.Solve(sys, y0, 0, cfg.Transient+cfg.Duration, opts)
	if err != nil {
		pt.Err = err
		return pt
	}

	grid := make([]float64, cfg.Samples)
	floats.Span(grid, cfg.Transient, sol.End())
	states, err := sol.Sample(grid)
	if err != nil {
		pt.Err = err
		return pt
	}

	for i := 1; i < len(states)-1; i++ {
		v := states[i][cfg.Component]
		if v > states[i-1][cfg.Component] && v >= states[i+1][cfg.Component] {
			pt.Peaks = append(pt.Peaks, v)
		}
	}
	return pt
}
